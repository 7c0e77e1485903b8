// Package host provides a native implementation of the six socket
// primitives the shim marshals to.
//
// A Backend carries the socket semantics (handle table, dialing, DNS
// lookup, byte transfer) over the Go net package, reporting POSIX errno
// status codes. HostPrimitives adapts a Backend to the pointer ABI of the
// foreign interface, reading and writing a bound linear memory. Instantiate
// registers the same six functions as a wasi_snapshot_preview1 host module
// in a wazero runtime, so a WebAssembly guest can import them directly.
package host
