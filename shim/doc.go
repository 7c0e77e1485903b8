// Package shim wraps the six foreign socket primitives with a high-level,
// Go-friendly surface.
//
// The primitives (sock_open, sock_resolve, sock_connect, sock_send,
// sock_recv, sock_close) take offsets into linear memory and report POSIX
// errno status codes. Shim owns the marshalling: it allocates transient
// buffers through an injected Allocator, writes arguments into Memory,
// invokes exactly one primitive per operation, reads results back, and
// frees everything it allocated on every exit path.
//
// A nonzero status code becomes a platform error carrying the code
// verbatim; no retries, no renumbering, no partial results. Invalid
// arguments are rejected locally before the foreign interface is reached.
//
// Primitives is an interface so the wrapper can run against the native
// implementation in the host package, a wazero guest, or a scripted stub.
package shim
