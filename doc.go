// Package sockshim marshals a minimal POSIX-like socket API across a fixed
// WebAssembly sandbox ABI.
//
// The underlying runtime exposes six socket primitives (sock_open,
// sock_resolve, sock_connect, sock_send, sock_recv, sock_close) that operate
// on offsets into linear memory and report POSIX errno status codes. This
// library owns the byte layouts those primitives expect and the translation
// of their status codes into Go errors.
//
// # Architecture Overview
//
//	sockshim/            Root package with core Memory and Allocator interfaces
//	├── sockaddr/        Fixed 19-byte socket address record codec
//	├── shim/            Call wrapper: high-level ops over injected primitives
//	├── host/            Native realization of the primitives over Go net
//	├── hostmem/         Slice-backed linear memory for native embedding
//	├── wazeromem/       Memory/allocator adapters for wazero guest instances
//	└── errors/          Structured error types
//
// # Quick Start
//
// Run the shim against the native backend:
//
//	mem := hostmem.New(1 << 20)
//	backend := host.NewNetBackend()
//	s := shim.New(host.NewPrimitives(backend, mem), mem, mem)
//
//	fd, err := shim.DialStream(ctx, s, "example.com", 80)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close(ctx, fd)
//
//	if err := shim.SendAll(ctx, s, fd, []byte("GET / HTTP/1.0\r\n\r\n")); err != nil {
//	    log.Fatal(err)
//	}
//	data, err := s.Recv(ctx, fd, 4096)
//
// To serve the same six primitives to a WebAssembly guest, register them as
// a host module with host.Instantiate.
//
// # Thread Safety
//
// Operations on distinct socket handles are independent. Concurrent use of
// the same handle is not synchronized by this layer; callers must serialize.
package sockshim
