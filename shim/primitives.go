package shim

import "context"

// Primitives is the foreign socket interface. Each method corresponds to a
// single sandbox entry point: scalars pass by value, buffers and out-params
// pass as offsets into the linear memory the implementation was bound to.
//
// Every method returns a status code: 0 for success, a POSIX errno value
// otherwise. On a nonzero status no out-param is meaningful.
type Primitives interface {
	// SockOpen creates a socket and writes its handle to fdPtr (u32 LE).
	SockOpen(ctx context.Context, family, socktype int32, fdPtr uint32) int32

	// SockResolve resolves hostname bytes at hostPtr..hostPtr+hostLen to at
	// most maxAddrs fixed-stride 19-byte address records written at
	// addrsPtr, and writes the actual record count to countPtr (u32 LE).
	SockResolve(ctx context.Context, hostPtr uint32, hostLen int32, port int32,
		addrsPtr uint32, maxAddrs int32, countPtr uint32) int32

	// SockConnect connects fd to the 19-byte address record at addrPtr.
	SockConnect(ctx context.Context, fd int32, addrPtr uint32) int32

	// SockSend sends bufLen bytes at bufPtr and writes the count actually
	// sent to sentPtr (u32 LE).
	SockSend(ctx context.Context, fd int32, bufPtr uint32, bufLen int32, sentPtr uint32) int32

	// SockRecv receives up to bufLen bytes into bufPtr and writes the count
	// actually received to recvdPtr (u32 LE). Only the reported prefix of
	// the buffer is written.
	SockRecv(ctx context.Context, fd int32, bufPtr uint32, bufLen int32, recvdPtr uint32) int32

	// SockClose closes fd.
	SockClose(ctx context.Context, fd int32) int32
}
