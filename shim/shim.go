package shim

import (
	"context"

	"go.uber.org/zap"

	sockshim "github.com/wippyai/sockshim"
	"github.com/wippyai/sockshim/errors"
	"github.com/wippyai/sockshim/sockaddr"
)

// Shim binds the foreign socket primitives to a linear memory and an
// allocator. All state is per-call; the zero ordering guarantee of the
// foreign interface passes through unchanged.
type Shim struct {
	prims Primitives
	mem   sockshim.Memory
	alloc sockshim.Allocator
	log   *zap.Logger
}

// New creates a shim over prims, marshalling through mem and allocator.
func New(prims Primitives, mem sockshim.Memory, allocator sockshim.Allocator) *Shim {
	return &Shim{
		prims: prims,
		mem:   mem,
		alloc: allocator,
		log:   zap.NewNop(),
	}
}

// SetLogger replaces the shim's logger. The default is a no-op logger.
func (s *Shim) SetLogger(l *zap.Logger) {
	if l != nil {
		s.log = l
	}
}

// Open creates a socket and returns its handle. The handle is owned by the
// caller until Close; a failed Open returns no handle.
func (s *Shim) Open(ctx context.Context, family sockaddr.Family, socktype sockaddr.SocketType) (int32, error) {
	switch family {
	case sockaddr.INET, sockaddr.INET6:
	default:
		return 0, errors.InvalidArgument("open", "unknown address family %d", family)
	}
	switch socktype {
	case sockaddr.STREAM, sockaddr.DGRAM:
	default:
		return 0, errors.InvalidArgument("open", "unknown socket type %d", socktype)
	}

	al := newAllocationList()
	defer al.freeAndRelease(s.alloc)

	fdPtr, err := allocU32Out(s.alloc, al, "open")
	if err != nil {
		return 0, err
	}

	if status := s.prims.SockOpen(ctx, int32(family), int32(socktype), fdPtr); status != 0 {
		return 0, errors.Platform("sock_open", status)
	}

	fd, err := s.mem.ReadU32(fdPtr)
	if err != nil {
		return 0, errors.MemoryAccess("open", err)
	}

	s.log.Debug("socket opened",
		zap.Int32("fd", int32(fd)),
		zap.Uint8("family", uint8(family)),
		zap.Int32("socktype", int32(socktype)))
	return int32(fd), nil
}

// Resolve looks up hostname and returns up to sockaddr.MaxResolveAddrs
// addresses, each carrying the given port. An empty result is not an error.
//
// The foreign interface enforces the record cap by contract; the count it
// reports is additionally clamped here so records beyond the scratch buffer
// are never decoded.
func (s *Shim) Resolve(ctx context.Context, hostname string, port uint16) ([]sockaddr.Addr, error) {
	if hostname == "" {
		return nil, errors.InvalidArgument("resolve", "hostname must not be empty")
	}

	al := newAllocationList()
	defer al.freeAndRelease(s.alloc)

	hostPtr, err := allocBytes(s.mem, s.alloc, al, "resolve", []byte(hostname))
	if err != nil {
		return nil, err
	}

	// Scratch for the fixed-stride record array. Local to this activation;
	// never cached across calls.
	const scratchSize = sockaddr.RecordSize * sockaddr.MaxResolveAddrs
	addrsPtr, err := allocScratch(s.alloc, al, "resolve", scratchSize, byteAlign)
	if err != nil {
		return nil, err
	}

	countPtr, err := allocU32Out(s.alloc, al, "resolve")
	if err != nil {
		return nil, err
	}

	status := s.prims.SockResolve(ctx, hostPtr, int32(len(hostname)), int32(port),
		addrsPtr, sockaddr.MaxResolveAddrs, countPtr)
	if status != 0 {
		return nil, errors.Platform("sock_resolve", status)
	}

	count, err := s.mem.ReadU32(countPtr)
	if err != nil {
		return nil, errors.MemoryAccess("resolve", err)
	}
	if count > sockaddr.MaxResolveAddrs {
		count = sockaddr.MaxResolveAddrs
	}

	addrs := make([]sockaddr.Addr, 0, count)
	for i := uint32(0); i < count; i++ {
		record, err := s.mem.Read(addrsPtr+i*sockaddr.RecordSize, sockaddr.RecordSize)
		if err != nil {
			return nil, errors.MemoryAccess("resolve", err)
		}
		addr, err := sockaddr.Decode(record)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}

	s.log.Debug("hostname resolved",
		zap.String("hostname", hostname),
		zap.Int("count", len(addrs)))
	return addrs, nil
}

// Connect connects fd to addr. The address payload length must match the
// family; mismatches are rejected before the foreign interface is reached.
func (s *Shim) Connect(ctx context.Context, fd int32, addr sockaddr.Addr) error {
	record, err := sockaddr.Encode(addr)
	if err != nil {
		return err
	}

	al := newAllocationList()
	defer al.freeAndRelease(s.alloc)

	addrPtr, err := allocBytes(s.mem, s.alloc, al, "connect", record)
	if err != nil {
		return err
	}

	if status := s.prims.SockConnect(ctx, fd, addrPtr); status != 0 {
		return errors.Platform("sock_connect", status)
	}

	s.log.Debug("socket connected", zap.Int32("fd", fd), zap.String("addr", addr.String()))
	return nil
}

// Send sends data on fd and returns the count actually sent. A short send
// is a success value, not an error.
func (s *Shim) Send(ctx context.Context, fd int32, data []byte) (int32, error) {
	al := newAllocationList()
	defer al.freeAndRelease(s.alloc)

	bufPtr, err := allocBytes(s.mem, s.alloc, al, "send", data)
	if err != nil {
		return 0, err
	}

	sentPtr, err := allocU32Out(s.alloc, al, "send")
	if err != nil {
		return 0, err
	}

	if status := s.prims.SockSend(ctx, fd, bufPtr, int32(len(data)), sentPtr); status != 0 {
		return 0, errors.Platform("sock_send", status)
	}

	sent, err := s.mem.ReadU32(sentPtr)
	if err != nil {
		return 0, errors.MemoryAccess("send", err)
	}
	if sent > uint32(len(data)) {
		return 0, errors.OutOfBounds("send",
			"primitive reported %d bytes sent of %d", sent, len(data))
	}

	return int32(sent), nil
}

// Recv receives up to bufsize bytes from fd. The result is exactly the
// prefix the foreign interface reports as written; the unwritten tail of
// the buffer is never observable.
func (s *Shim) Recv(ctx context.Context, fd int32, bufsize int32) ([]byte, error) {
	if bufsize <= 0 {
		return nil, errors.InvalidArgument("recv", "bufsize must be positive, got %d", bufsize)
	}

	al := newAllocationList()
	defer al.freeAndRelease(s.alloc)

	bufPtr, err := allocScratch(s.alloc, al, "recv", uint32(bufsize), byteAlign)
	if err != nil {
		return nil, err
	}

	recvdPtr, err := allocU32Out(s.alloc, al, "recv")
	if err != nil {
		return nil, err
	}

	if status := s.prims.SockRecv(ctx, fd, bufPtr, bufsize, recvdPtr); status != 0 {
		return nil, errors.Platform("sock_recv", status)
	}

	recvd, err := s.mem.ReadU32(recvdPtr)
	if err != nil {
		return nil, errors.MemoryAccess("recv", err)
	}
	if recvd > uint32(bufsize) {
		return nil, errors.OutOfBounds("recv",
			"primitive reported %d bytes received into a %d byte buffer", recvd, bufsize)
	}

	return finalize(s.mem, "recv", bufPtr, recvd)
}

// Close closes fd. The handle is invalid afterwards regardless of status;
// the shim never closes a handle on the caller's behalf.
func (s *Shim) Close(ctx context.Context, fd int32) error {
	if status := s.prims.SockClose(ctx, fd); status != 0 {
		return errors.Platform("sock_close", status)
	}
	s.log.Debug("socket closed", zap.Int32("fd", fd))
	return nil
}
