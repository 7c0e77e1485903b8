package host

import (
	"context"
	"syscall"

	sockshim "github.com/wippyai/sockshim"
	"github.com/wippyai/sockshim/sockaddr"
)

// HostPrimitives adapts a Backend to the pointer ABI of the foreign
// interface, marshalling through a bound linear memory. It implements
// shim.Primitives, so the shim can run natively against it, and carries
// the per-function bodies the wazero host module dispatches to.
//
// Marshalling faults (out-of-bounds pointers, undecodable records) report
// EFAULT or EINVAL; backend status codes pass through verbatim.
type HostPrimitives struct {
	backend Backend
	mem     sockshim.Memory
}

// NewPrimitives binds backend to mem.
func NewPrimitives(backend Backend, mem sockshim.Memory) *HostPrimitives {
	return &HostPrimitives{backend: backend, mem: mem}
}

// SockOpen creates a socket and writes its handle to fdPtr.
func (p *HostPrimitives) SockOpen(ctx context.Context, family, socktype int32, fdPtr uint32) int32 {
	fd, status := p.backend.Open(ctx, sockaddr.Family(family), sockaddr.SocketType(socktype))
	if status != 0 {
		return status
	}
	if err := p.mem.WriteU32(fdPtr, uint32(fd)); err != nil {
		return int32(syscall.EFAULT)
	}
	return 0
}

// SockResolve resolves the hostname at hostPtr and writes fixed-stride
// records plus the actual count. Records beyond the reported count are
// left untouched.
func (p *HostPrimitives) SockResolve(ctx context.Context, hostPtr uint32, hostLen, port int32,
	addrsPtr uint32, maxAddrs int32, countPtr uint32) int32 {
	if hostLen < 0 || maxAddrs < 0 || port < 0 || port > 65535 {
		return int32(syscall.EINVAL)
	}

	hostBytes, err := p.mem.Read(hostPtr, uint32(hostLen))
	if err != nil {
		return int32(syscall.EFAULT)
	}
	hostname := string(hostBytes)

	addrs, status := p.backend.Resolve(ctx, hostname, uint16(port), int(maxAddrs))
	if status != 0 {
		return status
	}

	for i, addr := range addrs {
		record, err := sockaddr.Encode(addr)
		if err != nil {
			return int32(syscall.EINVAL)
		}
		if err := p.mem.Write(addrsPtr+uint32(i)*sockaddr.RecordSize, record); err != nil {
			return int32(syscall.EFAULT)
		}
	}
	if err := p.mem.WriteU32(countPtr, uint32(len(addrs))); err != nil {
		return int32(syscall.EFAULT)
	}
	return 0
}

// SockConnect connects fd to the 19-byte record at addrPtr.
func (p *HostPrimitives) SockConnect(ctx context.Context, fd int32, addrPtr uint32) int32 {
	record, err := p.mem.Read(addrPtr, sockaddr.RecordSize)
	if err != nil {
		return int32(syscall.EFAULT)
	}
	addr, derr := sockaddr.Decode(record)
	if derr != nil {
		return int32(syscall.EINVAL)
	}
	return p.backend.Connect(ctx, fd, addr)
}

// SockSend sends the bytes at bufPtr and writes the sent count.
func (p *HostPrimitives) SockSend(ctx context.Context, fd int32, bufPtr uint32, bufLen int32, sentPtr uint32) int32 {
	if bufLen < 0 {
		return int32(syscall.EINVAL)
	}
	data, err := p.mem.Read(bufPtr, uint32(bufLen))
	if err != nil {
		return int32(syscall.EFAULT)
	}

	sent, status := p.backend.Send(ctx, fd, data)
	if status != 0 {
		return status
	}
	if err := p.mem.WriteU32(sentPtr, uint32(sent)); err != nil {
		return int32(syscall.EFAULT)
	}
	return 0
}

// SockRecv receives up to bufLen bytes into bufPtr and writes the received
// count. Only the received prefix of the guest buffer is written.
func (p *HostPrimitives) SockRecv(ctx context.Context, fd int32, bufPtr uint32, bufLen int32, recvdPtr uint32) int32 {
	if bufLen <= 0 {
		return int32(syscall.EINVAL)
	}

	// Receive into host scratch first so a backend fault never leaves a
	// half-written guest buffer with a success status.
	buf := make([]byte, bufLen)
	recvd, status := p.backend.Recv(ctx, fd, buf)
	if status != 0 {
		return status
	}

	if recvd > 0 {
		if err := p.mem.Write(bufPtr, buf[:recvd]); err != nil {
			return int32(syscall.EFAULT)
		}
	}
	if err := p.mem.WriteU32(recvdPtr, uint32(recvd)); err != nil {
		return int32(syscall.EFAULT)
	}
	return 0
}

// SockClose closes fd.
func (p *HostPrimitives) SockClose(ctx context.Context, fd int32) int32 {
	return p.backend.Close(ctx, fd)
}
