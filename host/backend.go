package host

import (
	"context"
	"fmt"
	"io"
	"net"
	"syscall"

	"go.uber.org/zap"

	"github.com/wippyai/sockshim/sockaddr"
)

// Backend carries the socket semantics behind the six primitives. Every
// method reports a POSIX errno status code: 0 for success. Backends never
// return partial results together with a nonzero status.
type Backend interface {
	Open(ctx context.Context, family sockaddr.Family, socktype sockaddr.SocketType) (int32, int32)
	Resolve(ctx context.Context, hostname string, port uint16, max int) ([]sockaddr.Addr, int32)
	Connect(ctx context.Context, fd int32, addr sockaddr.Addr) int32
	Send(ctx context.Context, fd int32, data []byte) (int32, int32)
	Recv(ctx context.Context, fd int32, buf []byte) (int32, int32)
	Close(ctx context.Context, fd int32) int32
}

// NetBackend implements Backend over the Go net package.
type NetBackend struct {
	table    *socketTable
	dialer   net.Dialer
	resolver *net.Resolver
	log      *zap.Logger
}

// NewNetBackend creates a backend using the default dialer and resolver.
func NewNetBackend() *NetBackend {
	return &NetBackend{
		table:    newSocketTable(),
		resolver: net.DefaultResolver,
		log:      zap.NewNop(),
	}
}

// SetLogger replaces the backend's logger. The default is a no-op logger.
func (b *NetBackend) SetLogger(l *zap.Logger) {
	if l != nil {
		b.log = l
	}
}

// Open allocates a handle for a future connection. The Go net package has
// no client-side socket-then-connect split, so the OS socket is created at
// Connect; Open records family and type and enforces them there.
func (b *NetBackend) Open(ctx context.Context, family sockaddr.Family, socktype sockaddr.SocketType) (int32, int32) {
	switch family {
	case sockaddr.INET, sockaddr.INET6:
	default:
		return 0, int32(syscall.EAFNOSUPPORT)
	}
	switch socktype {
	case sockaddr.STREAM, sockaddr.DGRAM:
	default:
		return 0, int32(syscall.EPROTOTYPE)
	}

	fd := b.table.create(family, socktype)
	b.log.Debug("open", zap.Int32("fd", fd),
		zap.Uint8("family", uint8(family)), zap.Int32("socktype", int32(socktype)))
	return fd, 0
}

// Resolve looks up hostname and returns at most max addresses carrying the
// given port. IPv4-mapped results are reported as INET.
func (b *NetBackend) Resolve(ctx context.Context, hostname string, port uint16, max int) ([]sockaddr.Addr, int32) {
	ips, err := b.resolver.LookupIPAddr(ctx, hostname)
	if err != nil {
		b.log.Debug("resolve failed", zap.String("hostname", hostname), zap.Error(err))
		return nil, errnoFromError(err)
	}

	addrs := make([]sockaddr.Addr, 0, len(ips))
	for _, ip := range ips {
		if len(addrs) >= max {
			break
		}
		if v4 := ip.IP.To4(); v4 != nil {
			addrs = append(addrs, sockaddr.Addr{
				Family: sockaddr.INET, Port: port, IP: []byte(v4),
			})
			continue
		}
		if v6 := ip.IP.To16(); v6 != nil {
			addrs = append(addrs, sockaddr.Addr{
				Family: sockaddr.INET6, Port: port, IP: []byte(v6),
			})
		}
	}

	b.log.Debug("resolve", zap.String("hostname", hostname), zap.Int("count", len(addrs)))
	return addrs, 0
}

// Connect dials addr and binds the connection to fd.
func (b *NetBackend) Connect(ctx context.Context, fd int32, addr sockaddr.Addr) int32 {
	s, ok := b.table.get(fd)
	if !ok {
		return int32(syscall.EBADF)
	}
	if s.conn != nil {
		return int32(syscall.EISCONN)
	}
	if !addr.Valid() {
		return int32(syscall.EINVAL)
	}
	if addr.Family != s.family {
		return int32(syscall.EAFNOSUPPORT)
	}

	network := networkFor(s.family, s.socktype)
	target := net.JoinHostPort(net.IP(addr.IP).String(), fmt.Sprintf("%d", addr.Port))

	conn, err := b.dialer.DialContext(ctx, network, target)
	if err != nil {
		b.log.Debug("connect failed", zap.Int32("fd", fd), zap.String("target", target), zap.Error(err))
		return errnoFromError(err)
	}

	s.conn = conn
	b.log.Debug("connect", zap.Int32("fd", fd), zap.String("target", target))
	return 0
}

// Send writes data and returns the count actually written. A short write
// is a success.
func (b *NetBackend) Send(ctx context.Context, fd int32, data []byte) (int32, int32) {
	s, ok := b.table.get(fd)
	if !ok {
		return 0, int32(syscall.EBADF)
	}
	if s.conn == nil {
		return 0, int32(syscall.ENOTCONN)
	}

	n, err := s.conn.Write(data)
	if err != nil && n == 0 {
		return 0, errnoFromError(err)
	}
	return int32(n), 0
}

// Recv reads into buf and returns the count actually read. A closed peer
// reads as 0 bytes, matching POSIX recv semantics.
func (b *NetBackend) Recv(ctx context.Context, fd int32, buf []byte) (int32, int32) {
	s, ok := b.table.get(fd)
	if !ok {
		return 0, int32(syscall.EBADF)
	}
	if s.conn == nil {
		return 0, int32(syscall.ENOTCONN)
	}

	n, err := s.conn.Read(buf)
	if err != nil && n == 0 {
		if err == io.EOF {
			return 0, 0
		}
		return 0, errnoFromError(err)
	}
	return int32(n), 0
}

// Close releases fd. The handle is invalid afterwards even if closing the
// underlying connection reports an error.
func (b *NetBackend) Close(ctx context.Context, fd int32) int32 {
	s, ok := b.table.remove(fd)
	if !ok {
		return int32(syscall.EBADF)
	}
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			return errnoFromError(err)
		}
	}
	b.log.Debug("close", zap.Int32("fd", fd))
	return 0
}

func networkFor(family sockaddr.Family, socktype sockaddr.SocketType) string {
	if socktype == sockaddr.DGRAM {
		if family == sockaddr.INET6 {
			return "udp6"
		}
		return "udp4"
	}
	if family == sockaddr.INET6 {
		return "tcp6"
	}
	return "tcp4"
}
