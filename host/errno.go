package host

import (
	"context"
	"errors"
	"net"
	"os"
	"syscall"
)

// errnoFromError converts Go net package errors to the POSIX errno codes
// the foreign ABI reports. Zero means success; callers must only pass
// non-nil errors.
func errnoFromError(err error) int32 {
	if err == nil {
		return 0
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int32(errno)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTemporary {
			return int32(syscall.EAGAIN)
		}
		// Name lookup failures have no dedicated errno in this ABI;
		// the original runtime reports ENOENT for unresolvable names.
		return int32(syscall.ENOENT)
	}

	var addrErr *net.AddrError
	if errors.As(err, &addrErr) {
		return int32(syscall.EINVAL)
	}

	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return int32(syscall.ETIMEDOUT)
	}
	if errors.Is(err, context.Canceled) {
		return int32(syscall.EINTR)
	}
	if os.IsPermission(err) {
		return int32(syscall.EACCES)
	}
	if errors.Is(err, net.ErrClosed) {
		return int32(syscall.EBADF)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Err != nil {
		switch opErr.Err.Error() {
		case "connection refused":
			return int32(syscall.ECONNREFUSED)
		case "connection reset", "connection reset by peer":
			return int32(syscall.ECONNRESET)
		case "broken pipe":
			return int32(syscall.EPIPE)
		case "network is unreachable":
			return int32(syscall.ENETUNREACH)
		case "host is unreachable", "no route to host":
			return int32(syscall.EHOSTUNREACH)
		}
	}

	return int32(syscall.EIO)
}
