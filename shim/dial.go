package shim

import (
	"context"

	"github.com/wippyai/sockshim/errors"
	"github.com/wippyai/sockshim/sockaddr"
)

// DialStream resolves host and connects a stream socket to the first
// address that accepts, trying each resolved address in order. The returned
// handle is owned by the caller. Sockets opened for addresses that fail to
// connect are closed before the next attempt.
func DialStream(ctx context.Context, s *Shim, host string, port uint16) (int32, error) {
	addrs, err := s.Resolve(ctx, host, port)
	if err != nil {
		return 0, err
	}
	if len(addrs) == 0 {
		return 0, errors.InvalidArgument("dial", "no addresses for host %q", host)
	}

	var lastErr error
	for _, addr := range addrs {
		if !addr.Valid() {
			// Resolution may report families we cannot open.
			continue
		}

		fd, err := s.Open(ctx, addr.Family, sockaddr.STREAM)
		if err != nil {
			lastErr = err
			continue
		}

		if err := s.Connect(ctx, fd, addr); err != nil {
			// Best effort: the failed socket must not leak.
			_ = s.Close(ctx, fd)
			lastErr = err
			continue
		}

		return fd, nil
	}

	if lastErr == nil {
		lastErr = errors.InvalidArgument("dial", "no usable addresses for host %q", host)
	}
	return 0, lastErr
}

// SendAll sends all of data on fd, issuing as many sends as the foreign
// interface requires. A send that reports zero bytes written stops the loop
// to avoid spinning.
func SendAll(ctx context.Context, s *Shim, fd int32, data []byte) error {
	for len(data) > 0 {
		n, err := s.Send(ctx, fd, data)
		if err != nil {
			return err
		}
		if n <= 0 {
			return errors.OutOfBounds("sendall", "send made no progress (%d of %d bytes left)", n, len(data))
		}
		data = data[n:]
	}
	return nil
}
