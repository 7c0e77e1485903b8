package sockaddr

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/wippyai/sockshim/errors"
)

// Family is an address family tag as used on the wire.
type Family uint8

// SocketType selects stream or datagram semantics. Opaque to the codec.
type SocketType int32

const (
	INET  Family = 2  // IPv4
	INET6 Family = 10 // IPv6

	STREAM SocketType = 1 // TCP
	DGRAM  SocketType = 2 // UDP
)

const (
	// RecordSize is the fixed width of one encoded address record:
	// 1 (family) + 2 (port) + 16 (address).
	RecordSize = 19

	// MaxResolveAddrs is the maximum number of records a single resolution
	// can report.
	MaxResolveAddrs = 10

	inetAddrLen  = 4
	inet6AddrLen = 16
)

// Addr is a decoded socket address.
type Addr struct {
	IP     []byte
	Port   uint16
	Family Family
}

// AddrLen returns the payload length for a family tag. Unknown tags get the
// full 16-byte payload; resolution may report families we do not enumerate.
func AddrLen(f Family) int {
	if f == INET {
		return inetAddrLen
	}
	return inet6AddrLen
}

// Valid reports whether the address payload length matches the family.
func (a Addr) Valid() bool {
	switch a.Family {
	case INET:
		return len(a.IP) == inetAddrLen
	case INET6:
		return len(a.IP) == inet6AddrLen
	default:
		return false
	}
}

// String formats the address as host:port.
func (a Addr) String() string {
	ip := net.IP(a.IP)
	return net.JoinHostPort(ip.String(), fmt.Sprintf("%d", a.Port))
}

// Encode serializes addr into a fresh RecordSize-byte record.
//
// The payload length must match the family exactly: 4 bytes for INET,
// 16 for INET6. Anything else fails with an invalid_argument error. For
// INET the unused 12 tail bytes are zero-filled so a fixed-stride reader
// never sees stale data.
func Encode(addr Addr) ([]byte, error) {
	switch addr.Family {
	case INET:
		if len(addr.IP) != inetAddrLen {
			return nil, errors.InvalidArgument("encode",
				"INET address must be %d bytes, got %d", inetAddrLen, len(addr.IP))
		}
	case INET6:
		if len(addr.IP) != inet6AddrLen {
			return nil, errors.InvalidArgument("encode",
				"INET6 address must be %d bytes, got %d", inet6AddrLen, len(addr.IP))
		}
	default:
		return nil, errors.InvalidArgument("encode",
			"unknown address family %d", addr.Family)
	}

	record := make([]byte, RecordSize)
	record[0] = byte(addr.Family)
	binary.BigEndian.PutUint16(record[1:3], addr.Port)
	copy(record[3:], addr.IP)
	return record, nil
}

// Decode parses a RecordSize-byte record.
//
// Unknown family tags are passed through opaque rather than rejected.
// Bytes beyond the family's payload length are never copied into the
// result; the returned IP slice does not alias the input.
func Decode(record []byte) (Addr, error) {
	if len(record) != RecordSize {
		return Addr{}, errors.InvalidArgument("decode",
			"record must be %d bytes, got %d", RecordSize, len(record))
	}

	family := Family(record[0])
	addrLen := AddrLen(family)

	ip := make([]byte, addrLen)
	copy(ip, record[3:3+addrLen])

	return Addr{
		Family: family,
		Port:   binary.BigEndian.Uint16(record[1:3]),
		IP:     ip,
	}, nil
}
