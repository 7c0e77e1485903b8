package host

import (
	"net"
	"sync"

	"github.com/wippyai/sockshim/sockaddr"
)

// socket is one open handle. Go's net package has no socket-then-connect
// split for clients, so open records the intent and connect materializes
// the connection.
type socket struct {
	conn     net.Conn
	family   sockaddr.Family
	socktype sockaddr.SocketType
}

// socketTable maps handles to sockets. Handles start at 1; 0 is never
// issued. Freed handles are reused.
type socketTable struct {
	entries  []*socket
	freeList []int32
	mu       sync.Mutex
}

func newSocketTable() *socketTable {
	return &socketTable{
		entries:  make([]*socket, 0, 16),
		freeList: make([]int32, 0, 8),
	}
}

func (t *socketTable) create(family sockaddr.Family, socktype sockaddr.SocketType) int32 {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := &socket{family: family, socktype: socktype}

	if len(t.freeList) > 0 {
		fd := t.freeList[len(t.freeList)-1]
		t.freeList = t.freeList[:len(t.freeList)-1]
		t.entries[fd-1] = s
		return fd
	}

	t.entries = append(t.entries, s)
	return int32(len(t.entries))
}

func (t *socketTable) get(fd int32) (*socket, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if fd <= 0 || int(fd) > len(t.entries) {
		return nil, false
	}
	s := t.entries[fd-1]
	if s == nil {
		return nil, false
	}
	return s, true
}

func (t *socketTable) remove(fd int32) (*socket, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if fd <= 0 || int(fd) > len(t.entries) {
		return nil, false
	}
	s := t.entries[fd-1]
	if s == nil {
		return nil, false
	}
	t.entries[fd-1] = nil
	t.freeList = append(t.freeList, fd)
	return s, true
}
