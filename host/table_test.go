package host

import (
	"testing"

	"github.com/wippyai/sockshim/sockaddr"
)

func TestSocketTable_CreateGet(t *testing.T) {
	table := newSocketTable()

	fd := table.create(sockaddr.INET, sockaddr.STREAM)
	if fd != 1 {
		t.Errorf("expected first fd 1, got %d", fd)
	}

	s, ok := table.get(fd)
	if !ok {
		t.Fatal("socket not found")
	}
	if s.family != sockaddr.INET || s.socktype != sockaddr.STREAM {
		t.Errorf("wrong socket: family=%d socktype=%d", s.family, s.socktype)
	}
}

func TestSocketTable_NeverIssuesZero(t *testing.T) {
	table := newSocketTable()
	for i := 0; i < 100; i++ {
		if fd := table.create(sockaddr.INET, sockaddr.STREAM); fd == 0 {
			t.Fatal("table issued handle 0")
		}
	}
}

func TestSocketTable_Remove(t *testing.T) {
	table := newSocketTable()
	fd := table.create(sockaddr.INET6, sockaddr.DGRAM)

	if _, ok := table.remove(fd); !ok {
		t.Fatal("remove failed")
	}
	if _, ok := table.get(fd); ok {
		t.Error("removed socket still reachable")
	}
	if _, ok := table.remove(fd); ok {
		t.Error("double remove succeeded")
	}
}

func TestSocketTable_ReusesFreedHandles(t *testing.T) {
	table := newSocketTable()
	fd1 := table.create(sockaddr.INET, sockaddr.STREAM)
	table.create(sockaddr.INET, sockaddr.STREAM)

	table.remove(fd1)
	fd3 := table.create(sockaddr.INET, sockaddr.DGRAM)
	if fd3 != fd1 {
		t.Errorf("expected freed handle %d reused, got %d", fd1, fd3)
	}

	s, _ := table.get(fd3)
	if s.socktype != sockaddr.DGRAM {
		t.Error("reused slot kept stale socket")
	}
}

func TestSocketTable_InvalidHandles(t *testing.T) {
	table := newSocketTable()
	table.create(sockaddr.INET, sockaddr.STREAM)

	for _, fd := range []int32{0, -1, 2, 100} {
		if _, ok := table.get(fd); ok {
			t.Errorf("get(%d) succeeded", fd)
		}
	}
}
