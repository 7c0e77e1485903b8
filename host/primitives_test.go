package host

import (
	"bytes"
	"context"
	"encoding/binary"
	"syscall"
	"testing"

	"github.com/wippyai/sockshim/hostmem"
	"github.com/wippyai/sockshim/sockaddr"
)

// scriptBackend is a canned Backend for exercising the marshalling layer
// without real sockets.
type scriptBackend struct {
	openFD       int32
	openStatus   int32
	resolveAddrs []sockaddr.Addr
	resolveHost  string
	resolveMax   int
	connectAddr  sockaddr.Addr
	sendData     []byte
	recvData     []byte
	status       int32
}

func (s *scriptBackend) Open(_ context.Context, family sockaddr.Family, socktype sockaddr.SocketType) (int32, int32) {
	if s.openStatus != 0 {
		return 0, s.openStatus
	}
	return s.openFD, 0
}

func (s *scriptBackend) Resolve(_ context.Context, hostname string, port uint16, max int) ([]sockaddr.Addr, int32) {
	s.resolveHost = hostname
	s.resolveMax = max
	if s.status != 0 {
		return nil, s.status
	}
	addrs := s.resolveAddrs
	if len(addrs) > max {
		addrs = addrs[:max]
	}
	return addrs, 0
}

func (s *scriptBackend) Connect(_ context.Context, fd int32, addr sockaddr.Addr) int32 {
	s.connectAddr = addr
	return s.status
}

func (s *scriptBackend) Send(_ context.Context, fd int32, data []byte) (int32, int32) {
	if s.status != 0 {
		return 0, s.status
	}
	s.sendData = append([]byte(nil), data...)
	return int32(len(data)), 0
}

func (s *scriptBackend) Recv(_ context.Context, fd int32, buf []byte) (int32, int32) {
	if s.status != 0 {
		return 0, s.status
	}
	n := copy(buf, s.recvData)
	return int32(n), 0
}

func (s *scriptBackend) Close(_ context.Context, fd int32) int32 {
	return s.status
}

func TestHostPrimitives_SockOpen(t *testing.T) {
	mem := hostmem.New(4096)
	p := NewPrimitives(&scriptBackend{openFD: 9}, mem)

	fdPtr, _ := mem.Alloc(4, 4)
	if status := p.SockOpen(context.Background(), 2, 1, fdPtr); status != 0 {
		t.Fatalf("status %d", status)
	}
	fd, _ := mem.ReadU32(fdPtr)
	if fd != 9 {
		t.Errorf("expected fd 9 written, got %d", fd)
	}
}

func TestHostPrimitives_SockOpen_BadPointer(t *testing.T) {
	mem := hostmem.New(64)
	p := NewPrimitives(&scriptBackend{openFD: 9}, mem)

	if status := p.SockOpen(context.Background(), 2, 1, 4096); status != int32(syscall.EFAULT) {
		t.Errorf("expected EFAULT, got %d", status)
	}
}

func TestHostPrimitives_SockResolve(t *testing.T) {
	mem := hostmem.New(4096)
	backend := &scriptBackend{resolveAddrs: []sockaddr.Addr{
		{Family: sockaddr.INET, Port: 443, IP: []byte{1, 2, 3, 4}},
		{Family: sockaddr.INET6, Port: 443, IP: bytes.Repeat([]byte{0xAB}, 16)},
	}}
	p := NewPrimitives(backend, mem)

	hostname := []byte("example.com")
	hostPtr, _ := mem.Alloc(uint32(len(hostname)), 1)
	_ = mem.Write(hostPtr, hostname)
	addrsPtr, _ := mem.Alloc(sockaddr.RecordSize*sockaddr.MaxResolveAddrs, 1)
	countPtr, _ := mem.Alloc(4, 4)

	status := p.SockResolve(context.Background(), hostPtr, int32(len(hostname)), 443,
		addrsPtr, sockaddr.MaxResolveAddrs, countPtr)
	if status != 0 {
		t.Fatalf("status %d", status)
	}

	if backend.resolveHost != "example.com" {
		t.Errorf("hostname not unmarshalled: %q", backend.resolveHost)
	}
	count, _ := mem.ReadU32(countPtr)
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}

	// First record: INET with zeroed tail.
	record, _ := mem.Read(addrsPtr, sockaddr.RecordSize)
	want := []byte{2, 0x01, 0xBB, 1, 2, 3, 4, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(record, want) {
		t.Errorf("record 0 mismatch:\n got %v\nwant %v", record, want)
	}

	// Second record at fixed stride.
	record2, _ := mem.Read(addrsPtr+sockaddr.RecordSize, sockaddr.RecordSize)
	if record2[0] != 10 || !bytes.Equal(record2[3:], bytes.Repeat([]byte{0xAB}, 16)) {
		t.Errorf("record 1 mismatch: %v", record2)
	}
}

func TestHostPrimitives_SockResolve_Validation(t *testing.T) {
	mem := hostmem.New(4096)
	p := NewPrimitives(&scriptBackend{}, mem)
	ctx := context.Background()

	if status := p.SockResolve(ctx, 8, -1, 80, 8, 10, 8); status != int32(syscall.EINVAL) {
		t.Errorf("negative hostLen: expected EINVAL, got %d", status)
	}
	if status := p.SockResolve(ctx, 8, 4, 70000, 8, 10, 8); status != int32(syscall.EINVAL) {
		t.Errorf("port out of range: expected EINVAL, got %d", status)
	}
	if status := p.SockResolve(ctx, 5000, 4, 80, 8, 10, 8); status != int32(syscall.EFAULT) {
		t.Errorf("bad host pointer: expected EFAULT, got %d", status)
	}
}

func TestHostPrimitives_SockConnect(t *testing.T) {
	mem := hostmem.New(4096)
	backend := &scriptBackend{}
	p := NewPrimitives(backend, mem)

	record, err := sockaddr.Encode(sockaddr.Addr{
		Family: sockaddr.INET, Port: 8080, IP: []byte{10, 1, 2, 3},
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	addrPtr, _ := mem.Alloc(sockaddr.RecordSize, 1)
	_ = mem.Write(addrPtr, record)

	if status := p.SockConnect(context.Background(), 3, addrPtr); status != 0 {
		t.Fatalf("status %d", status)
	}
	if backend.connectAddr.Port != 8080 || !bytes.Equal(backend.connectAddr.IP, []byte{10, 1, 2, 3}) {
		t.Errorf("decoded address mismatch: %+v", backend.connectAddr)
	}
}

func TestHostPrimitives_SockSendRecv(t *testing.T) {
	mem := hostmem.New(4096)
	backend := &scriptBackend{recvData: []byte("resp")}
	p := NewPrimitives(backend, mem)
	ctx := context.Background()

	// send
	payload := []byte("request")
	bufPtr, _ := mem.Alloc(uint32(len(payload)), 1)
	_ = mem.Write(bufPtr, payload)
	sentPtr, _ := mem.Alloc(4, 4)

	if status := p.SockSend(ctx, 3, bufPtr, int32(len(payload)), sentPtr); status != 0 {
		t.Fatalf("send status %d", status)
	}
	if !bytes.Equal(backend.sendData, payload) {
		t.Errorf("backend saw %q", backend.sendData)
	}
	sent, _ := mem.ReadU32(sentPtr)
	if sent != uint32(len(payload)) {
		t.Errorf("sent count %d", sent)
	}

	// recv: only the received prefix may be written
	recvPtr, _ := mem.Alloc(16, 1)
	_ = mem.Write(recvPtr, bytes.Repeat([]byte{0xCC}, 16))
	recvdPtr, _ := mem.Alloc(4, 4)

	if status := p.SockRecv(ctx, 3, recvPtr, 16, recvdPtr); status != 0 {
		t.Fatalf("recv status %d", status)
	}
	recvd, _ := mem.ReadU32(recvdPtr)
	if recvd != 4 {
		t.Fatalf("recvd count %d", recvd)
	}
	buf, _ := mem.Read(recvPtr, 16)
	if !bytes.Equal(buf[:4], []byte("resp")) {
		t.Errorf("prefix mismatch: %q", buf[:4])
	}
	for i := 4; i < 16; i++ {
		if buf[i] != 0xCC {
			t.Errorf("byte %d overwritten beyond received prefix", i)
		}
	}
}

func TestHostPrimitives_SockRecv_Validation(t *testing.T) {
	mem := hostmem.New(4096)
	p := NewPrimitives(&scriptBackend{}, mem)

	if status := p.SockRecv(context.Background(), 3, 8, 0, 12); status != int32(syscall.EINVAL) {
		t.Errorf("zero bufLen: expected EINVAL, got %d", status)
	}
	if status := p.SockRecv(context.Background(), 3, 8, -4, 12); status != int32(syscall.EINVAL) {
		t.Errorf("negative bufLen: expected EINVAL, got %d", status)
	}
}

func TestHostPrimitives_StatusPassThrough(t *testing.T) {
	mem := hostmem.New(4096)
	backend := &scriptBackend{status: int32(syscall.ECONNREFUSED), openStatus: int32(syscall.EMFILE)}
	p := NewPrimitives(backend, mem)
	ctx := context.Background()

	fdPtr, _ := mem.Alloc(4, 4)
	_ = mem.WriteU32(fdPtr, 0xDEAD)
	if status := p.SockOpen(ctx, 2, 1, fdPtr); status != int32(syscall.EMFILE) {
		t.Errorf("open: expected EMFILE, got %d", status)
	}
	// Out-param untouched on failure.
	if v, _ := mem.ReadU32(fdPtr); v != 0xDEAD {
		t.Error("fd out-param written on failure")
	}

	record, _ := sockaddr.Encode(sockaddr.Addr{Family: sockaddr.INET, Port: 1, IP: []byte{1, 1, 1, 1}})
	addrPtr, _ := mem.Alloc(sockaddr.RecordSize, 1)
	_ = mem.Write(addrPtr, record)
	if status := p.SockConnect(ctx, 1, addrPtr); status != int32(syscall.ECONNREFUSED) {
		t.Errorf("connect: expected ECONNREFUSED passthrough, got %d", status)
	}
	if status := p.SockClose(ctx, 1); status != int32(syscall.ECONNREFUSED) {
		t.Errorf("close: expected ECONNREFUSED passthrough, got %d", status)
	}
}

func TestHostPrimitives_CountEncoding(t *testing.T) {
	// Out-params are little-endian u32, matching wasm memory order.
	mem := hostmem.New(4096)
	p := NewPrimitives(&scriptBackend{openFD: 0x0102}, mem)

	fdPtr, _ := mem.Alloc(4, 4)
	if status := p.SockOpen(context.Background(), 2, 1, fdPtr); status != 0 {
		t.Fatalf("status %d", status)
	}
	raw, _ := mem.Read(fdPtr, 4)
	if binary.LittleEndian.Uint32(raw) != 0x0102 {
		t.Errorf("fd not little-endian: %v", raw)
	}
}
