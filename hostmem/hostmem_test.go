package hostmem

import (
	"bytes"
	"testing"
)

func TestAlloc(t *testing.T) {
	b := New(1024)

	p1, err := b.Alloc(10, 1)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	if p1 == 0 {
		t.Error("allocation returned NULL offset")
	}

	p2, err := b.Alloc(10, 1)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	if p2 < p1+10 {
		t.Errorf("allocations overlap: p1=%d p2=%d", p1, p2)
	}
}

func TestAlloc_Alignment(t *testing.T) {
	b := New(1024)

	if _, err := b.Alloc(3, 1); err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	p, err := b.Alloc(4, 4)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	if p%4 != 0 {
		t.Errorf("allocation not 4-aligned: %d", p)
	}
}

func TestAlloc_OutOfMemory(t *testing.T) {
	b := New(64)
	if _, err := b.Alloc(1024, 1); err == nil {
		t.Error("expected out of memory error")
	}
}

func TestReadWrite(t *testing.T) {
	b := New(256)
	p, err := b.Alloc(4, 1)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}

	if err := b.Write(p, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := b.Read(p, 4)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Errorf("read back %v", got)
	}
}

func TestReadWrite_Bounds(t *testing.T) {
	b := New(64)

	if _, err := b.Read(60, 8); err == nil {
		t.Error("expected out of bounds read error")
	}
	if err := b.Write(60, make([]byte, 8)); err == nil {
		t.Error("expected out of bounds write error")
	}
	if _, err := b.ReadU32(62); err == nil {
		t.Error("expected out of bounds u32 read error")
	}
}

func TestU32LittleEndian(t *testing.T) {
	b := New(64)
	if err := b.WriteU32(8, 0x01020304); err != nil {
		t.Fatalf("WriteU32 failed: %v", err)
	}

	raw, err := b.Read(8, 4)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(raw, []byte{0x04, 0x03, 0x02, 0x01}) {
		t.Errorf("expected little-endian layout, got %v", raw)
	}

	v, err := b.ReadU32(8)
	if err != nil {
		t.Fatalf("ReadU32 failed: %v", err)
	}
	if v != 0x01020304 {
		t.Errorf("round trip mismatch: %#x", v)
	}
}

func TestReset(t *testing.T) {
	b := New(256)
	p, _ := b.Alloc(4, 1)
	if err := b.Write(p, []byte{0xAA, 0xBB, 0xCC, 0xDD}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	b.Reset()

	p2, err := b.Alloc(4, 1)
	if err != nil {
		t.Fatalf("Alloc after Reset failed: %v", err)
	}
	if p2 != p {
		t.Errorf("Reset did not reclaim: first alloc at %d, after reset %d", p, p2)
	}
	got, _ := b.Read(p2, 4)
	if !bytes.Equal(got, []byte{0, 0, 0, 0}) {
		t.Errorf("Reset left stale bytes: %v", got)
	}
}

func TestFree_RewindsWhenAllFreed(t *testing.T) {
	b := New(256)

	p1, _ := b.Alloc(4, 1)
	p2, _ := b.Alloc(4, 1)
	_ = b.Write(p1, []byte{0xAA, 0xAA, 0xAA, 0xAA})

	b.Free(p1, 4, 1)
	// One allocation still live: no rewind yet.
	p3, _ := b.Alloc(4, 1)
	if p3 <= p2 {
		t.Errorf("rewound while allocations were live: p2=%d p3=%d", p2, p3)
	}

	b.Free(p2, 4, 1)
	b.Free(p3, 4, 1)

	p4, err := b.Alloc(4, 1)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	if p4 != p1 {
		t.Errorf("expected rewind to %d after all frees, got %d", p1, p4)
	}
	got, _ := b.Read(p4, 4)
	if !bytes.Equal(got, []byte{0, 0, 0, 0}) {
		t.Errorf("rewind left stale bytes: %v", got)
	}
}

func TestSize(t *testing.T) {
	b := New(512)
	if b.Size() != 512 {
		t.Errorf("Size() = %d", b.Size())
	}
}
