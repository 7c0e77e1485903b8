package hostmem

import (
	"encoding/binary"
	"fmt"
)

// reserve offset 0 as NULL
const baseOffset = 8

// Buffer is a fixed-capacity linear memory. It implements the root
// package's Memory, MemorySizer and Allocator interfaces.
type Buffer struct {
	data []byte
	next uint32
	live uint32
}

// New creates a buffer of size bytes.
func New(size uint32) *Buffer {
	if size < baseOffset {
		size = baseOffset
	}
	return &Buffer{data: make([]byte, size), next: baseOffset}
}

// Size returns the total capacity in bytes.
func (b *Buffer) Size() uint32 {
	return uint32(len(b.data))
}

// Alloc reserves size bytes at the given alignment and returns the offset.
func (b *Buffer) Alloc(size, align uint32) (uint32, error) {
	if align == 0 {
		align = 1
	}
	ptr := (b.next + align - 1) &^ (align - 1)
	if uint64(ptr)+uint64(size) > uint64(len(b.data)) {
		return 0, fmt.Errorf("out of memory: need %d bytes at %d, capacity %d", size, ptr, len(b.data))
	}
	b.next = ptr + size
	b.live++
	return ptr, nil
}

// Free releases one allocation. Individual regions are not reclaimed; the
// buffer rewinds once every outstanding allocation has been freed, which is
// the end of each call activation.
func (b *Buffer) Free(ptr, size, align uint32) {
	if b.live == 0 {
		return
	}
	b.live--
	if b.live == 0 {
		b.Reset()
	}
}

// Reset reclaims all allocations and zeroes the buffer so stale bytes from
// one activation cannot leak into the next.
func (b *Buffer) Reset() {
	clear(b.data)
	b.next = baseOffset
	b.live = 0
}

func (b *Buffer) bounds(offset, length uint32) error {
	if uint64(offset)+uint64(length) > uint64(len(b.data)) {
		return fmt.Errorf("memory access out of bounds: offset=%d, length=%d, capacity=%d",
			offset, length, len(b.data))
	}
	return nil
}

// Read returns a view of length bytes at offset. The view aliases the
// buffer; callers that outlive the allocation must copy.
func (b *Buffer) Read(offset, length uint32) ([]byte, error) {
	if err := b.bounds(offset, length); err != nil {
		return nil, err
	}
	return b.data[offset : offset+length], nil
}

// Write copies data into the buffer at offset.
func (b *Buffer) Write(offset uint32, data []byte) error {
	if err := b.bounds(offset, uint32(len(data))); err != nil {
		return err
	}
	copy(b.data[offset:], data)
	return nil
}

// ReadU8 reads an unsigned 8-bit value.
func (b *Buffer) ReadU8(offset uint32) (uint8, error) {
	if err := b.bounds(offset, 1); err != nil {
		return 0, err
	}
	return b.data[offset], nil
}

// ReadU16 reads an unsigned 16-bit little-endian value.
func (b *Buffer) ReadU16(offset uint32) (uint16, error) {
	if err := b.bounds(offset, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b.data[offset:]), nil
}

// ReadU32 reads an unsigned 32-bit little-endian value.
func (b *Buffer) ReadU32(offset uint32) (uint32, error) {
	if err := b.bounds(offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b.data[offset:]), nil
}

// WriteU8 writes an unsigned 8-bit value.
func (b *Buffer) WriteU8(offset uint32, value uint8) error {
	if err := b.bounds(offset, 1); err != nil {
		return err
	}
	b.data[offset] = value
	return nil
}

// WriteU16 writes an unsigned 16-bit little-endian value.
func (b *Buffer) WriteU16(offset uint32, value uint16) error {
	if err := b.bounds(offset, 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b.data[offset:], value)
	return nil
}

// WriteU32 writes an unsigned 32-bit little-endian value.
func (b *Buffer) WriteU32(offset uint32, value uint32) error {
	if err := b.bounds(offset, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b.data[offset:], value)
	return nil
}
