package shim

import (
	"sync"

	sockshim "github.com/wippyai/sockshim"
	"github.com/wippyai/sockshim/errors"
)

const (
	byteAlign = 1
	u32Align  = 4
	u32Size   = 4
)

type allocation struct {
	ptr   uint32
	size  uint32
	align uint32
}

// allocationList tracks every buffer acquired for one call activation so it
// can be released on all exit paths. Lists are pooled; a list is invalid
// after Release.
type allocationList struct {
	allocations []allocation
}

var allocationListPool = sync.Pool{
	New: func() any {
		return &allocationList{allocations: make([]allocation, 0, 8)}
	},
}

func newAllocationList() *allocationList {
	return allocationListPool.Get().(*allocationList)
}

const maxPooledAllocationCapacity = 128

func (al *allocationList) release() {
	// Only pool small allocations to prevent memory bloat
	if cap(al.allocations) > maxPooledAllocationCapacity {
		return
	}
	al.allocations = al.allocations[:0]
	allocationListPool.Put(al)
}

func (al *allocationList) add(ptr, size, align uint32) {
	al.allocations = append(al.allocations, allocation{ptr: ptr, size: size, align: align})
}

func (al *allocationList) freeAndRelease(allocator sockshim.Allocator) {
	if allocator != nil {
		for _, a := range al.allocations {
			if a.ptr != 0 {
				allocator.Free(a.ptr, a.size, a.align)
			}
		}
	}
	al.release()
}

// allocScratch acquires size bytes of writable scratch, tracked in al.
func allocScratch(allocator sockshim.Allocator, al *allocationList, op string, size, align uint32) (uint32, error) {
	ptr, err := allocator.Alloc(size, align)
	if err != nil {
		return 0, errors.AllocationFailed(op, size, err)
	}
	al.add(ptr, size, align)
	return ptr, nil
}

// allocBytes copies data into freshly allocated memory, tracked in al.
func allocBytes(mem sockshim.Memory, allocator sockshim.Allocator, al *allocationList, op string, data []byte) (uint32, error) {
	ptr, err := allocScratch(allocator, al, op, uint32(len(data)), byteAlign)
	if err != nil {
		return 0, err
	}
	if len(data) > 0 {
		if err := mem.Write(ptr, data); err != nil {
			return 0, errors.MemoryAccess(op, err)
		}
	}
	return ptr, nil
}

// allocU32Out acquires a 4-byte out-param slot, tracked in al.
func allocU32Out(allocator sockshim.Allocator, al *allocationList, op string) (uint32, error) {
	return allocScratch(allocator, al, op, u32Size, u32Align)
}

// finalize copies exactly length bytes starting at ptr out of linear memory.
// The copy is taken before the backing allocation is freed, and nothing past
// length is ever observable by the caller.
func finalize(mem sockshim.Memory, op string, ptr, length uint32) ([]byte, error) {
	if length == 0 {
		return []byte{}, nil
	}
	view, err := mem.Read(ptr, length)
	if err != nil {
		return nil, errors.MemoryAccess(op, err)
	}
	out := make([]byte, length)
	copy(out, view)
	return out, nil
}
