// Package hostmem provides a slice-backed linear memory with a bump
// allocator, for running the shim natively (no WebAssembly instance) and
// for tests.
//
// Offset 0 is reserved so a zero pointer always means "no allocation".
// Individual frees are not reclaimed in place; the buffer rewinds once all
// outstanding allocations have been freed, and Reset reclaims everything
// unconditionally.
//
// A Buffer is not safe for concurrent use; callers running shim operations
// in parallel need one buffer per goroutine.
package hostmem
