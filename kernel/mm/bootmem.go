package mm

import (
	"reflect"
	"unsafe"

	"github.com/rv39kernel/rv39os/kernel/heap"
)

// bootFreeList carves the frame allocator's free-list backing out of the
// bootstrap arena: capacity for n page numbers, length zero. During bring-up
// this keeps the allocator's one unbounded-growth container off the hosted
// runtime allocator. When the arena is unavailable (unit tests run without
// heap.Init, or the arena is spent) it returns nil and append grows the
// list conventionally. Only pointer-free element types may be placed in the
// arena; PhysPageNum qualifies.
func bootFreeList(n int) []PhysPageNum {
	if n <= 0 {
		return nil
	}
	b, err := heap.Alloc(n * int(unsafe.Sizeof(PhysPageNum(0))))
	if err != nil {
		return nil
	}
	return *(*[]PhysPageNum)(unsafe.Pointer(&reflect.SliceHeader{
		Data: uintptr(unsafe.Pointer(&b[0])),
		Len:  0,
		Cap:  n,
	}))
}
