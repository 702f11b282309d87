package mm

import (
	"reflect"
	"unsafe"
)

// ptesOf overlays a slice of raw page table entries on top of the frame
// backing ppn. This relies on the frame's memory being directly addressable,
// which holds for any frame handed out by the allocator: before paging is
// enabled every physical address is its own pointer, and afterwards only
// provided the active address space identity-maps physical RAM (true of the
// kernel address space built at bring-up). The same direct-overlay technique
// backs kernel.Memset.
func ptesOf(m PageMode, ppn PhysPageNum) []uint64 {
	n := 1 << m.IndexBits()
	addr := uintptr(ppn.AddrBegin(m))
	return *(*[]uint64)(unsafe.Pointer(&reflect.SliceHeader{
		Data: addr,
		Len:  n,
		Cap:  n,
	}))
}
