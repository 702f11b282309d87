package mm

import (
	"reflect"
	"unsafe"
)

// ReadUserBytes copies n bytes starting at user virtual address va out of as
// into a fresh kernel-owned buffer, walking frame by frame via
// TranslateFrameRead. It is the concrete implementation behind the
// trampoline package's UserMemory interface: PROCESS.PANIC's file/message
// strings are read through here so the Runtime never touches a raw user
// pointer.
//
// Like every caller of TranslateFrameRead, this relies on physical RAM being
// identity-mapped in the currently active address space so the translated
// (ppn, offset) pair is directly addressable from the kernel.
func ReadUserBytes[M PageMode, A FrameAllocator](as *PagedAddrSpace[M, A], va VirtAddr, n int) ([]byte, error) {
	out := make([]byte, 0, n)
	err := TranslateFrameRead(as, va, n, func(ppn PhysPageNum, offset, cur int) {
		src := uintptr(ppn.AddrBegin(as.mode)) + uintptr(offset)
		seg := *(*[]byte)(unsafe.Pointer(&reflect.SliceHeader{
			Data: src,
			Len:  cur,
			Cap:  cur,
		}))
		out = append(out, seg...)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
