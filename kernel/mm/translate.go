package mm

// TranslateFrameRead walks the virtual range [start, start+length) in as,
// invoking cb once per maximal run of bytes contained in a single physical
// frame, in ascending address order. It fails with ErrBadAddress if any page
// covering the range is unmapped or not readable.
//
// The callback receives the covering frame's page number plus the byte
// offset and run length within that frame; turning that into a
// kernel-visible pointer (ppn.AddrBegin(mode) + offset) is the caller's job,
// and is only valid because kernel RAM is identity-mapped in whichever
// address space is currently active. This function never dereferences user
// memory itself.
func TranslateFrameRead[M PageMode, A FrameAllocator](as *PagedAddrSpace[M, A], start VirtAddr, length int, cb func(ppn PhysPageNum, offset int, n int)) error {
	if length == 0 {
		return nil
	}

	mode := as.mode
	frameSize := 1 << mode.FrameSizeBits()
	frameMask := uintptr(frameSize - 1)

	cur := uintptr(start)
	remaining := length

	for remaining > 0 {
		vpn := VirtAddr(cur).PageNumber(mode)
		ppn, flags, ok := as.Translate(vpn)
		if !ok || flags&FlagR == 0 {
			return ErrBadAddress
		}

		offset := int(cur & frameMask)
		n := frameSize - offset
		if n > remaining {
			n = remaining
		}

		cb(ppn, offset, n)

		cur += uintptr(n)
		remaining -= n
	}

	return nil
}
