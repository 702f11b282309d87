package mm

import "github.com/rv39kernel/rv39os/kernel"

// PagedAddrSpace owns a root page table frame plus every intermediate table
// frame it allocates while building mappings. M fixes the paging scheme
// (Sv39 today); A is the frame allocator type, normally shared across every
// address space the kernel builds.
type PagedAddrSpace[M PageMode, A FrameAllocator] struct {
	mode  M
	alloc A
	root  *FrameBox[A]

	// tables holds Go pointers, so unlike the frame allocator's free-list
	// it cannot live in the bootstrap arena (which the collector does not
	// scan); it grows on the runtime allocator.
	tables []*FrameBox[A]
}

// TryNewIn allocates a zeroed root table and returns a fresh, empty address
// space under the given paging mode and allocator.
func TryNewIn[M PageMode, A FrameAllocator](mode M, alloc A) (*PagedAddrSpace[M, A], error) {
	root, err := NewFrameBox[A](alloc, mode)
	if err != nil {
		return nil, err
	}
	return &PagedAddrSpace[M, A]{mode: mode, alloc: alloc, root: root}, nil
}

// RootPageNumber returns the root table's physical page number, the value
// satp must be programmed with to activate this address space.
func (as *PagedAddrSpace[M, A]) RootPageNumber() PhysPageNum {
	return as.root.PhysPageNum()
}

// Mode returns the paging mode this address space was constructed with, so
// callers outside the package (e.g. the syscall dispatcher recovering a
// kernel-visible pointer from a translated frame) can call AddrBegin without
// reaching into an unexported field.
func (as *PagedAddrSpace[M, A]) Mode() M {
	return as.mode
}

// AllocateMap creates leaf mappings for count consecutive pages starting at
// vpnBase, translating to ppnBase and onward, with the given flags. flags
// must include at least one of R/W/X. A failed call may leave earlier pages
// within the same call mapped; a caller must treat a failed AllocateMap as
// leaving the address space in unspecified partial state, not roll it back.
func (as *PagedAddrSpace[M, A]) AllocateMap(vpnBase VirtPageNum, ppnBase PhysPageNum, count int, flags Flags) error {
	if flags&(FlagR|FlagW|FlagX) == 0 {
		return &kernel.Error{Module: "mm", Message: "leaf mapping requires at least one of R/W/X"}
	}
	for i := 0; i < count; i++ {
		vpn := VirtPageNum(uint64(vpnBase) + uint64(i))
		ppn := PhysPageNum(uint64(ppnBase) + uint64(i))
		if err := as.mapOne(vpn, ppn, flags); err != nil {
			return err
		}
	}
	return nil
}

// mapOne walks from the root, allocating and zeroing an intermediate table
// frame for every non-leaf level whose entry isn't valid yet, then writes
// the leaf PTE at level 0.
func (as *PagedAddrSpace[M, A]) mapOne(vpn VirtPageNum, ppn PhysPageNum, flags Flags) error {
	tablePPN := as.root.PhysPageNum()
	levels := as.mode.Levels()

	for level := levels - 1; level >= 0; level-- {
		idx := vpnIndex(as.mode, vpn, level)
		ptes := ptesOf(as.mode, tablePPN)

		if level == 0 {
			if Flags(ptes[idx])&FlagV != 0 {
				return ErrAlreadyMapped
			}
			ptes[idx] = as.mode.EncodePTE(ppn, flags|FlagV)
			return nil
		}

		entry := ptes[idx]
		if Flags(entry)&FlagV == 0 {
			next, err := NewFrameBox[A](as.alloc, as.mode)
			if err != nil {
				return err
			}
			as.tables = append(as.tables, next)
			ptes[idx] = as.mode.EncodePTE(next.PhysPageNum(), FlagV)
			tablePPN = next.PhysPageNum()
			continue
		}

		tablePPN, _ = as.mode.DecodePTE(entry)
	}
	return nil
}

// Translate walks the page table from the root, returning the leaf's
// physical page number and flags, or ok=false if any level along the way is
// not valid.
func (as *PagedAddrSpace[M, A]) Translate(vpn VirtPageNum) (ppn PhysPageNum, flags Flags, ok bool) {
	tablePPN := as.root.PhysPageNum()
	levels := as.mode.Levels()

	for level := levels - 1; level >= 0; level-- {
		idx := vpnIndex(as.mode, vpn, level)
		entry := ptesOf(as.mode, tablePPN)[idx]
		if Flags(entry)&FlagV == 0 {
			return 0, 0, false
		}
		p, f := as.mode.DecodePTE(entry)
		if level == 0 {
			return p, f, true
		}
		tablePPN = p
	}
	return 0, 0, false
}

// Destroy frees the root table and every intermediate table frame this
// address space allocated, returning them all to the shared allocator. It is
// the explicit stand-in for the source's Drop impl; Go gives us no way to
// run it implicitly on scope exit.
func (as *PagedAddrSpace[M, A]) Destroy() {
	for _, t := range as.tables {
		t.Free()
	}
	as.tables = nil
	as.root.Free()
}
