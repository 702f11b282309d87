package mm

import (
	"github.com/rv39kernel/rv39os/kernel/cpu"
	"github.com/rv39kernel/rv39os/kernel/sync"
)

const asidFieldBits = 16

// AsidAllocator hands out address-space identifiers. ASID 0 is reserved for
// global mappings and is never returned.
type AsidAllocator interface {
	AllocateAsid() (uint64, error)
	DeallocateAsid(asid uint64)
}

// StackAsidAllocator allocates ASIDs 1..maxAsid, recycling freed ones off a
// stack before handing out a fresh one.
type StackAsidAllocator struct {
	mu      sync.Spinlock
	maxAsid uint64
	next    uint64
	free    []uint64
}

// NewStackAsidAllocator returns an allocator over [1, maxAsid].
func NewStackAsidAllocator(maxAsid uint64) *StackAsidAllocator {
	return &StackAsidAllocator{maxAsid: maxAsid, next: 1}
}

// AllocateAsid returns a fresh ASID >= 1, or ErrNoMoreAsids.
func (a *StackAsidAllocator) AllocateAsid() (uint64, error) {
	a.mu.Acquire()
	defer a.mu.Release()

	if n := len(a.free); n > 0 {
		asid := a.free[n-1]
		a.free = a.free[:n-1]
		return asid, nil
	}
	if a.next > a.maxAsid {
		return 0, ErrNoMoreAsids
	}
	asid := a.next
	a.next++
	return asid, nil
}

// DeallocateAsid returns asid to the free-list.
func (a *StackAsidAllocator) DeallocateAsid(asid uint64) {
	a.mu.Acquire()
	defer a.mu.Release()
	a.free = append(a.free, asid)
}

// DiscoverMaxAsid probes the hardware's implemented ASID width by writing
// all-ones into satp's ASID field and reading back which bits stuck, then
// restores the original satp value.
func DiscoverMaxAsid() uint64 {
	orig := cpu.ReadSatp()
	fieldMask := uint64(1)<<asidFieldBits - 1

	cpu.WriteSatp(orig | (fieldMask << sv39AsidShift))
	readback := (cpu.ReadSatp() >> sv39AsidShift) & fieldMask
	cpu.WriteSatp(orig)

	return readback
}
