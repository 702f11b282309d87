package mm

import (
	"github.com/rv39kernel/rv39os/kernel"
	"github.com/rv39kernel/rv39os/kernel/sync"
)

// FrameAllocator hands out and reclaims single physical frames. A single
// allocator is shared by every address space in the system, so
// implementations must be safe for concurrent use.
type FrameAllocator interface {
	AllocateFrame() (PhysPageNum, error)
	DeallocateFrame(ppn PhysPageNum)
}

// StackFrameAllocator manages the physical range [from, to). Frames are
// handed out from the top of the free-list built up by DeallocateFrame when
// it is non-empty, and otherwise by bumping current until it reaches to; a
// frame deallocated twice would be handed out twice, which callers must not
// do.
type StackFrameAllocator struct {
	mu      sync.Spinlock
	current PhysPageNum
	end     PhysPageNum
	free    []PhysPageNum
}

// NewStackFrameAllocator returns an allocator over [from, to). The
// free-list's backing is reserved up front from the bootstrap arena, sized
// for the worst case of every frame in the range being freed, so
// DeallocateFrame never needs the runtime allocator during bring-up.
func NewStackFrameAllocator(from, to PhysPageNum) *StackFrameAllocator {
	return &StackFrameAllocator{current: from, end: to, free: bootFreeList(int(to - from))}
}

// AllocateFrame returns the top of the free-list if non-empty, otherwise the
// next frame in [current, end), otherwise ErrOutOfFrames.
func (a *StackFrameAllocator) AllocateFrame() (PhysPageNum, error) {
	a.mu.Acquire()
	defer a.mu.Release()

	if n := len(a.free); n > 0 {
		ppn := a.free[n-1]
		a.free = a.free[:n-1]
		return ppn, nil
	}
	if a.current >= a.end {
		return 0, ErrOutOfFrames
	}
	ppn := a.current
	a.current++
	return ppn, nil
}

// DeallocateFrame pushes ppn back onto the free-list.
func (a *StackFrameAllocator) DeallocateFrame(ppn PhysPageNum) {
	a.mu.Acquire()
	defer a.mu.Release()
	a.free = append(a.free, ppn)
}

// zeroFrameFn zeros a freshly allocated frame. Indirected through a package
// variable, mirroring the cpu package's Fn-hook convention, so tests that
// back frames with ordinary Go memory rather than real physical RAM can
// still exercise FrameBox without relying on this exact zeroing strategy.
var zeroFrameFn = func(ppn PhysPageNum, m PageMode) {
	kernel.Memset(uintptr(ppn.AddrBegin(m)), 0, uintptr(1)<<m.FrameSizeBits())
}

// FrameBox is the sole owner of one physical frame. It stands in for the
// source's RAII frame guard: Go has no destructors, so callers must call
// Free explicitly once the frame is no longer referenced from any page
// table.
type FrameBox[A FrameAllocator] struct {
	ppn   PhysPageNum
	alloc A
	freed bool
}

// NewFrameBox allocates and zeros one frame from alloc.
func NewFrameBox[A FrameAllocator](alloc A, mode PageMode) (*FrameBox[A], error) {
	ppn, err := alloc.AllocateFrame()
	if err != nil {
		return nil, err
	}
	zeroFrameFn(ppn, mode)
	return &FrameBox[A]{ppn: ppn, alloc: alloc}, nil
}

// PhysPageNum returns the page number of the owned frame.
func (f *FrameBox[A]) PhysPageNum() PhysPageNum { return f.ppn }

// Free returns the frame to its allocator. Calling Free more than once is a
// no-op, mirroring the idempotence of the source's Drop impl.
func (f *FrameBox[A]) Free() {
	if f.freed {
		return
	}
	f.freed = true
	f.alloc.DeallocateFrame(f.ppn)
}
