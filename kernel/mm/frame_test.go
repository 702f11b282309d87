package mm_test

import (
	"testing"

	"github.com/rv39kernel/rv39os/kernel/mm"
)

func TestStackFrameAllocatorRoundTrip(t *testing.T) {
	from := mm.PhysPageNum(0x1000)
	to := mm.PhysPageNum(0x1010) // 16 frames
	alloc := mm.NewStackFrameAllocator(from, to)

	var got []mm.PhysPageNum
	for i := 0; i < 16; i++ {
		ppn, err := alloc.AllocateFrame()
		if err != nil {
			t.Fatalf("AllocateFrame #%d: %v", i, err)
		}
		got = append(got, ppn)
	}

	if _, err := alloc.AllocateFrame(); err != mm.ErrOutOfFrames {
		t.Fatalf("AllocateFrame after exhausting range: got %v, want ErrOutOfFrames", err)
	}

	for _, ppn := range got {
		alloc.DeallocateFrame(ppn)
	}

	for i := 0; i < 16; i++ {
		if _, err := alloc.AllocateFrame(); err != nil {
			t.Fatalf("AllocateFrame after freeing every frame: %v", err)
		}
	}

	if _, err := alloc.AllocateFrame(); err != mm.ErrOutOfFrames {
		t.Fatalf("AllocateFrame after re-exhausting range: got %v, want ErrOutOfFrames", err)
	}
}

func TestStackFrameAllocatorNeverDuplicates(t *testing.T) {
	alloc := mm.NewStackFrameAllocator(mm.PhysPageNum(0), mm.PhysPageNum(8))

	seen := make(map[mm.PhysPageNum]bool)
	for i := 0; i < 8; i++ {
		ppn, err := alloc.AllocateFrame()
		if err != nil {
			t.Fatalf("AllocateFrame #%d: %v", i, err)
		}
		if seen[ppn] {
			t.Fatalf("frame %d handed out twice", ppn)
		}
		seen[ppn] = true
	}
}

func TestFrameBoxAllocatesAndFreesExactlyOnce(t *testing.T) {
	buf, from, to := ramPages(t, 4)
	defer func() { _ = buf }()

	alloc := mm.NewStackFrameAllocator(from, to)

	box, err := mm.NewFrameBox[mm.FrameAllocator](alloc, mm.Sv39{})
	if err != nil {
		t.Fatalf("NewFrameBox: %v", err)
	}
	if box.PhysPageNum() != from {
		t.Fatalf("FrameBox.PhysPageNum() = %d, want %d", box.PhysPageNum(), from)
	}

	box.Free()
	box.Free() // idempotent; must not push the frame twice

	var returned []mm.PhysPageNum
	for {
		ppn, err := alloc.AllocateFrame()
		if err != nil {
			break
		}
		returned = append(returned, ppn)
	}

	count := 0
	for _, ppn := range returned {
		if ppn == from {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("frame %d reachable %d times after a double Free, want 1", from, count)
	}
}
