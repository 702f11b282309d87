package heap_test

import (
	"testing"

	"github.com/rv39kernel/rv39os/kernel/heap"
)

func TestAllocBumpsUsedAndZeroes(t *testing.T) {
	heap.Init()

	b, err := heap.Alloc(16)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	for i, v := range b {
		if v != 0 {
			t.Fatalf("Alloc byte %d = %d, want 0", i, v)
		}
	}
	if got := heap.Used(); got != 16 {
		t.Fatalf("Used() = %d, want 16", got)
	}

	if _, err := heap.Alloc(8); err != nil {
		t.Fatalf("second Alloc: %v", err)
	}
	if got := heap.Used(); got != 24 {
		t.Fatalf("Used() after second Alloc = %d, want 24", got)
	}
}

func TestAllocExhaustion(t *testing.T) {
	heap.Init()

	if _, err := heap.Alloc(1 << 20); err == nil {
		t.Fatal("expected Alloc of a region larger than the arena to fail")
	}
}

func TestAllocAlignsToWordBoundary(t *testing.T) {
	heap.Init()

	if _, err := heap.Alloc(3); err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if _, err := heap.Alloc(8); err != nil {
		t.Fatalf("second Alloc: %v", err)
	}
	// The second allocation must start at the next 8-byte boundary (8),
	// not at offset 3.
	if got := heap.Used(); got != 16 {
		t.Fatalf("Used() = %d, want 16 after an aligned second allocation", got)
	}
}
