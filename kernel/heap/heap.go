// Package heap bootstraps the byte-slab allocator the kernel needs before
// any richer memory manager exists: the frame allocator's free-list backing
// is carved out of this arena during bring-up (see mm.NewStackFrameAllocator),
// before mm has a single physical frame to hand out.
//
// This is deliberately the rudimentary, allocate-only design gopher-os uses
// at the equivalent bring-up stage (kernel/mem/pmm/allocator.BootMemAllocator,
// "used to bootstrap the kernel before initializing a more advanced memory
// allocator"), not an attempt to replace the Go runtime's own allocator: the
// kernel's non-riscv64 build already assumes a hosted Go runtime is present
// for tests, so there is no freestanding-runtime surgery to do here.
//
// The arena is plain byte storage the garbage collector does not scan, so
// it must never hold Go pointers. Pointer-bearing containers (such as an
// address space's intermediate-table list) stay on the runtime allocator.
package heap

import (
	"github.com/rv39kernel/rv39os/kernel"
	"github.com/rv39kernel/rv39os/kernel/mem"
)

// arenaSize is the static byte-slab's size. 64 KiB is more than the core
// ever needs for free-list and page-table bookkeeping before the frame
// allocator takes over; sized generously rather than tuned.
const arenaSize = int(64 * mem.Kb)

// allocAlign keeps every allocation 8-byte aligned so callers can overlay
// word-sized element types on the returned bytes.
const allocAlign = 8

var (
	arena [arenaSize]byte
	next  int

	errHeapExhausted     = &kernel.Error{Module: "heap", Message: "bootstrap arena exhausted"}
	errHeapUninitialized = &kernel.Error{Module: "heap", Message: "bootstrap arena not initialized"}
)

// initialized lets Alloc fail cleanly when the arena was never set up
// (hosted unit-test binaries outside this package never call Init; their
// callers fall back to the runtime allocator). It does not protect against a
// second Init call: every Init resets the bump state to the start of the
// arena.
var initialized bool

// Init prepares the bootstrap arena for use. It must be called exactly once,
// before any call to Alloc, and before mm.StackFrameAllocator is
// constructed.
func Init() {
	next = 0
	initialized = true
}

// Alloc reserves n zeroed, 8-byte-aligned bytes from the bootstrap arena.
// It never returns memory to the arena: once the frame allocator and Go's
// own runtime allocator (available for every dynamic container after this
// point, since nothing here replaces runtime.mallocgc) are up, nothing
// calls Alloc again.
func Alloc(n int) ([]byte, error) {
	if !initialized {
		return nil, errHeapUninitialized
	}
	next = (next + allocAlign - 1) &^ (allocAlign - 1)
	if next+n > arenaSize {
		return nil, errHeapExhausted
	}
	b := arena[next : next+n]
	next += n
	// A re-Init (tests) may hand back previously dirtied bytes.
	for i := range b {
		b[i] = 0
	}
	return b, nil
}

// Used reports how many bytes of the bootstrap arena are currently spoken
// for, primarily so boot code can log how much of the budget bring-up
// actually consumed.
func Used() int { return next }
