package mm

import "github.com/rv39kernel/rv39os/kernel"

// Errors raised by this package. They are pre-allocated values, consistent
// with the rest of the kernel's no-heap-before-init error convention; callers
// compare against these pointers rather than matching on message text.
var (
	// ErrOutOfFrames is returned by a FrameAllocator once its range is
	// exhausted and its free list is empty.
	ErrOutOfFrames = &kernel.Error{Module: "mm", Message: "out of physical frames"}

	// ErrAlreadyMapped is returned by AllocateMap when the target leaf PTE
	// is already valid.
	ErrAlreadyMapped = &kernel.Error{Module: "mm", Message: "virtual page already mapped"}

	// ErrNoMoreAsids is returned once an AsidAllocator's range is exhausted.
	ErrNoMoreAsids = &kernel.Error{Module: "mm", Message: "no more address space identifiers"}

	// ErrBadAddress is returned by TranslateFrameRead when the user range it
	// walks includes an unmapped or non-readable page.
	ErrBadAddress = &kernel.Error{Module: "mm", Message: "bad user address"}
)
