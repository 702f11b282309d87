// Package platform holds the fixed physical/virtual memory map this kernel
// targets: QEMU's "virt" machine, one hart, one user task loaded at a fixed
// physical address. There is exactly one supported target, so these are
// untyped constants rather than a parsed configuration, mirroring how
// gopher-os hardcodes its own target's layout in kernel/mem/constants_amd64.go.
package platform

import "github.com/rv39kernel/rv39os/kernel/mem"

// FrameSizeBits is log2 of the Sv39 frame size (4 KiB).
const FrameSizeBits = 12

// FrameSize is the Sv39 frame size in bytes.
const FrameSize = 1 << FrameSizeBits

const (
	// FirmwareBase is where QEMU loads OpenSBI; the kernel identity-maps
	// this range so it can still run after its own mappings take over.
	FirmwareBase = 0x80000000

	// KernelBase is where the kernel image itself is loaded (-kernel).
	KernelBase = 0x80200000

	// UserProgramBase is the fixed physical address the user application
	// binary is loaded at.
	UserProgramBase = 0x80400000
	// UserProgramPages is the user application's footprint, 32 pages (128 KiB).
	UserProgramPages = 32

	// FreeFrameBase is the start of the physical range the frame allocator
	// manages.
	FreeFrameBase = 0x80420000
	// FreeFrameEnd is the exclusive end of the free-frame range.
	FreeFrameEnd = 0x80800000

	// IdentityMapPages is the page count of the FirmwareBase..+4MiB region
	// the kernel address space identity-maps.
	IdentityMapPages = int(4*mem.Mb) / FrameSize

	// UserStackBase is the user stack's lowest virtual address; the stack
	// grows down from UserStackBase + UserStackPages*FrameSize.
	UserStackBase = 0x60000000
	// UserStackPages is the user stack's page count (5 pages, 20 KiB).
	UserStackPages = 5
)

// TrampolineTextVA is the top of the virtual address space minus the
// trampoline text's length, rounded down to a page boundary by the caller
// (textPages * FrameSize). Both the kernel and every user address space map
// the trampoline text at this address.
func TrampolineTextVA(textPages int) uint64 {
	return ^uint64(0) - uint64(textPages)*FrameSize + 1
}

// TrampolineDataVA is immediately below the trampoline text region.
func TrampolineDataVA(textPages, dataPages int) uint64 {
	return TrampolineTextVA(textPages) - uint64(dataPages)*FrameSize
}
