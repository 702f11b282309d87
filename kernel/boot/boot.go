// Package boot wires the kernel together: it is the Go-visible target of the
// _start assembly stanza and performs bring-up in the order the rest of the
// tree assumes — bootstrap heap, frame allocator, kernel address space, satp
// activation, user address space, then the resume/dispatch loop that drives
// the single user task until it exits, panics or faults.
package boot

import (
	"unsafe"

	"github.com/rv39kernel/rv39os/kernel/cpu"
	"github.com/rv39kernel/rv39os/kernel/heap"
	"github.com/rv39kernel/rv39os/kernel/kfmt"
	"github.com/rv39kernel/rv39os/kernel/mm"
	"github.com/rv39kernel/rv39os/kernel/platform"
	"github.com/rv39kernel/rv39os/kernel/sbi"
	"github.com/rv39kernel/rv39os/kernel/syscall"
	"github.com/rv39kernel/rv39os/kernel/trampoline"
)

// addrSpace pins the one paging-mode/allocator combination this kernel
// instantiates. Everything below deals in this alias; the generic machinery
// in mm exists so the combination is chosen in exactly one place.
type addrSpace = mm.PagedAddrSpace[mm.Sv39, mm.FrameAllocator]

// resumeContextPages is how many frames the ResumeContext alias mapping
// covers. The struct is a few hundred bytes but is not page-aligned, so it
// may straddle a frame boundary; two pages always cover it.
const resumeContextPages = 2

// userStackFrames keeps the user stack's backing FrameBoxes referenced for
// the kernel's lifetime. The frames are handed to the user address space as
// mappings, never freed; a single task kernel has no teardown path that
// would want them back.
var userStackFrames []*mm.FrameBox[mm.FrameAllocator]

// Entry is called from the _start assembly with the boot hart's id and the
// physical address of the device tree QEMU hands over. It never returns.
func Entry(hartID, dtbPA uint64) {
	heap.Init()
	kfmt.SetOutputSink(sbi.Console{})
	kfmt.SetShutdownFn(sbi.Shutdown)

	kfmt.Printf("rv39os: boot hart %d, device tree at 0x%x\n", hartID, dtbPA)

	mode := mm.Sv39{}
	alloc := mm.NewStackFrameAllocator(
		mm.PhysAddr(platform.FreeFrameBase).PageNumber(mode),
		mm.PhysAddr(platform.FreeFrameEnd).PageNumber(mode),
	)

	trampTextPA, trampTextPages, trapOffset := trampoline.TextSpan()

	kernelAS, err := buildKernelAddrSpace(alloc, trampTextPA, trampTextPages)
	if err != nil {
		kfmt.Panic(err)
	}

	// The user task gets a real ASID when the hardware implements any ASID
	// bits; the kernel keeps ASID 0 either way, so a zero-width
	// implementation simply shares the one tag and eats the extra TLB
	// flushes on every switch.
	var userAsid uint64
	if maxAsid := mm.DiscoverMaxAsid(); maxAsid > 0 {
		asids := mm.NewStackAsidAllocator(maxAsid)
		userAsid, err = asids.AllocateAsid()
		if err != nil {
			kfmt.Panic(err)
		}
	} else {
		kfmt.Printf("mm: hardware implements no ASID bits, all address spaces share tag 0\n")
	}

	mm.ActivateSv39(kernelAS.RootPageNumber(), 0)
	kfmt.Printf("mm: paging active, kernel root at ppn 0x%x\n", uint64(kernelAS.RootPageNumber()))

	userAS, err := buildUserAddrSpace(alloc, trampTextPA, trampTextPages)
	if err != nil {
		kfmt.Panic(err)
	}

	userSatp := mm.Sv39Satp(userAsid, userAS.RootPageNumber())
	rt := trampoline.NewUserRuntime(
		platform.UserProgramBase,
		userStackTopVA(),
		userSatp,
		platform.TrampolineTextVA(trampTextPages),
		platform.TrampolineDataVA(trampTextPages, resumeContextPages),
		trampoline.UserMemoryFunc(func(va uint64, n int) ([]byte, error) {
			return mm.ReadUserBytes(userAS, mm.VirtAddr(va), n)
		}),
	)

	if err := mapResumeContext(kernelAS, userAS, rt.Context(), trampTextPages); err != nil {
		kfmt.Panic(err)
	}
	cpu.SfenceVMA(0)

	// Direct-mode trap vector: the high alias of trapSaveAndReturn, valid
	// in whichever of the two address spaces is active when a trap lands.
	cpu.WriteStvec(platform.TrampolineTextVA(trampTextPages) + uint64(trapOffset))

	kfmt.Printf("boot: bootstrap heap used %d bytes; entering user task\n", heap.Used())
	code := mainLoop(rt, userAS)
	kfmt.Printf("boot: user task finished with code %d, shutting down\n", code)
	sbi.Shutdown()
	cpu.Halt()
}

// buildKernelAddrSpace identity-maps everything the kernel touches after
// satp activation, plus the trampoline text at its fixed high address.
// Nothing here carries the U flag: the kernel's own mappings are not the
// user's business, and the user address space makes its own arrangements.
func buildKernelAddrSpace(alloc mm.FrameAllocator, trampTextPA uintptr, trampTextPages int) (*addrSpace, error) {
	mode := mm.Sv39{}
	as, err := mm.TryNewIn[mm.Sv39, mm.FrameAllocator](mode, alloc)
	if err != nil {
		return nil, err
	}

	// Firmware plus kernel image, 4 MiB from FirmwareBase. RWX because the
	// kernel executes and writes within this range; the next fetch after
	// satp activation comes from here.
	firmware := mm.PhysAddr(platform.FirmwareBase).PageNumber(mode)
	if err := as.AllocateMap(mm.VirtPageNum(firmware), firmware, platform.IdentityMapPages, mm.FlagR|mm.FlagW|mm.FlagX); err != nil {
		return nil, err
	}

	// The free-frame range: page-table construction and frame zeroing keep
	// writing through identity pointers after activation.
	freeFrom := mm.PhysAddr(platform.FreeFrameBase).PageNumber(mode)
	freePages := int(uint64(mm.PhysAddr(platform.FreeFrameEnd).PageNumber(mode)) - uint64(freeFrom))
	if err := as.AllocateMap(mm.VirtPageNum(freeFrom), freeFrom, freePages, mm.FlagR|mm.FlagW); err != nil {
		return nil, err
	}

	if err := mapTrampolineText(as, trampTextPA, trampTextPages); err != nil {
		return nil, err
	}
	return as, nil
}

// buildUserAddrSpace builds the single user task's address space: the user
// program and its stack with U set, plus the S-mode-only plumbing (kernel
// identity range and trampoline text) the trap round trip runs on while
// this address space is active.
func buildUserAddrSpace(alloc mm.FrameAllocator, trampTextPA uintptr, trampTextPages int) (*addrSpace, error) {
	mode := mm.Sv39{}
	as, err := mm.TryNewIn[mm.Sv39, mm.FrameAllocator](mode, alloc)
	if err != nil {
		return nil, err
	}

	// The user program, preloaded by QEMU at its fixed physical address and
	// run through an identity mapping.
	prog := mm.PhysAddr(platform.UserProgramBase).PageNumber(mode)
	if err := as.AllocateMap(mm.VirtPageNum(prog), prog, platform.UserProgramPages, mm.FlagR|mm.FlagW|mm.FlagX|mm.FlagU); err != nil {
		return nil, err
	}

	// User stack: fresh frames, mapped one page at a time since the
	// allocator does not promise contiguous results.
	stackVPN := mm.VirtAddr(platform.UserStackBase).PageNumber(mode)
	for i := 0; i < platform.UserStackPages; i++ {
		frame, err := mm.NewFrameBox[mm.FrameAllocator](alloc, mode)
		if err != nil {
			return nil, err
		}
		userStackFrames = append(userStackFrames, frame)
		if err := as.AllocateMap(mm.VirtPageNum(uint64(stackVPN)+uint64(i)), frame.PhysPageNum(), 1, mm.FlagR|mm.FlagW|mm.FlagU); err != nil {
			return nil, err
		}
	}

	// Kernel image and firmware, identity, S-mode only: restoreContext and
	// trapSaveAndReturn both execute and dereference kernel addresses while
	// this address space is the active one.
	firmware := mm.PhysAddr(platform.FirmwareBase).PageNumber(mode)
	if err := as.AllocateMap(mm.VirtPageNum(firmware), firmware, platform.IdentityMapPages, mm.FlagR|mm.FlagW|mm.FlagX); err != nil {
		return nil, err
	}

	// The free-frame range, identity with U: this educational kernel lets
	// its user program inspect physical memory directly, and the syscall
	// dispatcher's translated-pointer reads go through the same mapping.
	freeFrom := mm.PhysAddr(platform.FreeFrameBase).PageNumber(mode)
	freePages := int(uint64(mm.PhysAddr(platform.FreeFrameEnd).PageNumber(mode)) - uint64(freeFrom))
	if err := as.AllocateMap(mm.VirtPageNum(freeFrom), freeFrom, freePages, mm.FlagR|mm.FlagW|mm.FlagU); err != nil {
		return nil, err
	}

	if err := mapTrampolineText(as, trampTextPA, trampTextPages); err != nil {
		return nil, err
	}
	return as, nil
}

// mapTrampolineText maps the trampoline's code frames at the fixed high
// virtual address. RX without U: the trampoline only ever executes at
// S-mode (trap entry, and the stretch between restoreContext's satp switch
// and its sret), so a U fetch permission would widen the user's reach for
// nothing.
func mapTrampolineText(as *addrSpace, trampTextPA uintptr, trampTextPages int) error {
	mode := mm.Sv39{}
	vpn := mm.VirtAddr(platform.TrampolineTextVA(trampTextPages)).PageNumber(mode)
	ppn := mm.PhysAddr(trampTextPA).PageNumber(mode)
	return as.AllocateMap(vpn, ppn, trampTextPages, mm.FlagR|mm.FlagX)
}

// mapResumeContext aliases the frames holding the Runtime's ResumeContext
// at the fixed high trampoline-data address in both address spaces, RW and
// never U. The trampoline assembly itself reaches the context through its
// identity pointer (stashed in sscratch), which both address spaces' kernel
// identity ranges keep valid; the high alias is the stable, address-space-
// independent name for the same frames.
func mapResumeContext(kernelAS, userAS *addrSpace, ctx *trampoline.ResumeContext, trampTextPages int) error {
	mode := mm.Sv39{}
	base := mm.PhysAddr(uintptr(unsafe.Pointer(ctx))).PageNumber(mode)
	vpn := mm.VirtAddr(platform.TrampolineDataVA(trampTextPages, resumeContextPages)).PageNumber(mode)

	for _, as := range [...]*addrSpace{kernelAS, userAS} {
		if err := as.AllocateMap(vpn, base, resumeContextPages, mm.FlagR|mm.FlagW); err != nil {
			return err
		}
	}
	return nil
}

// userStackTopVA is the user task's initial stack pointer: the exclusive
// top of the stack range, growing down.
func userStackTopVA() uint64 {
	return platform.UserStackBase + platform.UserStackPages*platform.FrameSize
}

// mainLoop drives the user task to completion, dispatching each yielded
// event, and returns the task's exit code (1 for panics and faults).
func mainLoop(rt *trampoline.Runtime, userAS *addrSpace) int32 {
	for {
		switch ev := rt.Resume().(type) {
		case trampoline.SyscallEvent:
			res, err := syscall.Dispatch(ev.Module, ev.Function, ev.Args, userAS)
			if err != nil {
				kfmt.Printf("syscall: module 0x%x function 0x%x rejected: %s\n", ev.Module, ev.Function, err.Error())
			}
			ev.Complete(res.Code, res.Extra)

		case trampoline.UserExitedEvent:
			return ev.Code

		case trampoline.UserPanicEvent:
			file, msg := "<unknown>", "<no message>"
			if ev.HasFile {
				file = ev.File
			}
			if ev.HasMsg {
				msg = ev.Msg
			}
			kfmt.Printf("user panic at %s:%d:%d: %s\n", file, ev.Line, ev.Col, msg)
			return 1

		case trampoline.ExceptionEvent:
			kfmt.Printf("user trap: scause %d stval 0x%x sepc 0x%x, terminating task\n", ev.Scause, ev.Stval, ev.Sepc)
			return 1

		case trampoline.TerminatedEvent:
			return 0
		}
	}
}
