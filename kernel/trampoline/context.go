// Package trampoline implements the kernel/user context-switch protocol: the
// shared ResumeContext layout, the Runtime state machine that represents a
// user task as a resumable sequence of trap events, and the declared
// interface to the trampoline assembly that performs the actual privilege
// transitions.
package trampoline

// Register indices into ResumeContext.X, following the standard RISC-V
// integer ABI. Index 0 (x0, the hardwired zero register) is never stored.
const (
	RegRA = 1
	RegSP = 2
	RegA0 = 10
	RegA1 = 11
	RegA6 = 16
	RegA7 = 17
)

// sstatus bits this package reads or sets. Only the two fields the
// kernel/user boundary cares about are named; everything else is passed
// through untouched.
const (
	sstatusSPIE = 1 << 5 // supervisor previous interrupt-enable
	sstatusSPP  = 1 << 8 // supervisor previous privilege (0 = U, 1 = S)
)

// scauseEcallFromU is the trap cause RISC-V reports for an ecall executed in
// U-mode.
const scauseEcallFromU = 8

// ResumeContext is the fixed layout agreed between the kernel and the
// trampoline assembly. A ResumeContext lives in a frame shared-mapped RW
// into both the owning kernel address space and the user address space it
// belongs to, at the same high virtual address in both.
type ResumeContext struct {
	// X holds the 32 general-purpose registers; X[0] is unused since x0 is
	// hardwired to zero. Saved/restored verbatim across a trap round trip.
	X [32]uint64

	Sepc    uint64
	Sstatus uint64
	Scause  uint64
	Stval   uint64

	// KernelSatp, KernelSp and KernelTrapHandlerVA let trap_save_and_return
	// switch back to the kernel's address space and stack without needing
	// any memory access beyond this struct itself. restoreContext fills
	// all three in on every call, immediately before the sret that leaves
	// the kernel, so Resume behaves like an ordinary call/return pair from
	// its caller's perspective regardless of where in the kernel it is
	// invoked from.
	KernelSatp          uint64
	KernelSp            uint64
	KernelTrapHandlerVA uint64
}

// newUserResumeContext builds the initial ResumeContext for a fresh user
// task: sepc at its entry point, sp at the top of its stack, and sstatus set
// up so the pending sret drops to U-mode with interrupts re-enabled on
// return. The Kernel* fields start zeroed; restoreContext populates them on
// the first (and every subsequent) Resume call.
func newUserResumeContext(userEntryPA, userStackVA uint64) ResumeContext {
	var ctx ResumeContext
	ctx.Sepc = userEntryPA
	ctx.X[RegSP] = userStackVA
	ctx.Sstatus = sstatusSPIE // SPP left clear: 0 selects User
	return ctx
}
