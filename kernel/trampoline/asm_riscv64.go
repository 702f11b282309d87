//go:build riscv64

// The real privilege-transition logic lives in asm_riscv64.s: restoreContext
// loads ResumeContext into the user GPRs, sepc and sstatus and executes
// sret; trapSaveAndReturn is installed as the stvec target and does the
// reverse, additionally swapping onto the kernel stack before jumping back
// into Go code. Both run only at S-mode and are declared here purely as the
// interface the rest of the package drives through trampolineResumeFn.

package trampoline

// restoreContext activates userSatp, loads ctx into the user registers and
// executes sret, entering the user task at ctx.Sepc. It does not return
// directly; control comes back into Go only once the user traps and
// trapSaveAndReturn (entered via stvec) has refilled ctx and jumped back
// here. trampolineTextVA is unused by this routine itself (stvec is
// programmed once by boot code, not on every resume) but is kept in the
// signature for symmetry with the rest of the trampoline interface.
func restoreContext(ctx *ResumeContext, trampolineTextVA uint64, userSatp uint64)

// trapSaveAndReturn is never called from Go directly; its address is
// programmed into stvec by boot code (its offset from the trampoline text
// base, as reported by TextSpan, added to trampolineTextVA). Declared here
// so the linker keeps it reachable by name.
func trapSaveAndReturn()

func defaultTrampolineResume(ctx *ResumeContext, trampolineTextVA uint64, userSatp uint64) {
	restoreContext(ctx, trampolineTextVA, userSatp)
}

// textSymbols returns the entry addresses of restoreContext and
// trapSaveAndReturn, taken from the linked image rather than hardcoded so
// TextSpan keeps working wherever the linker places the trampoline.
func textSymbols() (restorePC, trapPC uintptr)
