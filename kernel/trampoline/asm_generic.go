//go:build !riscv64

package trampoline

// This file backs the trampoline package when GOARCH is not riscv64,
// mirroring kernel/cpu's csr_generic.go: there is no real sret/trap round
// trip to perform on a development machine, so restoreContext panics if
// ever actually reached. Unit tests exercise Runtime by overriding
// trampolineResumeFn instead of calling through to this function, the same
// pattern cpu_test.go uses for writeSatpFn/sfenceVMAFn.
func restoreContext(ctx *ResumeContext, trampolineTextVA uint64, userSatp uint64) {
	panic("trampoline: restoreContext called outside of a riscv64 build")
}

func defaultTrampolineResume(ctx *ResumeContext, trampolineTextVA uint64, userSatp uint64) {
	restoreContext(ctx, trampolineTextVA, userSatp)
}

// textSymbols has no real assembly behind it on this build; TextSpan turns
// the zero addresses into a harmless one-page placeholder span.
func textSymbols() (restorePC, trapPC uintptr) { return 0, 0 }
