package trampoline

// trampolineResumeFn is indirected through a package variable, mirroring the
// cpu package's hook convention, so tests can simulate a user trap without
// a real sret/ecall round trip.
var trampolineResumeFn = defaultTrampolineResume

// trampolineFrameSize matches the Sv39 frame size. Kept as a local constant
// rather than an mm import so this package stays a leaf of the dependency
// graph; the two values are fixed by the same architecture.
const trampolineFrameSize = 4096

// TextSpan reports where the trampoline's code lives in the kernel image:
// the page-aligned physical base of the text, the number of frames covering
// it, and trapSaveAndReturn's byte offset from that base. Boot code maps
// [basePA, basePA+pages*4096) at the fixed high trampoline text virtual
// address in every address space, and programs stvec with the high alias of
// base+trapOffset. On non-riscv64 builds the underlying symbols do not
// exist and the reported span is a one-page placeholder at address 0 with a
// zero trap offset.
func TextSpan() (basePA uintptr, pages int, trapOffset uintptr) {
	restorePC, trapPC := textSymbols()
	basePA = restorePC &^ (trampolineFrameSize - 1)
	pages = int((trapPC-basePA)/trampolineFrameSize) + 1
	trapOffset = trapPC - basePA
	return basePA, pages, trapOffset
}
