//go:build !riscv64

package cpu

// This file backs the cpu package when GOARCH is not riscv64: running the
// unit tests for the paging and trampoline packages on a development
// machine. It tracks CSR state in ordinary Go variables instead of trapping
// into supervisor-only instructions.

var (
	fakeSatp  uint64
	fakeStvec uint64
	fakeTime  uint64
)

// WriteSatp programs the supervisor address translation and protection
// register with the given 64-bit value.
func WriteSatp(value uint64) { fakeSatp = value }

// ReadSatp returns the value currently held in satp.
func ReadSatp() uint64 { return fakeSatp }

// SfenceVMA flushes the TLB. On this build it is a no-op since there is no
// real MMU to flush.
func SfenceVMA(addr uintptr) {}

// WriteStvec programs the supervisor trap vector base register.
func WriteStvec(value uint64) { fakeStvec = value }

// Wfi halts the hart until the next interrupt. On this build it panics so
// that accidentally calling Halt() from a test fails loudly instead of
// hanging the test binary.
func Wfi() { panic("cpu: Wfi called outside of a riscv64 build") }

// ReadTime returns the value of the time CSR (a free-running counter).
func ReadTime() uint64 { fakeTime++; return fakeTime }
