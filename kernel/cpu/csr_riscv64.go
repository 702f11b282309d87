// Package cpu exposes the small set of privileged RISC-V operations the
// kernel needs: programming satp, flushing the TLB, halting the hart and
// reading the time CSR. The real implementations live in csr_riscv64.s and
// only execute in S-mode; csr_generic.go backs this package with software
// state on every other GOARCH so the rest of the kernel stays unit
// testable on a development machine.
package cpu

// WriteSatp programs the supervisor address translation and protection
// register with the given 64-bit value.
func WriteSatp(value uint64)

// ReadSatp returns the value currently held in satp.
func ReadSatp() uint64

// SfenceVMA flushes the TLB. When addr is zero every cached translation is
// invalidated; otherwise only the entry covering addr is flushed.
func SfenceVMA(addr uintptr)

// WriteStvec programs the supervisor trap vector base register. The low two
// bits select the vectoring mode; callers pass a 4-byte-aligned address for
// Direct mode.
func WriteStvec(value uint64)

// Wfi halts the hart until the next interrupt ("wait for interrupt"). Used
// only by Halt; kept separate so tests can stub it without touching Halt's
// control flow.
func Wfi()

// ReadTime returns the value of the time CSR (a free-running counter).
func ReadTime() uint64
