//go:build riscv64

package sbi

// ecall performs a legacy SBI call: extension id eid in a7, up to three
// arguments in a0..a2. The real implementation lives in sbi_riscv64.s; it
// only ever executes in S-mode.
func ecall(eid, arg0, arg1, arg2 uint64) uint64
