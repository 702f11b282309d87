package mm

import "github.com/rv39kernel/rv39os/kernel/cpu"

const sv39AsidShift = 44

// Sv39Satp packs mode, asid and root page number into the 64-bit value the
// satp CSR expects: (MODE=8 << 60) | (asid << 44) | root_ppn.
func Sv39Satp(asid uint64, rootPPN PhysPageNum) uint64 {
	return (Sv39{}.SatpMode() << 60) | (asid << sv39AsidShift) | uint64(rootPPN)
}

// ActivateSv39 builds the satp value for rootPPN/asid, writes it and flushes
// the TLB. The caller must ensure the currently executing code is mapped in
// the new address space, or the next instruction fetch traps.
func ActivateSv39(rootPPN PhysPageNum, asid uint64) uint64 {
	satp := Sv39Satp(asid, rootPPN)
	cpu.ActivateSv39(satp)
	return satp
}
