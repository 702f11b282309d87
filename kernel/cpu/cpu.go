package cpu

var (
	// writeSatpFn, sfenceVMAFn and wfiFn are indirected through package
	// variables so tests can observe or replace them without calling into
	// privileged instructions. This mirrors the teacher's cpuidFn hook.
	writeSatpFn = WriteSatp
	sfenceVMAFn = SfenceVMA
	wfiFn       = Wfi
)

// ActivateSv39 writes satp and performs the TLB flush required after
// changing the active address space.
func ActivateSv39(satp uint64) {
	writeSatpFn(satp)
	sfenceVMAFn(0)
}

// Halt parks the hart in an infinite wfi loop. It never returns; it is the
// terminal action taken after a kernel panic prints its message.
func Halt() {
	for {
		wfiFn()
	}
}
