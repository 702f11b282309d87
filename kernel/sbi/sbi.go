// Package sbi wraps the two supervisor-binary-interface calls this kernel
// needs from the firmware: writing a byte to the console and shutting the
// machine down. Both use the legacy SBI calling convention (extension id in
// a7, argument in a0, no function id) rather than the newer SBI extension
// registry, matching the handful of calls an educational riscv64 kernel
// actually issues before any richer firmware interface is wired up.
package sbi

// Legacy SBI extension ids this kernel calls.
const (
	extConsolePutChar = 1
	extShutdown       = 8
)

// PutChar writes a single byte to the firmware's console.
func PutChar(b byte) {
	ecall(extConsolePutChar, uint64(b), 0, 0)
}

// Shutdown asks the firmware to power off the machine. Real firmware never
// returns from this call; callers that reach code after it treat that as a
// firmware bug and fall back to halting the hart instead.
func Shutdown() {
	ecall(extShutdown, 0, 0, 0)
}

// Console adapts PutChar to io.Writer so it can be installed as kfmt's
// output sink once the firmware console is known to be reachable (i.e.
// after boot has run far enough to trust an ecall won't trap).
type Console struct{}

// Write implements io.Writer by emitting each byte through PutChar. Never
// returns a short write or an error: SBI's legacy console call has no
// failure mode visible to the caller.
func (Console) Write(p []byte) (int, error) {
	for _, b := range p {
		PutChar(b)
	}
	return len(p), nil
}
