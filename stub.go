package main

import "github.com/rv39kernel/rv39os/kernel/boot"

var bootHartID uint64

// main works as a trampoline for the actual kernel entrypoint (boot.Entry)
// and is intentionally defined to keep the Go compiler from optimizing the
// kernel code away: the real entry is the _start assembly, which the
// compiler is not aware of.
//
// Global variables are passed as arguments to prevent the compiler from
// inlining the call and dropping Entry from the generated object file.
//
// main is not expected to run; on hardware _start sets up the boot stack and
// calls boot.Entry directly with the hart id and device-tree address the
// firmware hands over.
func main() {
	boot.Entry(bootHartID, 0)
}
