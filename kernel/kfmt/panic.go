package kfmt

import (
	"github.com/rv39kernel/rv39os/kernel"
	"github.com/rv39kernel/rv39os/kernel/cpu"
)

var (
	// cpuHaltFn is mocked by tests and is automatically inlined by the compiler.
	cpuHaltFn = cpu.Halt

	// shutdownFn is called after the panic banner is printed, before falling
	// back to cpuHaltFn. Boot code overrides it with the SBI shutdown call
	// once the console is attached; the zero value is a no-op so Panic stays
	// safe to call before that point.
	shutdownFn = func() {}

	errRuntimePanic = &kernel.Error{Module: "rt", Message: "unknown cause"}
)

// SetShutdownFn overrides the function Panic invokes after printing its
// banner. Kept as a setter rather than a direct import of the SBI package so
// kfmt does not depend on it; boot installs sbi.Shutdown here.
func SetShutdownFn(fn func()) {
	shutdownFn = fn
}

// Panic outputs the supplied error (if not nil) to the console, attempts a
// platform shutdown and, if that call returns, halts the CPU. Calls to Panic
// never return.
func Panic(e interface{}) {
	var err *kernel.Error

	switch t := e.(type) {
	case *kernel.Error:
		err = t
	case string:
		panicString(t)
		return
	case error:
		errRuntimePanic.Message = t.Error()
		err = errRuntimePanic
	}

	Printf("\n-----------------------------------\n")
	if err != nil {
		Printf("[%s] unrecoverable error: %s\n", err.Module, err.Message)
	}
	Printf("*** kernel panic: system halted ***")
	Printf("\n-----------------------------------\n")

	shutdownFn()
	cpuHaltFn()
}

// panicString is the entry point used when the recovered panic value is a
// plain string rather than a *kernel.Error.
func panicString(msg string) {
	errRuntimePanic.Message = msg
	Panic(errRuntimePanic)
}
