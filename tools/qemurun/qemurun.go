// Command qemurun boots the kernel image under qemu-system-riscv64 (machine
// "virt") with the user application preloaded at its fixed physical address.
// It puts the invoking terminal into raw mode for the duration of the run so
// the guest console and the host line discipline do not fight over
// keystrokes, forwards SIGINT/SIGTERM to QEMU instead of dying around it,
// and restores the terminal on the way out.
//
// This is host-side developer tooling only; it is not part of the kernel
// build.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

const userProgramBase = 0x80400000

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[qemurun] error: %s\n", err.Error())
		os.Exit(1)
	}
	os.Exit(code)
}

// run launches QEMU and waits for it, returning the guest's exit code. It is
// separated from main so the raw-mode restore defer runs before os.Exit.
func run() (int, error) {
	var (
		qemuBin = flag.String("qemu", "qemu-system-riscv64", "QEMU binary to invoke")
		kernel  = flag.String("kernel", "", "path to the kernel image (required)")
		user    = flag.String("user", "", "path to the user application binary, loaded at 0x80400000")
		memory  = flag.String("m", "128M", "guest memory size")
		gdb     = flag.Bool("gdb", false, "start QEMU halted with a gdbstub on :1234")
	)
	flag.Parse()

	if *kernel == "" {
		return 0, fmt.Errorf("missing required -kernel flag")
	}

	args := []string{
		"-machine", "virt",
		"-nographic",
		"-m", *memory,
		"-kernel", *kernel,
	}
	if *user != "" {
		args = append(args, "-device", fmt.Sprintf("loader,file=%s,addr=0x%x", *user, userProgramBase))
	}
	if *gdb {
		args = append(args, "-s", "-S")
	}

	cmd := exec.Command(*qemuBin, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// Raw mode: QEMU's -nographic console multiplexes the guest serial
	// line onto our stdio, and cooked-mode echo/buffering garbles it.
	// Skipped when stdin is not a terminal (CI pipes, expect scripts).
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		saved, err := term.MakeRaw(fd)
		if err != nil {
			return 0, err
		}
		defer term.Restore(fd, saved)
	}

	if err := cmd.Start(); err != nil {
		return 0, err
	}

	// Forward termination signals to QEMU rather than exiting first and
	// orphaning it with the terminal still in raw mode.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, unix.SIGINT, unix.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		for sig := range sigCh {
			unix.Kill(cmd.Process.Pid, sig.(unix.Signal))
		}
	}()

	if err := cmd.Wait(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			// QEMU's exit status is the guest's business; pass it
			// through without the [qemurun] error banner.
			return cmd.ProcessState.ExitCode(), nil
		}
		return 0, err
	}
	return 0, nil
}
