// Package syscall decodes and executes the (module, function, args[6])
// triples the trampoline package's Runtime surfaces as SyscallEvent: every
// ecall other than PROCESS.EXIT/PROCESS.PANIC, which Runtime already turns
// into UserExitedEvent/UserPanicEvent itself. Buffer-bearing syscalls use
// mm.TranslateFrameRead to obtain kernel-visible pointers frame by frame;
// nothing in this package dereferences a raw user pointer directly.
package syscall

import (
	"reflect"
	"unsafe"

	"github.com/rv39kernel/rv39os/kernel"
	"github.com/rv39kernel/rv39os/kernel/mm"
	"github.com/rv39kernel/rv39os/kernel/sbi"
)

// Module/function identifiers for the syscalls this dispatcher handles.
// PROCESS.EXIT and PROCESS.PANIC are decoded by the trampoline package
// itself (see trampoline.ModuleProcess) and never reach Dispatch.
const (
	ModuleTestInterface   = 0x233666
	FunctionTestWrite     = 0x666233
	testInterfaceStdoutFD = 1
)

// ErrUnknownSyscall is returned by Dispatch for any (module, function) pair
// it does not recognize. spec.md allows a source-parity panic here for an
// educational kernel; this dispatcher instead surfaces the failure to the
// caller so one malformed syscall cannot take the whole supervisor down.
var ErrUnknownSyscall = &kernel.Error{Module: "syscall", Message: "unknown syscall"}

// Result is Dispatch's successful outcome: the (code, extra) pair the
// kernel writes into the user's a0/a1 registers via SyscallEvent.Complete.
type Result struct {
	Code  uint64
	Extra uint64
}

// errCode is the sentinel value written into a0 when Dispatch itself
// reports a failure rather than a successful syscall result; user code
// observing a negative-looking a0 knows the syscall was rejected outright
// rather than having run.
const errCode = ^uint64(0)

// Dispatch decodes module/function and executes the syscall, reading any
// user buffer arguments out of userAS via TranslateFrameRead. It never
// returns an error for a successful syscall; ErrUnknownSyscall (or an
// mm.ErrBadAddress bubbled up from a buffer read) both come back as a
// non-nil error alongside a Result carrying errCode, leaving the caller free
// to decide whether that should also terminate the task.
func Dispatch[M mm.PageMode, A mm.FrameAllocator](module, function uint64, args [6]uint64, userAS *mm.PagedAddrSpace[M, A]) (Result, error) {
	switch module {
	case ModuleTestInterface:
		return dispatchTestInterface(function, args, userAS)
	default:
		return Result{Code: errCode}, ErrUnknownSyscall
	}
}

func dispatchTestInterface[M mm.PageMode, A mm.FrameAllocator](function uint64, args [6]uint64, userAS *mm.PagedAddrSpace[M, A]) (Result, error) {
	if function != FunctionTestWrite {
		return Result{Code: errCode}, ErrUnknownSyscall
	}

	fd, buf, length := args[0], args[1], args[2]
	if fd != testInterfaceStdoutFD {
		return Result{Code: errCode}, &kernel.Error{Module: "syscall", Message: "unsupported fd for TEST_INTERFACE.WRITE"}
	}

	var (
		console sbi.Console
		written int
	)
	err := mm.TranslateFrameRead(userAS, mm.VirtAddr(buf), int(length), func(ppn mm.PhysPageNum, offset, n int) {
		kernelVA := uintptr(ppn.AddrBegin(userAS.Mode())) + uintptr(offset)
		n2, _ := console.Write(byteSliceAt(kernelVA, n))
		written += n2
	})
	if err != nil {
		return Result{Code: errCode}, err
	}

	return Result{Code: 0, Extra: uint64(written)}, nil
}

// byteSliceAt overlays a byte slice on top of the kernel-visible address a
// translated user frame segment resolves to. Valid only because the
// currently active address space identity-maps physical RAM, the same
// assumption mm.TranslateFrameRead's doc comment calls out; the same overlay
// technique backs kernel.Memset and mm's ptesOf.
func byteSliceAt(addr uintptr, n int) []byte {
	return *(*[]byte)(unsafe.Pointer(&reflect.SliceHeader{
		Data: addr,
		Len:  n,
		Cap:  n,
	}))
}
