package trampoline

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fakeTrap installs a trampolineResumeFn stand-in that, instead of a real
// sret/trap round trip, directly pokes the fields a trap handler would have
// filled in. This is the same substitution cpu_test.go performs for
// writeSatpFn/sfenceVMAFn: Resume's contract is "call trampolineResumeFn,
// then decode ctx", so swapping what fills ctx is enough to drive every
// branch of decodeTrap without real hardware.
func fakeTrap(t *testing.T, scause uint64, a6, a7 uint64, a0 [6]uint64) {
	t.Helper()
	orig := trampolineResumeFn
	t.Cleanup(func() { trampolineResumeFn = orig })

	trampolineResumeFn = func(ctx *ResumeContext, trampolineTextVA, userSatp uint64) {
		ctx.Scause = scause
		ctx.X[RegA6] = a6
		ctx.X[RegA7] = a7
		for i, v := range a0 {
			ctx.X[RegA0+i] = v
		}
	}
}

func TestResumeUserExitedThenSticky(t *testing.T) {
	fakeTrap(t, scauseEcallFromU, FunctionProcessExit, ModuleProcess, [6]uint64{42})

	rt := NewUserRuntime(0x80400000, 0x60005000, 0, 0, 0, nil)

	ev := rt.Resume()
	exited, ok := ev.(UserExitedEvent)
	if !ok {
		t.Fatalf("Resume returned %T, want UserExitedEvent", ev)
	}
	if exited.Code != 42 {
		t.Fatalf("UserExitedEvent.Code = %d, want 42", exited.Code)
	}
	if !rt.Terminated() {
		t.Fatal("Runtime should be Terminated after UserExited")
	}

	if ev2 := rt.Resume(); !cmp.Equal(ev2, TerminatedEvent{}) {
		t.Fatalf("Resume after Terminated = %#v, want TerminatedEvent{}", ev2)
	}
}

func TestResumeUserPanicReadsFileAndMsg(t *testing.T) {
	const (
		fileBuf = 0x1000
		msgBuf  = 0x2000
	)
	fakeTrap(t, scauseEcallFromU, FunctionProcessPanic, ModuleProcess,
		[6]uint64{10, 5, fileBuf, 4, msgBuf, 1})

	mem := UserMemoryFunc(func(va uint64, n int) ([]byte, error) {
		switch va {
		case fileBuf:
			return []byte("a.rs")[:n], nil
		case msgBuf:
			return []byte("x")[:n], nil
		}
		t.Fatalf("unexpected ReadBytes(%#x, %d)", va, n)
		return nil, nil
	})

	rt := NewUserRuntime(0x80400000, 0x60005000, 0, 0, 0, mem)
	ev := rt.Resume()

	want := UserPanicEvent{File: "a.rs", HasFile: true, Line: 10, Col: 5, Msg: "x", HasMsg: true}
	if diff := cmp.Diff(want, ev); diff != "" {
		t.Fatalf("UserPanicEvent mismatch (-want +got):\n%s", diff)
	}
	if !rt.Terminated() {
		t.Fatal("Runtime should be Terminated after UserPanic")
	}
}

func TestResumeUserPanicAbsentFileAndMsg(t *testing.T) {
	fakeTrap(t, scauseEcallFromU, FunctionProcessPanic, ModuleProcess,
		[6]uint64{1, 2, 0, 0, 0, 0})

	rt := NewUserRuntime(0x80400000, 0x60005000, 0, 0, 0, nil)
	ev := rt.Resume().(UserPanicEvent)

	if ev.HasFile || ev.HasMsg {
		t.Fatalf("expected absent file/msg for null pointers, got %+v", ev)
	}
}

func TestResumeSyscallEventCompleteAdvancesSepcAndSetsResult(t *testing.T) {
	fakeTrap(t, scauseEcallFromU, 0x666233, 0x233666, [6]uint64{1, 0x3000, 3})

	rt := NewUserRuntime(0x80400000, 0x60005000, 0, 0, 0, nil)
	rt.ctx.Sepc = 0x80400010

	ev := rt.Resume()
	sc, ok := ev.(SyscallEvent)
	if !ok {
		t.Fatalf("Resume returned %T, want SyscallEvent", ev)
	}
	if sc.Module != 0x233666 || sc.Function != 0x666233 {
		t.Fatalf("SyscallEvent module/function = %#x/%#x, want 0x233666/0x666233", sc.Module, sc.Function)
	}
	if sc.Args != [6]uint64{1, 0x3000, 3, 0, 0, 0} {
		t.Fatalf("SyscallEvent.Args = %v, want [1 0x3000 3 0 0 0]", sc.Args)
	}

	sc.Complete(0, 3)
	if rt.ctx.X[RegA0] != 0 || rt.ctx.X[RegA1] != 3 {
		t.Fatalf("Complete did not set a0/a1: a0=%d a1=%d", rt.ctx.X[RegA0], rt.ctx.X[RegA1])
	}
	if rt.ctx.Sepc != 0x80400014 {
		t.Fatalf("Complete left Sepc = %#x, want %#x (advanced by 4)", rt.ctx.Sepc, 0x80400014)
	}
	if rt.Terminated() {
		t.Fatal("a plain SyscallEvent must not terminate the Runtime")
	}
}

func TestResumeExceptionForNonEcallTrap(t *testing.T) {
	const scauseStorePageFault = 15
	fakeTrap(t, scauseStorePageFault, 0, 0, [6]uint64{})

	rt := NewUserRuntime(0x80400000, 0x60005000, 0, 0, 0, nil)
	rt.ctx.Stval = 0x60000000
	rt.ctx.Sepc = 0x80400020

	ev := rt.Resume()
	want := ExceptionEvent{Scause: scauseStorePageFault, Stval: 0x60000000, Sepc: 0x80400020}
	if diff := cmp.Diff(want, ev); diff != "" {
		t.Fatalf("ExceptionEvent mismatch (-want +got):\n%s", diff)
	}
	if rt.Terminated() {
		t.Fatal("an Exception must not itself terminate the Runtime")
	}
}

func TestNewUserRuntimeInitialResumeContext(t *testing.T) {
	rt := NewUserRuntime(0x80400000, 0x60005000, 0xdead, 0xfff, 0xffe, nil)

	if rt.ctx.Sepc != 0x80400000 {
		t.Errorf("initial Sepc = %#x, want 0x80400000", rt.ctx.Sepc)
	}
	if rt.ctx.X[RegSP] != 0x60005000 {
		t.Errorf("initial sp = %#x, want 0x60005000", rt.ctx.X[RegSP])
	}
	if rt.ctx.Sstatus&sstatusSPP != 0 {
		t.Error("initial sstatus must have SPP clear (selects U-mode on sret)")
	}
	if rt.ctx.Sstatus&sstatusSPIE == 0 {
		t.Error("initial sstatus must have SPIE set")
	}
	if rt.UserSatp() != 0xdead {
		t.Errorf("UserSatp() = %#x, want 0xdead", rt.UserSatp())
	}
}
