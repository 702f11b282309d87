package trampoline

// Module/function identifiers for the two PROCESS syscalls the Runtime
// interprets directly, so it can surface UserExited/UserPanic without a
// round trip through the kernel main loop. These match the fixed syscall ABI;
// calls carrying them never reach the syscall package's dispatcher.
const (
	ModuleProcess        = 0x114514
	FunctionProcessExit  = 0x1919810
	FunctionProcessPanic = 0x11451419
)

// UserMemory reads bytes out of the currently active user address space. It
// lets the Runtime decode PROCESS.PANIC's file/message buffers without
// depending on mm.PagedAddrSpace's generic type parameters; the concrete
// implementation (backed by mm.ReadUserBytes) is supplied by whoever
// constructs the Runtime.
type UserMemory interface {
	ReadBytes(va uint64, n int) ([]byte, error)
}

// UserMemoryFunc adapts a plain function to UserMemory, the same pattern as
// http.HandlerFunc.
type UserMemoryFunc func(va uint64, n int) ([]byte, error)

// ReadBytes calls f.
func (f UserMemoryFunc) ReadBytes(va uint64, n int) ([]byte, error) { return f(va, n) }

type state int

const (
	stateFresh state = iota
	stateRunning
	stateTerminated
)

// Runtime represents the kernel's resumption of a single user task as a
// reentrant state machine: each call to Resume runs the user until its next
// trap and returns a tagged Event describing it.
type Runtime struct {
	ctx ResumeContext
	mem UserMemory

	userSatp         uint64
	trampolineTextVA uint64
	trampolineDataVA uint64

	state state
}

// NewUserRuntime builds a Runtime for a user task whose entry point is at
// userEntryPA (physical, but executed through the user mapping that covers
// it) with an initial stack pointer of userStackVA. userSatp is the value to
// activate when control must be handed to this specific task (as opposed to
// whichever task is currently active); the trampoline VAs locate the shared
// code/data pages, identical in every address space. mem provides read
// access into the user address space for syscalls whose arguments are
// buffers, such as PROCESS.PANIC's file/message strings.
func NewUserRuntime(userEntryPA, userStackVA, userSatp, trampolineTextVA, trampolineDataVA uint64, mem UserMemory) *Runtime {
	return &Runtime{
		ctx:              newUserResumeContext(userEntryPA, userStackVA),
		mem:              mem,
		userSatp:         userSatp,
		trampolineTextVA: trampolineTextVA,
		trampolineDataVA: trampolineDataVA,
		state:            stateFresh,
	}
}

// Context returns the Runtime's current ResumeContext, primarily so boot
// code can place it into the shared trampoline-data frame.
func (rt *Runtime) Context() *ResumeContext { return &rt.ctx }

// UserSatp returns the satp value that activates this task's address space.
func (rt *Runtime) UserSatp() uint64 { return rt.userSatp }

// Terminated reports whether the Runtime has reached its terminal state.
func (rt *Runtime) Terminated() bool { return rt.state == stateTerminated }

// Resume transfers control to the trampoline's restore_context entry point,
// runs the user task until it traps back, and returns the event the trap
// represents. Once the Runtime is Terminated, every subsequent Resume call
// returns a sticky TerminatedEvent without touching the trampoline.
func (rt *Runtime) Resume() Event {
	if rt.state == stateTerminated {
		return TerminatedEvent{}
	}

	rt.state = stateRunning
	trampolineResumeFn(&rt.ctx, rt.trampolineTextVA, rt.userSatp)
	return rt.decodeTrap()
}

func (rt *Runtime) decodeTrap() Event {
	if rt.ctx.Scause != scauseEcallFromU {
		return ExceptionEvent{Scause: rt.ctx.Scause, Stval: rt.ctx.Stval, Sepc: rt.ctx.Sepc}
	}

	module := rt.ctx.X[RegA7]
	function := rt.ctx.X[RegA6]
	var args [6]uint64
	copy(args[:], rt.ctx.X[RegA0:RegA0+6])

	switch {
	case module == ModuleProcess && function == FunctionProcessExit:
		rt.state = stateTerminated
		return UserExitedEvent{Code: int32(args[0])}
	case module == ModuleProcess && function == FunctionProcessPanic:
		rt.state = stateTerminated
		return rt.decodeUserPanic(args)
	default:
		return SyscallEvent{Module: module, Function: function, Args: args, rt: rt}
	}
}

// decodeUserPanic unpacks PROCESS.PANIC's [line, col, file_ptr, file_len,
// msg_ptr, msg_len] argument layout, reading the file/message buffers out of
// user memory when their pointer is non-null.
func (rt *Runtime) decodeUserPanic(args [6]uint64) Event {
	ev := UserPanicEvent{Line: uint32(args[0]), Col: uint32(args[1])}

	if fbuf, flen := args[2], args[3]; fbuf != 0 {
		if b, err := rt.mem.ReadBytes(fbuf, int(flen)); err == nil {
			ev.File, ev.HasFile = string(b), true
		}
	}
	if mbuf, mlen := args[4], args[5]; mbuf != 0 {
		if b, err := rt.mem.ReadBytes(mbuf, int(mlen)); err == nil {
			ev.Msg, ev.HasMsg = string(b), true
		}
	}
	return ev
}
