// Package coro implements the stackless-coroutine discipline the
// connection engine resumes one fixed-size state struct per connection
// through, instead of handing each connection its own goroutine stack.
package coro

// Signal is the resumption/completion code a Task returns. All values are
// negative, matching the enum layout a resumable step switches on.
type Signal int

const (
	// SysError means an unhandled syscall error occurred; errno (wrapped as
	// a Go error elsewhere) should be inspected. A task must not be resumed
	// after returning SysError without a Reset.
	SysError Signal = -1
	// Pending means the task is waiting on an I/O or readiness event and
	// should be resumed later from the same Step.
	Pending Signal = -31
	// Done means the task completed normally.
	Done Signal = -30
	// IOClosed means the underlying I/O device is no longer usable for any
	// operation. Returned only by the primitive async I/O helpers.
	IOClosed Signal = -29
	// IOEOF means the underlying I/O device has no more data to read, but
	// may still be writable. Returned only by the primitive async I/O
	// helpers.
	IOEOF Signal = -28
)

func (s Signal) String() string {
	switch s {
	case SysError:
		return "sys-error"
	case Pending:
		return "pending"
	case Done:
		return "done"
	case IOClosed:
		return "io-closed"
	case IOEOF:
		return "io-eof"
	default:
		return "unknown"
	}
}

// Context is the resumable state of one coroutine: the step it last
// suspended at and a pointer to its caller-owned scratch storage, carved
// out of the server's pre-allocated per-slot slab rather than allocated
// fresh on every resume.
type Context struct {
	Step int
	Slab any
}

// Reset rewinds ctx to its initial step, as if it had never run. The
// caller is responsible for zeroing/reinitializing Slab; Reset only
// resets the resumption point, mirroring CORO_SETUP_TASK's single
// responsibility of clearing step.
func (c *Context) Reset() { c.Step = 0 }

// Task advances one connection's coroutine by one step, given its Context
// and an opaque handle to the connection it's driving (an *engine.Slot in
// this module, left generic here to avoid an import cycle between coro and
// engine).
type Task func(ctx *Context, conn any) Signal
