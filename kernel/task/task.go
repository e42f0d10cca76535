// Package task implements a cooperative, single-threaded task executor. Tasks
// are Futures that are polled until they report completion; a task that
// cannot make progress returns Pending and is only polled again after its
// Waker has been invoked.
package task

import "sync/atomic"

// TaskID uniquely identifies a task for the lifetime of the kernel.
type TaskID uint64

// IDAllocator generates monotonically increasing task IDs. It is safe for
// concurrent use.
type IDAllocator struct {
	next atomic.Uint64
}

// Next returns a TaskID that has never been returned before by this
// allocator.
func (a *IDAllocator) Next() TaskID {
	return TaskID(a.next.Add(1) - 1)
}

// Status describes the outcome of a call to Future.Poll.
type Status uint8

const (
	// Pending indicates that the future cannot make further progress
	// until its waker is invoked.
	Pending Status = iota

	// Done indicates that the future has completed.
	Done
)

// Future is a suspended computation driven by an Executor. Poll attempts to
// make progress and returns Pending or Done. A Future that returns Pending
// must arrange for w.Wake to be called once it can make progress again;
// otherwise it will never be polled again.
type Future interface {
	Poll(w *Waker) Status
}

// FutureFunc adapts a function to the Future interface.
type FutureFunc func(w *Waker) Status

// Poll implements Future.
func (f FutureFunc) Poll(w *Waker) Status {
	return f(w)
}

// Task pairs a Future with the id under which an Executor tracks it.
type Task struct {
	id     TaskID
	future Future
}

// ID returns the task id.
func (t *Task) ID() TaskID {
	return t.id
}

func (t *Task) poll(w *Waker) Status {
	return t.future.Poll(w)
}
