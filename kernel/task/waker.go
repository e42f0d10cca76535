package task

import (
	"sync/atomic"
	"vertexos/kernel/kfmt"
	"vertexos/kernel/sync"
)

// Waker marks a parked task as ready to be polled again by re-enqueueing its
// id in the executor's ready queue. Wake never blocks or allocates and may be
// invoked from interrupt context.
type Waker struct {
	id    TaskID
	ready *sync.ArrayQueue[TaskID]
}

// TaskID returns the id of the task that this waker belongs to.
func (w *Waker) TaskID() TaskID {
	return w.id
}

// Wake schedules the task for another poll.
func (w *Waker) Wake() {
	if !w.ready.Push(w.id) {
		kfmt.Printf("[task] WARNING: ready queue full; dropping wake-up for task %d\n", uint64(w.id))
	}
}

// AtomicWaker is a single-slot holder for the waker of a task that waits on
// some event. Registering a waker replaces the previous one. It is safe to
// use concurrently from task and interrupt context.
type AtomicWaker struct {
	waker atomic.Pointer[Waker]
}

// Register stores w, replacing any previously registered waker.
func (a *AtomicWaker) Register(w *Waker) {
	a.waker.Store(w)
}

// Take removes and returns the registered waker or nil if none is registered.
func (a *AtomicWaker) Take() *Waker {
	return a.waker.Swap(nil)
}

// Wake takes the registered waker and invokes it. Calling Wake when no waker
// is registered has no effect, so repeated calls wake the task at most once
// per registration.
func (a *AtomicWaker) Wake() {
	if w := a.Take(); w != nil {
		w.Wake()
	}
}
