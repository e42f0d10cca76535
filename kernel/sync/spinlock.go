// Package sync provides synchronization primitives that are safe to use on a
// single hardware thread shared between task code and interrupt handlers.
package sync

import "sync/atomic"

// attemptsBeforeYielding bounds the number of busy-wait iterations performed
// by Acquire before yieldFn is invoked.
const attemptsBeforeYielding = 64

var (
	// yieldFn is invoked by a spinning Acquire once attemptsBeforeYielding
	// iterations have elapsed. The kernel has no scheduler-aware yield so
	// it is nil by default; tests substitute runtime.Gosched.
	yieldFn func()
)

// Locker is implemented by the lock types in this package.
type Locker interface {
	Acquire()
	Release()
}

// Spinlock implements a lock where each task trying to acquire it busy-waits
// till the lock becomes available.
type Spinlock struct {
	state uint32
}

// Acquire blocks until the lock can be acquired by the currently active task.
// Any attempt to re-acquire a lock already held by the current task will cause
// a deadlock.
func (l *Spinlock) Acquire() {
	for attempts := 0; !atomic.CompareAndSwapUint32(&l.state, 0, 1); attempts++ {
		if attempts >= attemptsBeforeYielding && yieldFn != nil {
			yieldFn()
			attempts = 0
		}
	}
}

// TryToAcquire attempts to acquire the lock and returns true if the lock could
// be acquired or false otherwise.
func (l *Spinlock) TryToAcquire() bool {
	return atomic.SwapUint32(&l.state, 1) == 0
}

// Release relinquishes a held lock allowing other tasks to acquire it. Calling
// Release while the lock is free has no effect.
func (l *Spinlock) Release() {
	atomic.StoreUint32(&l.state, 0)
}
