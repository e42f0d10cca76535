package sync

import "vertexos/kernel/cpu"

var (
	// The following functions are mocked by tests.
	interruptsEnabledFn = cpu.InterruptsEnabled
	disableInterruptsFn = cpu.DisableInterrupts
	enableInterruptsFn  = cpu.EnableInterrupts
)

// IRQSpinlock is a Spinlock that keeps hardware interrupts masked while it is
// held. An interrupt handler on the same CPU can therefore never observe the
// lock in the held state and spin on it forever.
//
// Release restores the interrupt flag that was active when Acquire was
// called, so IRQSpinlocks may be nested and used from code that already runs
// with interrupts disabled.
type IRQSpinlock struct {
	lock           Spinlock
	restoreIntFlag bool
}

// Acquire disables interrupts and then acquires the lock.
func (l *IRQSpinlock) Acquire() {
	wasEnabled := interruptsEnabledFn()
	disableInterruptsFn()
	l.lock.Acquire()
	l.restoreIntFlag = wasEnabled
}

// Release releases the lock and re-enables interrupts if they were enabled
// when the lock was acquired.
func (l *IRQSpinlock) Release() {
	restore := l.restoreIntFlag
	l.restoreIntFlag = false
	l.lock.Release()
	if restore {
		enableInterruptsFn()
	}
}

// ForceRelease releases the lock without touching the interrupt flag. It is
// used by the panic path which may run while the faulting context still holds
// the lock.
func (l *IRQSpinlock) ForceRelease() {
	l.restoreIntFlag = false
	l.lock.Release()
}
