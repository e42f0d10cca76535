package task

import (
	"testing"
	"vertexos/kernel/cpu"
	"vertexos/kernel/sync"
)

func TestIDAllocator(t *testing.T) {
	var a IDAllocator

	prev := a.Next()
	for i := 0; i < 10; i++ {
		next := a.Next()
		if next != prev+1 {
			t.Fatalf("expected id %d after %d; got %d", prev+1, prev, next)
		}
		prev = next
	}
}

func TestAtomicWaker(t *testing.T) {
	var (
		ready = sync.NewArrayQueue[TaskID](4)
		w1    = &Waker{id: 1, ready: ready}
		w2    = &Waker{id: 2, ready: ready}
		aw    AtomicWaker
	)

	// waking an empty slot is a no-op
	aw.Wake()
	if ready.Len() != 0 {
		t.Fatal("expected Wake on an empty AtomicWaker to be a no-op")
	}

	// registering a second waker replaces the first one
	aw.Register(w1)
	aw.Register(w2)
	aw.Wake()
	aw.Wake()

	if exp, got := 1, ready.Len(); got != exp {
		t.Fatalf("expected %d queued wake-ups; got %d", exp, got)
	}

	if id, _ := ready.Pop(); id != 2 {
		t.Fatalf("expected the most recently registered waker (task 2) to be woken; got task %d", id)
	}

	aw.Register(w1)
	if got := aw.Take(); got != w1 {
		t.Fatal("expected Take to return the registered waker")
	}
	if got := aw.Take(); got != nil {
		t.Fatal("expected Take on an empty AtomicWaker to return nil")
	}
}

func TestWakerQueueFull(t *testing.T) {
	ready := sync.NewArrayQueue[TaskID](1)
	w := &Waker{id: 7, ready: ready}

	w.Wake()
	w.Wake() // dropped with a warning

	if exp, got := 1, ready.Len(); got != exp {
		t.Fatalf("expected %d queued wake-ups; got %d", exp, got)
	}

	if got := w.TaskID(); got != 7 {
		t.Fatalf("expected waker task id 7; got %d", got)
	}
}

// countdownFuture completes after remaining polls, waking itself after each
// pending poll.
type countdownFuture struct {
	remaining int
	polls     int
	pollsDone int
}

func (f *countdownFuture) Poll(w *Waker) Status {
	f.polls++
	if f.remaining == 0 {
		f.pollsDone++
		return Done
	}
	f.remaining--
	w.Wake()
	return Pending
}

func TestExecutorRunsTasksToCompletion(t *testing.T) {
	const numTasks = 10

	e := NewExecutor(DefaultReadyCapacity)
	futures := make([]*countdownFuture, numTasks)
	for i := range futures {
		futures[i] = &countdownFuture{remaining: i}
		if _, err := e.Spawn(futures[i]); err != nil {
			t.Fatal(err)
		}
	}

	if exp, got := numTasks, e.TaskCount(); got != exp {
		t.Fatalf("expected %d live tasks; got %d", exp, got)
	}

	e.RunReady()

	if got := e.TaskCount(); got != 0 {
		t.Fatalf("expected all tasks to be removed after completion; %d remain", got)
	}

	if got := len(e.wakers); got != 0 {
		t.Fatalf("expected all cached wakers to be removed; %d remain", got)
	}

	for i, f := range futures {
		if f.pollsDone != 1 {
			t.Errorf("task %d: expected Done to be returned exactly once; got %d", i, f.pollsDone)
		}
		if exp := i + 1; f.polls != exp {
			t.Errorf("task %d: expected %d polls; got %d", i, exp, f.polls)
		}
	}
}

func TestExecutorStaleWake(t *testing.T) {
	e := NewExecutor(DefaultReadyCapacity)

	var (
		polls int
		waker *Waker
	)
	id, _ := e.Spawn(FutureFunc(func(w *Waker) Status {
		polls++
		waker = w
		return Done
	}))

	e.RunReady()

	// wake the completed task; the executor must ignore the stale id
	waker.Wake()
	if !e.HasReady() {
		t.Fatal("expected the stale wake-up to be queued")
	}

	e.RunReady()

	if polls != 1 {
		t.Fatalf("expected completed task %d to be polled once; got %d", id, polls)
	}

	if e.HasReady() {
		t.Fatal("expected the ready queue to be drained")
	}
}

func TestExecutorParksPendingTasks(t *testing.T) {
	e := NewExecutor(DefaultReadyCapacity)

	var (
		polls   int
		aw      AtomicWaker
		release bool
	)
	id, _ := e.Spawn(FutureFunc(func(w *Waker) Status {
		polls++
		if release {
			return Done
		}
		aw.Register(w)
		return Pending
	}))

	e.RunReady()
	e.RunReady()

	if polls != 1 {
		t.Fatalf("expected parked task to be polled once; got %d", polls)
	}

	if e.TaskCount() != 1 {
		t.Fatalf("expected parked task %d to remain in the task map", id)
	}

	// The same cached waker must be handed out on every poll
	first := aw.Take()
	aw.Register(first)

	release = true
	aw.Wake()
	e.RunReady()

	if polls != 2 || e.TaskCount() != 0 {
		t.Fatalf("expected the woken task to be polled to completion; polls: %d, live tasks: %d", polls, e.TaskCount())
	}
}

func TestExecutorSpawnQueueFull(t *testing.T) {
	e := NewExecutor(1)

	if _, err := e.Spawn(FutureFunc(func(*Waker) Status { return Done })); err != nil {
		t.Fatal(err)
	}

	if _, err := e.Spawn(FutureFunc(func(*Waker) Status { return Done })); err != ErrReadyQueueFull {
		t.Fatalf("expected ErrReadyQueueFull; got %v", err)
	}

	if exp, got := 1, e.TaskCount(); got != exp {
		t.Fatalf("expected rejected task not to be tracked; live tasks: %d", got)
	}
}

func TestExecutorRun(t *testing.T) {
	e := NewExecutor(DefaultReadyCapacity)

	var (
		polls     int
		idleCalls int
		aw        AtomicWaker
	)
	e.Spawn(FutureFunc(func(w *Waker) Status {
		polls++
		aw.Register(w)
		return Pending
	}))

	type stopRun struct{}
	e.SetIdleFunc(func(e *Executor) {
		idleCalls++
		if idleCalls == 3 {
			panic(stopRun{})
		}

		// simulate an interrupt handler waking the task
		aw.Wake()
	})

	func() {
		defer func() {
			if err := recover(); err != (stopRun{}) {
				t.Fatalf("unexpected panic: %v", err)
			}
		}()
		e.Run()
	}()

	if exp := 3; polls != exp {
		t.Fatalf("expected %d polls; got %d", exp, polls)
	}
}

func TestHaltUntilInterrupt(t *testing.T) {
	defer func() {
		disableInterruptsFn = cpu.DisableInterrupts
		enableInterruptsFn = cpu.EnableInterrupts
		enableInterruptsAndHaltFn = cpu.EnableInterruptsAndHalt
	}()

	var disabled, enabled, halted int
	disableInterruptsFn = func() { disabled++ }
	enableInterruptsFn = func() { enabled++ }
	enableInterruptsAndHaltFn = func() { halted++ }

	e := NewExecutor(DefaultReadyCapacity)

	t.Run("no ready tasks", func(t *testing.T) {
		disabled, enabled, halted = 0, 0, 0
		haltUntilInterrupt(e)

		if disabled != 1 || halted != 1 || enabled != 0 {
			t.Fatalf("expected interrupts to be disabled and the CPU halted; disabled: %d, halted: %d, enabled: %d", disabled, halted, enabled)
		}
	})

	t.Run("ready tasks", func(t *testing.T) {
		disabled, enabled, halted = 0, 0, 0
		e.Spawn(FutureFunc(func(*Waker) Status { return Done }))
		haltUntilInterrupt(e)

		if disabled != 1 || halted != 0 || enabled != 1 {
			t.Fatalf("expected the CPU not to be halted; disabled: %d, halted: %d, enabled: %d", disabled, halted, enabled)
		}
	})
}
