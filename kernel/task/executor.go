package task

import (
	"vertexos/kernel"
	"vertexos/kernel/cpu"
	"vertexos/kernel/sync"
)

// DefaultReadyCapacity is the number of task ids that can be queued for
// polling at the same time.
const DefaultReadyCapacity = 100

var (
	// The following functions are mocked by tests.
	disableInterruptsFn       = cpu.DisableInterrupts
	enableInterruptsFn        = cpu.EnableInterrupts
	enableInterruptsAndHaltFn = cpu.EnableInterruptsAndHalt

	// ErrReadyQueueFull is returned by Spawn when the ready queue cannot
	// accept the id of a new task.
	ErrReadyQueueFull = &kernel.Error{Module: "task", Message: "ready queue is full"}
)

// Executor runs tasks to completion on a single hardware thread. Tasks are
// never preempted by the executor; they run until they return from Poll.
//
// Spawn, RunReady and Run must be called from task context. The wakers handed
// to tasks may be invoked from anywhere, including interrupt handlers.
type Executor struct {
	ids    IDAllocator
	tasks  map[TaskID]*Task
	wakers map[TaskID]*Waker
	ready  *sync.ArrayQueue[TaskID]

	idleFn func(*Executor)
}

// NewExecutor returns an executor whose ready queue holds up to
// readyCapacity task ids. By default, an idle executor halts the CPU until
// the next interrupt arrives.
func NewExecutor(readyCapacity int) *Executor {
	return &Executor{
		tasks:  make(map[TaskID]*Task),
		wakers: make(map[TaskID]*Waker),
		ready:  sync.NewArrayQueue[TaskID](readyCapacity),
		idleFn: haltUntilInterrupt,
	}
}

// SetIdleFunc overrides the function that Run invokes when no task is ready.
// The function should return once HasReady may have become true.
func (e *Executor) SetIdleFunc(fn func(*Executor)) {
	e.idleFn = fn
}

// Spawn transfers ownership of f to the executor and schedules it for an
// initial poll.
func (e *Executor) Spawn(f Future) (TaskID, *kernel.Error) {
	id := e.ids.Next()
	if !e.ready.Push(id) {
		return 0, ErrReadyQueueFull
	}

	e.tasks[id] = &Task{id: id, future: f}
	return id, nil
}

// HasReady returns true if at least one task id is waiting to be polled.
func (e *Executor) HasReady() bool {
	return e.ready.Len() != 0
}

// TaskCount returns the number of tasks that have not completed yet.
func (e *Executor) TaskCount() int {
	return len(e.tasks)
}

// RunReady polls tasks until the ready queue is empty. Ids that no longer map
// to a live task (e.g. a wake-up that arrived after the task completed) are
// ignored. Completed tasks are removed together with their cached waker.
func (e *Executor) RunReady() {
	for {
		id, ok := e.ready.Pop()
		if !ok {
			return
		}

		t, live := e.tasks[id]
		if !live {
			continue
		}

		waker, cached := e.wakers[id]
		if !cached {
			waker = &Waker{id: id, ready: e.ready}
			e.wakers[id] = waker
		}

		if t.poll(waker) == Done {
			delete(e.tasks, id)
			delete(e.wakers, id)
		}
	}
}

// Run executes tasks for the lifetime of the kernel. Run never returns.
func (e *Executor) Run() {
	for {
		e.RunReady()
		e.idleFn(e)
	}
}

// haltUntilInterrupt halts the CPU if no task is ready. Interrupts are
// disabled while the ready queue is inspected so a wake-up that arrives
// between the check and the halt is not lost: the STI;HLT pair delivers it
// and resumes execution.
func haltUntilInterrupt(e *Executor) {
	disableInterruptsFn()
	if e.HasReady() {
		enableInterruptsFn()
		return
	}
	enableInterruptsAndHaltFn()
}
