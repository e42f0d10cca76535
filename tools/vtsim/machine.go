package main

import (
	gosync "sync"
	"vertexos/kernel"
	"vertexos/kernel/input"
	"vertexos/kernel/kfmt"
	"vertexos/kernel/kmain"
	"vertexos/kernel/shell"
)

// mutexLocker implements the kernel Locker interface for hosted builds where
// interrupts cannot be masked.
type mutexLocker struct {
	mu gosync.Mutex
}

func (l *mutexLocker) Acquire() { l.mu.Lock() }
func (l *mutexLocker) Release() { l.mu.Unlock() }

// ForceRelease unlocks l whether or not it is held.
func (l *mutexLocker) ForceRelease() {
	l.mu.TryLock()
	l.mu.Unlock()
}

// machine wires the kernel objects the way kmain does. Host goroutines take
// the place of the keyboard interrupt: they push scancodes into the stream
// and kick the executor loop.
type machine struct {
	sys    *kmain.System
	stream *input.Stream
	cons   shell.Console
	kick   chan struct{}
}

func newMachine(cfg Config, cons shell.Console) (*machine, error) {
	stream := input.NewStream(cfg.QueueCapacity)

	sys, err := kmain.NewSystem(kmain.Config{
		Shell:         shell.Config{Prompt: cfg.Prompt, MaxLineLen: cfg.LineLength},
		ReadyCapacity: cfg.ReadyCapacity,
	}, cons, stream)
	if err != nil {
		return nil, err
	}

	return &machine{
		sys:    sys,
		stream: stream,
		cons:   cons,
		kick:   make(chan struct{}, 1),
	}, nil
}

// feed pushes codes into the input stream and wakes the executor loop. It is
// safe to call from any goroutine.
func (m *machine) feed(codes []byte) {
	for _, b := range codes {
		m.stream.Push(b)
	}

	select {
	case m.kick <- struct{}{}:
	default:
	}
}

// step runs the tasks that are ready. A panic raised by a command handler is
// recovered and returned.
func (m *machine) step() (fault interface{}) {
	defer func() {
		fault = recover()
	}()

	m.sys.Executor.RunReady()
	return nil
}

var errUnknownFault = &kernel.Error{Module: "rt", Message: "unknown cause"}

// reportFault prints the panic banner for fault the way kfmt.Panic does on
// real hardware. Consoles that support it show the fault screen first.
func (m *machine) reportFault(fault interface{}) {
	err := errUnknownFault
	switch t := fault.(type) {
	case *kernel.Error:
		err = t
	case string:
		err = &kernel.Error{Module: "rt", Message: t}
	case error:
		err = &kernel.Error{Module: "rt", Message: t.Error()}
	}

	if screen, ok := m.cons.(kfmt.FaultScreen); ok {
		screen.ShowFaultScreen()
	}

	kfmt.Fprintf(m.cons, "\n-----------------------------------\n")
	kfmt.Fprintf(m.cons, "[%s] unrecoverable error: %s\n", err.Module, err.Message)
	kfmt.Fprintf(m.cons, "*** kernel panic: system halted ***")
	kfmt.Fprintf(m.cons, "\n-----------------------------------\n")
}
