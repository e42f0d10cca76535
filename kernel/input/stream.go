// Package input hands bytes received by interrupt handlers over to tasks.
package input

import (
	"sync/atomic"
	"vertexos/kernel/kfmt"
	"vertexos/kernel/sync"
	"vertexos/kernel/task"
)

// DefaultCapacity is the number of scancodes that can be buffered while the
// consuming task is not running.
const DefaultCapacity = 100

var (
	// registerWakerFn is mocked by tests to deliver input while the
	// consumer is between its two queue checks.
	registerWakerFn = func(a *task.AtomicWaker, w *task.Waker) { a.Register(w) }
)

// Stream is a bounded byte channel with a single producer running in
// interrupt context and a single consuming task. The producer never blocks
// or allocates; the consumer parks itself until the producer wakes it.
type Stream struct {
	queue   *sync.ArrayQueue[byte]
	waker   task.AtomicWaker
	dropped atomic.Uint64
}

// NewStream returns a stream that buffers up to capacity bytes. All storage
// is allocated here so Push can run before and without the Go allocator.
func NewStream(capacity int) *Stream {
	return &Stream{
		queue: sync.NewArrayQueue[byte](capacity),
	}
}

// Push enqueues b and wakes the consumer. If the stream is full, b is
// dropped, a warning is logged and the existing contents are left intact.
// Push must only be called from interrupt context.
func (s *Stream) Push(b byte) {
	if !s.queue.Push(b) {
		s.dropped.Add(1)
		kfmt.Printf("[input] WARNING: scancode queue full; dropping keyboard input\n")
		return
	}

	s.waker.Wake()
}

// PollNext returns the next byte in arrival order. If no byte is available,
// it registers w to be woken by the next Push and returns false; the caller
// must then suspend.
func (s *Stream) PollNext(w *task.Waker) (byte, bool) {
	if b, ok := s.queue.Pop(); ok {
		return b, true
	}

	registerWakerFn(&s.waker, w)

	// A byte pushed after the first Pop but before Register would have
	// found no waker to wake; check again before suspending.
	if b, ok := s.queue.Pop(); ok {
		s.waker.Take()
		return b, true
	}

	return 0, false
}

// Len returns the number of buffered bytes.
func (s *Stream) Len() int {
	return s.queue.Len()
}

// Dropped returns the number of bytes that were discarded because the stream
// was full.
func (s *Stream) Dropped() uint64 {
	return s.dropped.Load()
}
