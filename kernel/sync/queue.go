package sync

import "sync/atomic"

type queueCell[T any] struct {
	seq atomic.Uint64
	val T
}

// ArrayQueue is a bounded, lock-free FIFO queue that supports any number of
// concurrent producers and consumers. Each slot carries a sequence number
// that tells producers and consumers whether it is free or populated so
// neither side ever waits for the other: Push fails when the queue is full
// and Pop fails when it is empty.
//
// For queue position pos the slot sequence is 2*pos while the slot is free
// and 2*pos+1 once it holds the item for pos. Doubling keeps the two states
// distinct from the free state of the next lap even when capacity is 1.
//
// All storage is allocated by NewArrayQueue; Push and Pop never allocate
// which makes Push safe to call from an interrupt handler.
type ArrayQueue[T any] struct {
	capacity uint64
	cells    []queueCell[T]

	head atomic.Uint64
	tail atomic.Uint64
}

// NewArrayQueue creates a queue that holds up to capacity items. The capacity
// does not need to be a power of 2.
func NewArrayQueue[T any](capacity int) *ArrayQueue[T] {
	if capacity < 1 {
		capacity = 1
	}

	q := &ArrayQueue[T]{
		capacity: uint64(capacity),
		cells:    make([]queueCell[T], capacity),
	}

	for i := range q.cells {
		q.cells[i].seq.Store(2 * uint64(i))
	}

	return q
}

// Cap returns the queue capacity.
func (q *ArrayQueue[T]) Cap() int {
	return int(q.capacity)
}

// Len returns the number of queued items. The value is a snapshot and may be
// stale by the time the caller inspects it.
func (q *ArrayQueue[T]) Len() int {
	head, tail := q.head.Load(), q.tail.Load()
	if tail < head {
		return 0
	}
	return int(tail - head)
}

// Push appends v to the queue. It returns false without modifying the queue
// contents if the queue is full.
func (q *ArrayQueue[T]) Push(v T) bool {
	for {
		pos := q.tail.Load()
		cell := &q.cells[pos%q.capacity]
		seq := cell.seq.Load()

		switch {
		case seq == 2*pos:
			if q.tail.CompareAndSwap(pos, pos+1) {
				cell.val = v
				cell.seq.Store(2*pos + 1)
				return true
			}
		case seq < 2*pos:
			// The slot still holds the item pushed one lap ago.
			return false
		}
	}
}

// Pop removes the oldest item from the queue. The second return value is
// false if the queue is empty.
func (q *ArrayQueue[T]) Pop() (T, bool) {
	var zero T
	for {
		pos := q.head.Load()
		cell := &q.cells[pos%q.capacity]
		seq := cell.seq.Load()

		switch {
		case seq == 2*pos+1:
			if q.head.CompareAndSwap(pos, pos+1) {
				v := cell.val
				cell.val = zero
				cell.seq.Store(2 * (pos + q.capacity))
				return v, true
			}
		case seq < 2*pos+1:
			return zero, false
		}
	}
}
