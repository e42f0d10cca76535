package kfmt

import "io"

// ringBufferSize is large enough to hold the contents of an 80x25 text
// console. It must always be a power of 2.
const ringBufferSize = 2048

// ringBuffer captures Printf output until an output sink is attached. Once
// full, new writes overwrite the oldest data.
type ringBuffer struct {
	buffer         [ringBufferSize]byte
	rIndex, wIndex int
}

// Write writes len(p) bytes from p to the ringBuffer.
func (rb *ringBuffer) Write(p []byte) (int, error) {
	for _, b := range p {
		rb.buffer[rb.wIndex] = b
		rb.wIndex = (rb.wIndex + 1) & (ringBufferSize - 1)
		if rb.rIndex == rb.wIndex {
			rb.rIndex = (rb.rIndex + 1) & (ringBufferSize - 1)
		}
	}

	return len(p), nil
}

// Read reads up to len(p) bytes into p. Data that wraps around the end of the
// buffer is returned by two consecutive calls. Read returns io.EOF when the
// buffer is empty.
func (rb *ringBuffer) Read(p []byte) (int, error) {
	if rb.rIndex == rb.wIndex {
		return 0, io.EOF
	}

	segEnd := rb.wIndex
	if rb.rIndex > rb.wIndex {
		segEnd = ringBufferSize
	}

	n := copy(p, rb.buffer[rb.rIndex:segEnd])
	rb.rIndex = (rb.rIndex + n) & (ringBufferSize - 1)
	return n, nil
}
