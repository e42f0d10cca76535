package hal

import (
	"vertexos/device/tty"
	"vertexos/device/video/console"
	"vertexos/kernel/sync"
)

// Console serializes access to a terminal between task code and interrupt
// handlers. It is used as the kfmt output sink and as the echo device of the
// shell line editor.
type Console struct {
	lock sync.Locker
	term tty.Device
}

// NewConsole wraps term. In the kernel, lock should be a *sync.IRQSpinlock
// so that an interrupt handler that logs cannot deadlock against the task it
// interrupted.
func NewConsole(term tty.Device, lock sync.Locker) *Console {
	return &Console{lock: lock, term: term}
}

// Write implements io.Writer.
func (c *Console) Write(p []byte) (int, error) {
	c.lock.Acquire()
	n, err := c.term.Write(p)
	c.lock.Release()
	return n, err
}

// Column returns the 0-based column of the output position.
func (c *Console) Column() uint32 {
	c.lock.Acquire()
	x, _ := c.term.CursorPosition()
	c.lock.Release()
	return x - 1
}

// SetColumn moves the output position to the 0-based column col of the
// current line.
func (c *Console) SetColumn(col uint32) {
	c.lock.Acquire()
	_, y := c.term.CursorPosition()
	c.term.SetCursorPosition(col+1, y)
	c.lock.Release()
}

// EraseLast removes the character preceding the output position.
func (c *Console) EraseLast() {
	c.lock.Acquire()
	_ = c.term.WriteByte('\b')
	c.lock.Release()
}

// Clear blanks the terminal.
func (c *Console) Clear() {
	c.lock.Acquire()
	c.term.Clear()
	c.lock.Release()
}

// ShowFaultScreen repaints the terminal white on blue and prints the fault
// title. It is invoked by kfmt.Panic with interrupts disabled; the lock is
// forcibly released first since the faulting code may have been holding it.
func (c *Console) ShowFaultScreen() {
	if fr, ok := c.lock.(interface{ ForceRelease() }); ok {
		fr.ForceRelease()
	}

	c.lock.Acquire()
	c.term.Recolor(console.White, console.Blue)
	_, _ = c.term.Write([]byte("\n*** VertexDOS has stopped ***\n"))
	c.lock.Release()
}
