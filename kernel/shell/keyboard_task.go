package shell

import (
	"vertexos/device/keyboard"
	"vertexos/kernel/task"
)

// ByteSource yields scancode bytes to a task. PollNext returns false after
// arranging for w to be woken once a byte becomes available.
type ByteSource interface {
	PollNext(w *task.Waker) (byte, bool)
}

// KeyboardTask is a task.Future that decodes scancodes from a ByteSource and
// feeds the resulting keys to a LineEditor. It never completes.
type KeyboardTask struct {
	src     ByteSource
	decoder *keyboard.Decoder
	editor  *LineEditor
}

// NewKeyboardTask creates a keyboard task that reads scancodes from src.
func NewKeyboardTask(src ByteSource, editor *LineEditor) *KeyboardTask {
	return &KeyboardTask{
		src:     src,
		decoder: keyboard.NewDecoder(),
		editor:  editor,
	}
}

// Poll implements task.Future. It processes every buffered scancode and then
// suspends until more input arrives.
func (t *KeyboardTask) Poll(w *task.Waker) task.Status {
	for {
		b, ok := t.src.PollNext(w)
		if !ok {
			return task.Pending
		}

		if key, ok := t.decoder.AddByte(b); ok {
			t.editor.HandleKey(key)
		}
	}
}
