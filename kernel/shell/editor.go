// Package shell implements the interactive line editor that turns decoded
// key presses into command lines.
package shell

import (
	"io"
	"strings"
	"vertexos/device/keyboard"
)

const (
	// Prompt is written before each input line.
	Prompt = "> "

	// MaxLineLen is the default capacity of the line buffer.
	MaxLineLen = 256
)

// Config controls the appearance and capacity of a LineEditor.
type Config struct {
	// Prompt is written after each dispatched line.
	Prompt string

	// MaxLineLen is the maximum number of characters that can be typed on
	// a single line. Characters beyond this limit are discarded.
	MaxLineLen int
}

// DefaultConfig returns the configuration used by the kernel shell.
func DefaultConfig() Config {
	return Config{Prompt: Prompt, MaxLineLen: MaxLineLen}
}

// Console is the output device used by the line editor.
type Console interface {
	io.Writer

	// Column returns the column where the next character will be written.
	Column() uint32

	// SetColumn moves the output position within the current line.
	SetColumn(col uint32)

	// EraseLast removes the character preceding the output position and
	// moves the output position back by one column.
	EraseLast()
}

// Dispatcher executes complete input lines.
type Dispatcher interface {
	Dispatch(w io.Writer, line string)
}

// LineEditor accumulates printable characters into a fixed-capacity buffer
// and hands the buffer to a Dispatcher when a newline is received.
type LineEditor struct {
	cons       Console
	dispatcher Dispatcher
	prompt     string

	buf []byte
	pos int

	echo [1]byte
}

// NewLineEditor creates a line editor that echoes to cons and forwards
// completed lines to d. Missing config fields are filled from DefaultConfig.
func NewLineEditor(cfg Config, cons Console, d Dispatcher) *LineEditor {
	if cfg.Prompt == "" {
		cfg.Prompt = Prompt
	}
	if cfg.MaxLineLen <= 0 {
		cfg.MaxLineLen = MaxLineLen
	}

	return &LineEditor{
		cons:       cons,
		dispatcher: d,
		prompt:     cfg.Prompt,
		buf:        make([]byte, cfg.MaxLineLen),
	}
}

// ShowPrompt writes the prompt, starting a new line first if the output
// position is not at the beginning of a line. The console column is then set
// to the end of the prompt so echoed input lines up after it.
func (e *LineEditor) ShowPrompt() {
	if e.cons.Column() != 0 {
		e.writeByte('\n')
	}
	_, _ = io.WriteString(e.cons, e.prompt)

	lastLine := e.prompt[strings.LastIndexByte(e.prompt, '\n')+1:]
	e.cons.SetColumn(uint32(len(lastLine)))
}

// Line returns the characters typed since the last dispatched line.
func (e *LineEditor) Line() string {
	return string(e.buf[:e.pos])
}

// HandleKey applies a single key press to the line buffer. Raw keys only
// echo their name; they never reach the line buffer.
func (e *LineEditor) HandleKey(k keyboard.Key) {
	if k.IsRaw() {
		_, _ = io.WriteString(e.cons, k.Code.String())
		return
	}

	switch ch := k.Char; {
	case ch == '\n':
		e.writeByte('\n')
		line := string(e.buf[:e.pos])
		e.pos = 0
		e.dispatcher.Dispatch(e.cons, line)
		e.ShowPrompt()
	case ch == '\b':
		if e.pos == 0 {
			return
		}
		e.pos--
		e.cons.EraseLast()
	case ch >= ' ' && ch <= '~':
		if e.pos == len(e.buf) {
			return
		}
		e.buf[e.pos] = ch
		e.pos++
		e.writeByte(ch)
	}
}

func (e *LineEditor) writeByte(b byte) {
	e.echo[0] = b
	_, _ = e.cons.Write(e.echo[:])
}
