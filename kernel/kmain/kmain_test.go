package kmain

import (
	"bytes"
	"testing"
	"vertexos/device/keyboard"
	"vertexos/kernel/input"
	"vertexos/kernel/shell"
)

type mockConsole struct {
	buf bytes.Buffer
	col uint32
}

func (c *mockConsole) Write(p []byte) (int, error) {
	for _, b := range p {
		if b == '\n' {
			c.col = 0
		} else {
			c.col++
		}
	}
	return c.buf.Write(p)
}

func (c *mockConsole) Column() uint32       { return c.col }
func (c *mockConsole) SetColumn(col uint32) { c.col = col }

func (c *mockConsole) EraseLast() {
	if c.col > 0 {
		c.col--
	}
	if n := c.buf.Len(); n > 0 {
		c.buf.Truncate(n - 1)
	}
}

func pushLine(t *testing.T, stream *input.Stream, line string) {
	var codes []byte
	for i := 0; i < len(line); i++ {
		var ok bool
		if codes, ok = keyboard.AppendScancodes(codes, line[i]); !ok {
			t.Fatalf("unable to encode %q", line[i])
		}
	}
	for _, b := range codes {
		stream.Push(b)
	}
}

func TestSystemShell(t *testing.T) {
	cons := &mockConsole{}
	stream := input.NewStream(input.DefaultCapacity)

	sys, err := NewSystem(DefaultConfig(), cons, stream)
	if err != nil {
		t.Fatal(err)
	}

	if got := sys.Executor.TaskCount(); got != 1 {
		t.Fatalf("expected the keyboard task to be spawned; task count is %d", got)
	}

	sys.Greet()
	if exp, got := Banner+"> ", cons.buf.String(); got != exp {
		t.Fatalf("expected greeting %q; got %q", exp, got)
	}
	sys.Executor.RunReady()

	specs := []struct {
		line string
		exp  string
	}{
		{"echo hello world\n", "echo hello world\nhello world\n> "},
		{"test equal_test\n", "test equal_test\nTest equal_test [ok]\n> "},
		{"test missing\n", "test missing\nTest missing not found\n> "},
		{"help\n", "help\ncommands: assert_eq bsod echo help test\ntests: equal_test\n> "},
		{"assert_eq 4\n", "assert_eq 4\nassert_eq takes 2 arguments but 1 arguments were supplied\n> "},
		{"assert_eq 3 3\n", "assert_eq 3 3\n> "},
		{"reboot\n", "reboot\nreboot not found\n> "},
	}

	for specIndex, spec := range specs {
		cons.buf.Reset()
		pushLine(t, stream, spec.line)
		sys.Executor.RunReady()

		if got := cons.buf.String(); got != spec.exp {
			t.Errorf("[spec %d] expected output %q; got %q", specIndex, spec.exp, got)
		}
	}
}

func TestBuiltinPanics(t *testing.T) {
	specs := []struct {
		line     string
		expPanic interface{}
	}{
		{"bsod", errBlueScreen},
		{"assert_eq 1 2", "assertion left == right failed\nleft: 1\nright: 2"},
	}

	for specIndex, spec := range specs {
		cons := &mockConsole{}
		sys, err := NewSystem(DefaultConfig(), cons, input.NewStream(input.DefaultCapacity))
		if err != nil {
			t.Fatal(err)
		}

		func() {
			defer func() {
				if got := recover(); got != spec.expPanic {
					t.Errorf("[spec %d] expected panic %v; got %v", specIndex, spec.expPanic, got)
				}
			}()
			sys.Commands.Dispatch(cons, spec.line)
		}()
	}
}

func TestAssertEqualParseError(t *testing.T) {
	cons := &mockConsole{}
	sys, err := NewSystem(DefaultConfig(), cons, input.NewStream(input.DefaultCapacity))
	if err != nil {
		t.Fatal(err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected assert_eq with a non-numeric argument to panic")
		}
	}()
	sys.Commands.Dispatch(cons, "assert_eq 1 x")
}

func TestNewSystemDefaultsCapacity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReadyCapacity = 0

	cons := &mockConsole{}
	sys, err := NewSystem(cfg, cons, input.NewStream(input.DefaultCapacity))
	if err != nil {
		t.Fatal(err)
	}

	if exp, got := 1, sys.Executor.TaskCount(); got != exp {
		t.Fatalf("expected the keyboard task to be spawned; task count %d", got)
	}

	sys.Greet()
	if exp, got := uint32(len(shell.Prompt)), cons.Column(); got != exp {
		t.Fatalf("expected the console column to follow the prompt; got %d", got)
	}
}
