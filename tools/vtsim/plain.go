package main

import (
	"bufio"
	"errors"
	"io"
)

// lineConsole is a shell.Console that writes to a byte stream such as
// stdout. Erasing relies on the receiving terminal honoring backspace.
type lineConsole struct {
	w   io.Writer
	col uint32
}

func (c *lineConsole) Write(p []byte) (int, error) {
	for _, b := range p {
		if b == '\n' {
			c.col = 0
		} else {
			c.col++
		}
	}
	return c.w.Write(p)
}

func (c *lineConsole) Column() uint32       { return c.col }
func (c *lineConsole) SetColumn(col uint32) { c.col = col }

func (c *lineConsole) EraseLast() {
	if c.col > 0 {
		c.col--
	}
	_, _ = c.w.Write([]byte("\b \b"))
}

// runPlain drives the machine from a byte stream, one input byte at a time.
// It returns when in is exhausted or a command panics.
func runPlain(cfg Config, in io.Reader, out io.Writer, script string) error {
	cons := &lineConsole{w: out}

	m, err := newMachine(cfg, cons)
	if err != nil {
		return err
	}

	if script != "" {
		host := newScriptHost(cons, m.sys.Commands, m.sys.Tests)
		defer host.Close()
		if err := host.RunFile(script); err != nil {
			return err
		}
	}

	m.sys.Greet()
	if fault := m.step(); fault != nil {
		m.reportFault(fault)
		return nil
	}

	r := bufio.NewReader(in)
	var codes []byte
	for {
		b, err := r.ReadByte()
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}

		var ok bool
		if codes, ok = appendByteScancodes(codes[:0], b); !ok {
			continue
		}

		m.feed(codes)
		if fault := m.step(); fault != nil {
			m.reportFault(fault)
			return nil
		}
	}
}
