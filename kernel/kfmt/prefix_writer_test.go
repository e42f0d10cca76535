package kfmt

import (
	"bytes"
	"errors"
	"testing"
)

func TestPrefixWriter(t *testing.T) {
	specs := []struct {
		writes []string
		exp    string
	}{
		{nil, ""},
		{[]string{""}, ""},
		{[]string{"\n"}, "[hal] vga: \n"},
		{[]string{"80x25 text mode"}, "[hal] vga: 80x25 text mode"},
		{
			[]string{"probing\nframebuffer at 0xb8000\n"},
			"[hal] vga: probing\n[hal] vga: framebuffer at 0xb8000\n",
		},
		{
			// A line split across writes gets a single prefix.
			[]string{"80x25 ", "text mode\n", "ok"},
			"[hal] vga: 80x25 text mode\n[hal] vga: ok",
		},
		{
			[]string{"\n\ncursor\n"},
			"[hal] vga: \n[hal] vga: \n[hal] vga: cursor\n",
		},
	}

	for specIndex, spec := range specs {
		var buf bytes.Buffer
		w := PrefixWriter{Sink: &buf, Prefix: []byte("[hal] vga: ")}

		for _, input := range spec.writes {
			wrote, err := w.Write([]byte(input))
			if err != nil {
				t.Errorf("[spec %d] unexpected error: %v", specIndex, err)
			}

			if wrote != len(input) {
				t.Errorf("[spec %d] expected writer to report %d bytes; got %d", specIndex, len(input), wrote)
			}
		}

		if got := buf.String(); got != spec.exp {
			t.Errorf("[spec %d] expected output %q; got %q", specIndex, spec.exp, got)
		}
	}
}

type failingWriter struct {
	err error
}

func (w failingWriter) Write(_ []byte) (int, error) {
	return 0, w.err
}

func TestPrefixWriterPropagatesErrors(t *testing.T) {
	expErr := errors.New("console detached")

	for specIndex, input := range []string{"single line", "first\nsecond"} {
		w := PrefixWriter{Sink: failingWriter{expErr}, Prefix: []byte("> ")}
		if _, err := w.Write([]byte(input)); err != expErr {
			t.Errorf("[spec %d] expected error %v; got %v", specIndex, expErr, err)
		}
	}
}

func TestPrefixWriterWithoutSink(t *testing.T) {
	defer func() {
		outputSink = nil
		earlyPrintBuffer.rIndex, earlyPrintBuffer.wIndex = 0, 0
	}()

	outputSink = nil
	earlyPrintBuffer.rIndex, earlyPrintBuffer.wIndex = 0, 0

	w := PrefixWriter{Sink: GetOutputSink(), Prefix: []byte("[hal] vga: ")}
	if wrote, err := w.Write([]byte("80x25\nok\n")); err != nil || wrote != 9 {
		t.Fatalf("expected write to succeed with 9 bytes; got %d, %v", wrote, err)
	}

	var buf bytes.Buffer
	SetOutputSink(&buf)

	if exp, got := "[hal] vga: 80x25\n[hal] vga: ok\n", buf.String(); got != exp {
		t.Fatalf("expected buffered output %q to be replayed; got %q", exp, got)
	}
}
