package kfmt

import (
	"bytes"
	"io"
)

// PrefixWriter is an io.Writer that wraps another io.Writer and injects a
// prefix at the beginning of each line.
type PrefixWriter struct {
	// A writer where all writes get sent to. While nil, writes go to the
	// early print buffer like Printf output does.
	Sink io.Writer

	// The prefix injected at the beginning of each line.
	Prefix []byte

	// midLine is set while the last byte written was not a line feed.
	midLine bool
}

// Write writes len(p) bytes from p to the underlying data stream. The
// injected prefix is not included in the number of written bytes.
func (w *PrefixWriter) Write(p []byte) (int, error) {
	var (
		written int
		sink    = w.sink()
	)

	for len(p) != 0 {
		if !w.midLine {
			sink.Write(w.Prefix)
			w.midLine = true
		}

		lineLen := bytes.IndexByte(p, '\n') + 1
		if lineLen == 0 {
			lineLen = len(p)
		}

		n, err := sink.Write(p[:lineLen])
		written += n
		if err != nil {
			return written, err
		}

		if p[lineLen-1] == '\n' {
			w.midLine = false
		}
		p = p[lineLen:]
	}

	return written, nil
}

func (w *PrefixWriter) sink() io.Writer {
	if w.Sink == nil {
		return &earlyPrintBuffer
	}
	return w.Sink
}
