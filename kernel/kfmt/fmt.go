package kfmt

import (
	"io"
	"unsafe"
)

// maxBufSize defines the buffer size for formatting numbers.
const maxBufSize = 32

var (
	errMissingArg   = []byte("(MISSING)")
	errWrongArgType = []byte("%!(WRONGTYPE)")
	errNoVerb       = []byte("%!(NOVERB)")
	errExtraArg     = []byte("%!(EXTRA)")
	trueValue       = []byte("true")
	falseValue      = []byte("false")

	numFmtBuf = []byte("012345678901234567890123456789012")

	// singleByte is a shared buffer for passing single characters to
	// doWrite. Slicing a string or a format block would make the compiler
	// emit an allocation.
	singleByte = []byte(" ")

	// earlyPrintBuffer stores Printf output produced before an output sink
	// is attached.
	earlyPrintBuffer ringBuffer

	// outputSink is the io.Writer where Printf sends its output. While it
	// is nil, output accumulates in earlyPrintBuffer.
	outputSink io.Writer
)

// SetOutputSink sets the default target for calls to Printf to w and replays
// any data accumulated in the early print buffer.
func SetOutputSink(w io.Writer) {
	outputSink = w
	if w != nil {
		io.Copy(w, &earlyPrintBuffer)
	}
}

// GetOutputSink returns the io.Writer currently used by Printf or nil if
// output is still being buffered.
func GetOutputSink() io.Writer {
	return outputSink
}

// Printf is a minimal, allocation-free Printf that is safe to call from
// interrupt handlers and from code running before the Go allocator is
// available.
//
// The following verbs are supported:
//
//	%s the uninterpreted bytes of a string or byte slice
//	%c a single byte or rune (runes outside the ASCII range print as '?')
//	%o base 8 integer
//	%d base 10 integer
//	%x base 16 integer, with lower-case letters for a-f
//	%t "true" or "false"
//	%% a literal percent sign
//
// An optional decimal width may precede the verb. Strings and base-10
// integers are left-padded with spaces; base-8 and base-16 integers are
// left-padded with zeroes.
//
// Arguments are never checked for io.Stringer or error support and %p is not
// provided; doing so would pull in reflect, whose argument boxing allocates.
//
// Output goes to the active output sink (see SetOutputSink).
func Printf(format string, args ...interface{}) {
	Fprintf(outputSink, format, args...)
}

// Fprintf behaves exactly like Printf but it writes the formatted output to
// the specified io.Writer.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	var (
		nextArg int
		padLen  int
		fmtLen  = len(format)
	)

	for i := 0; i < fmtLen; i++ {
		if format[i] != '%' {
			writeByte(w, format[i])
			continue
		}

		// Consume the width and locate the verb
		padLen = 0
		for i++; i < fmtLen && format[i] >= '0' && format[i] <= '9'; i++ {
			padLen = (padLen * 10) + int(format[i]-'0')
		}

		if i == fmtLen {
			doWrite(w, errNoVerb)
			break
		}

		verb := format[i]
		switch verb {
		case '%':
			writeByte(w, '%')
			continue
		case 'c', 'd', 'o', 's', 't', 'x':
		default:
			doWrite(w, errNoVerb)
			continue
		}

		if nextArg >= len(args) {
			doWrite(w, errMissingArg)
			continue
		}

		fmtArg(w, verb, args[nextArg], padLen)
		nextArg++
	}

	for ; nextArg < len(args); nextArg++ {
		doWrite(w, errExtraArg)
	}
}

// fmtArg formats a single argument according to verb.
func fmtArg(w io.Writer, verb byte, arg interface{}, padLen int) {
	switch verb {
	case 'c':
		fmtChar(w, arg)
	case 'o':
		fmtInt(w, arg, 8, padLen)
	case 'd':
		fmtInt(w, arg, 10, padLen)
	case 'x':
		fmtInt(w, arg, 16, padLen)
	case 's':
		fmtString(w, arg, padLen)
	case 't':
		fmtBool(w, arg)
	}
}

// fmtBool prints a formatted version of boolean value v.
func fmtBool(w io.Writer, v interface{}) {
	bVal, ok := v.(bool)
	switch {
	case !ok:
		doWrite(w, errWrongArgType)
	case bVal:
		doWrite(w, trueValue)
	default:
		doWrite(w, falseValue)
	}
}

// fmtChar prints a single byte or rune.
func fmtChar(w io.Writer, v interface{}) {
	switch ch := v.(type) {
	case byte:
		writeByte(w, ch)
	case rune:
		if ch < 0 || ch > 0x7f {
			ch = '?'
		}
		writeByte(w, byte(ch))
	default:
		doWrite(w, errWrongArgType)
	}
}

// fmtString prints a formatted version of string or []byte value v, applying
// the padding specified by padLen.
func fmtString(w io.Writer, v interface{}, padLen int) {
	switch castedVal := v.(type) {
	case string:
		fmtRepeat(w, ' ', padLen-len(castedVal))
		for i := 0; i < len(castedVal); i++ {
			writeByte(w, castedVal[i])
		}
	case []byte:
		fmtRepeat(w, ' ', padLen-len(castedVal))
		doWrite(w, castedVal)
	default:
		doWrite(w, errWrongArgType)
	}
}

// fmtRepeat writes count bytes with value ch.
func fmtRepeat(w io.Writer, ch byte, count int) {
	for i := 0; i < count; i++ {
		writeByte(w, ch)
	}
}

// toUint64 splits an integer argument into its magnitude and sign.
func toUint64(v interface{}) (val uint64, negative, ok bool) {
	var sval int64
	switch t := v.(type) {
	case uint8:
		return uint64(t), false, true
	case uint16:
		return uint64(t), false, true
	case uint32:
		return uint64(t), false, true
	case uint64:
		return t, false, true
	case uint:
		return uint64(t), false, true
	case uintptr:
		return uint64(t), false, true
	case int8:
		sval = int64(t)
	case int16:
		sval = int64(t)
	case int32:
		sval = int64(t)
	case int64:
		sval = t
	case int:
		sval = int64(t)
	default:
		return 0, false, false
	}

	if sval < 0 {
		return uint64(-sval), true, true
	}
	return uint64(sval), false, true
}

// fmtInt prints out a formatted version of v in the requested base, applying
// the padding specified by padLen.
func fmtInt(w io.Writer, v interface{}, base, padLen int) {
	var (
		divider          = uint64(base)
		padCh            = byte('0')
		left, right, end int
	)

	uval, negative, ok := toUint64(v)
	if !ok {
		doWrite(w, errWrongArgType)
		return
	}

	if padLen >= maxBufSize {
		padLen = maxBufSize - 1
	}

	if base == 10 {
		padCh = ' '
	}

	// Digits are emitted least significant first and reversed at the end
	for right < maxBufSize {
		remainder := uval % divider
		if remainder < 10 {
			numFmtBuf[right] = byte(remainder) + '0'
		} else {
			numFmtBuf[right] = byte(remainder-10) + 'a'
		}
		right++

		uval /= divider
		if uval == 0 {
			break
		}
	}

	for ; right-left < padLen; right++ {
		numFmtBuf[right] = padCh
	}

	// The sign replaces the leftmost blank padding character if there is
	// one; otherwise it is appended.
	if negative {
		for end = right - 1; numFmtBuf[end] == ' '; end-- {
		}

		if end == right-1 {
			right++
		}

		numFmtBuf[end+1] = '-'
	}

	end = right
	for right = right - 1; left < right; left, right = left+1, right-1 {
		numFmtBuf[left], numFmtBuf[right] = numFmtBuf[right], numFmtBuf[left]
	}

	doWrite(w, numFmtBuf[0:end])
}

// writeByte writes a single byte via the shared singleByte buffer.
func writeByte(w io.Writer, b byte) {
	singleByte[0] = b
	doWrite(w, singleByte)
}

// doWrite hides p from escape analysis before handing it to the writer.
// Without this, the compiler cannot prove that p does not escape through the
// io.Writer interface call and boxes the Printf arguments on the heap.
func doWrite(w io.Writer, p []byte) {
	doRealWrite(w, noEscape(unsafe.Pointer(&p)))
}

func doRealWrite(w io.Writer, bufPtr unsafe.Pointer) {
	p := *(*[]byte)(bufPtr)
	if w != nil {
		w.Write(p)
	} else {
		earlyPrintBuffer.Write(p)
	}
}

// noEscape hides a pointer from escape analysis. This function is copied over
// from runtime/stubs.go
//
//go:nosplit
func noEscape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}
