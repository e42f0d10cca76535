package main

import (
	"vertexos/device/keyboard"

	"github.com/gdamore/tcell/v2"
)

var rawKeys = map[tcell.Key]keyboard.KeyCode{
	tcell.KeyUp:     keyboard.KeyArrowUp,
	tcell.KeyDown:   keyboard.KeyArrowDown,
	tcell.KeyLeft:   keyboard.KeyArrowLeft,
	tcell.KeyRight:  keyboard.KeyArrowRight,
	tcell.KeyHome:   keyboard.KeyHome,
	tcell.KeyEnd:    keyboard.KeyEnd,
	tcell.KeyPgUp:   keyboard.KeyPageUp,
	tcell.KeyPgDn:   keyboard.KeyPageDown,
	tcell.KeyInsert: keyboard.KeyInsert,
	tcell.KeyDelete: keyboard.KeyDelete,
}

// appendKeyScancodes appends the scancodes a PC keyboard would emit for the
// terminal key event ev. It returns false for keys that have no mapping.
func appendKeyScancodes(dst []byte, ev *tcell.EventKey) ([]byte, bool) {
	switch ev.Key() {
	case tcell.KeyRune:
		r := ev.Rune()
		if r > 0x7f {
			return dst, false
		}
		return keyboard.AppendScancodes(dst, byte(r))
	case tcell.KeyEnter:
		return keyboard.AppendScancodes(dst, '\n')
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return keyboard.AppendScancodes(dst, '\b')
	case tcell.KeyTab:
		return keyboard.AppendScancodes(dst, '\t')
	}

	if code, ok := rawKeys[ev.Key()]; ok {
		return keyboard.AppendRawKeyScancodes(dst, code)
	}
	return dst, false
}

// appendByteScancodes is the line mode counterpart of appendKeyScancodes.
// Carriage returns are dropped and DEL is treated as backspace.
func appendByteScancodes(dst []byte, b byte) ([]byte, bool) {
	switch b {
	case '\r':
		return dst, false
	case 0x7f:
		b = '\b'
	}
	return keyboard.AppendScancodes(dst, b)
}

func isQuitKey(ev *tcell.EventKey) bool {
	return ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyEscape
}
