// Package keyboard decodes PS/2 scancode set 1 byte streams into key events
// using a US 104-key layout.
package keyboard

// KeyCode identifies a key that does not produce a character.
type KeyCode uint8

// The list of raw keys reported by the decoder.
const (
	KeyNone KeyCode = iota
	KeyEscape
	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
	KeyDelete
	KeyCapsLock
	KeyNumLock
	KeyScrollLock
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

var keyNames = [...]string{
	KeyNone:       "None",
	KeyEscape:     "Escape",
	KeyArrowUp:    "ArrowUp",
	KeyArrowDown:  "ArrowDown",
	KeyArrowLeft:  "ArrowLeft",
	KeyArrowRight: "ArrowRight",
	KeyHome:       "Home",
	KeyEnd:        "End",
	KeyPageUp:     "PageUp",
	KeyPageDown:   "PageDown",
	KeyInsert:     "Insert",
	KeyDelete:     "Delete",
	KeyCapsLock:   "CapsLock",
	KeyNumLock:    "NumLock",
	KeyScrollLock: "ScrollLock",
	KeyF1:         "F1",
	KeyF2:         "F2",
	KeyF3:         "F3",
	KeyF4:         "F4",
	KeyF5:         "F5",
	KeyF6:         "F6",
	KeyF7:         "F7",
	KeyF8:         "F8",
	KeyF9:         "F9",
	KeyF10:        "F10",
	KeyF11:        "F11",
	KeyF12:        "F12",
}

// String returns the key name.
func (k KeyCode) String() string {
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return "Unknown"
}

// Key is a decoded key press. Keys that produce a character have Code set to
// KeyNone and the character stored in Char. Newline, backspace and tab are
// reported as '\n', '\b' and '\t'.
type Key struct {
	Char byte
	Code KeyCode
}

// IsRaw returns true if the key does not produce a character.
func (k Key) IsRaw() bool {
	return k.Code != KeyNone
}

// Decoder converts a scancode set 1 byte stream into Keys. Control key
// combinations are not translated to control characters; the ctrl state is
// ignored. Decoder is not safe for concurrent use.
type Decoder struct {
	extended   bool
	leftShift  bool
	rightShift bool
	capsLock   bool
}

// NewDecoder returns a decoder for the US 104-key layout.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// AddByte feeds a single scancode byte to the decoder. It returns true and the
// decoded key when b completes a key press. Key releases, modifier changes
// and prefix bytes return false.
func (d *Decoder) AddByte(b byte) (Key, bool) {
	if b == extendedPrefix {
		d.extended = true
		return Key{}, false
	}

	extended := d.extended
	d.extended = false

	released := b&breakBit != 0
	code := b &^ breakBit

	if extended {
		return d.decodeExtended(code, released)
	}

	switch code {
	case scLeftShift:
		d.leftShift = !released
		return Key{}, false
	case scRightShift:
		d.rightShift = !released
		return Key{}, false
	case scLeftCtrl, scLeftAlt:
		return Key{}, false
	}

	if released {
		return Key{}, false
	}

	switch {
	case code == scCapsLock:
		d.capsLock = !d.capsLock
		return Key{Code: KeyCapsLock}, true
	case code == scEscape:
		return Key{Code: KeyEscape}, true
	case code >= scF1 && code <= scF10:
		return Key{Code: KeyF1 + KeyCode(code-scF1)}, true
	case code == scF11:
		return Key{Code: KeyF11}, true
	case code == scF12:
		return Key{Code: KeyF12}, true
	case code == scNumLock:
		return Key{Code: KeyNumLock}, true
	case code == scScrollLock:
		return Key{Code: KeyScrollLock}, true
	case int(code) < len(us104) && us104[code][0] != 0:
		return Key{Char: d.translate(code)}, true
	}

	return Key{}, false
}

// translate applies the shift and caps lock state to a character key.
func (d *Decoder) translate(code byte) byte {
	shifted := d.leftShift || d.rightShift
	if ch := us104[code][0]; ch >= 'a' && ch <= 'z' && d.capsLock {
		shifted = !shifted
	}

	if shifted {
		return us104[code][1]
	}
	return us104[code][0]
}

// decodeExtended handles keys that follow the 0xe0 prefix.
func (d *Decoder) decodeExtended(code byte, released bool) (Key, bool) {
	if released {
		return Key{}, false
	}

	switch code {
	case scExtEnter:
		return Key{Char: '\n'}, true
	case 0x35: // keypad '/'
		return Key{Char: '/'}, true
	case scExtUp:
		return Key{Code: KeyArrowUp}, true
	case scExtDown:
		return Key{Code: KeyArrowDown}, true
	case scExtLeft:
		return Key{Code: KeyArrowLeft}, true
	case scExtRight:
		return Key{Code: KeyArrowRight}, true
	case scExtHome:
		return Key{Code: KeyHome}, true
	case scExtEnd:
		return Key{Code: KeyEnd}, true
	case scExtPgUp:
		return Key{Code: KeyPageUp}, true
	case scExtPgDown:
		return Key{Code: KeyPageDown}, true
	case scExtInsert:
		return Key{Code: KeyInsert}, true
	case scExtDelete:
		return Key{Code: KeyDelete}, true
	}

	// right ctrl/alt and the fake shifts emitted around print screen
	return Key{}, false
}
