package keyboard

// AppendScancodes appends the make and break codes that a US 104-key
// keyboard emits when ch is typed. Characters that need shift are wrapped in
// left shift make/break codes. It returns false and dst unchanged if ch cannot
// be typed on the layout.
func AppendScancodes(dst []byte, ch byte) ([]byte, bool) {
	for code := range us104 {
		for shift, mapped := range us104[code] {
			if mapped != ch || mapped == 0 {
				continue
			}

			if shift == 1 {
				dst = append(dst, scLeftShift)
			}
			dst = append(dst, byte(code), byte(code)|breakBit)
			if shift == 1 {
				dst = append(dst, scLeftShift|breakBit)
			}
			return dst, true
		}
	}

	return dst, false
}

var rawKeyScancodes = map[KeyCode][]byte{
	KeyEscape:     {scEscape, scEscape | breakBit},
	KeyArrowUp:    {extendedPrefix, scExtUp, extendedPrefix, scExtUp | breakBit},
	KeyArrowDown:  {extendedPrefix, scExtDown, extendedPrefix, scExtDown | breakBit},
	KeyArrowLeft:  {extendedPrefix, scExtLeft, extendedPrefix, scExtLeft | breakBit},
	KeyArrowRight: {extendedPrefix, scExtRight, extendedPrefix, scExtRight | breakBit},
	KeyHome:       {extendedPrefix, scExtHome, extendedPrefix, scExtHome | breakBit},
	KeyEnd:        {extendedPrefix, scExtEnd, extendedPrefix, scExtEnd | breakBit},
	KeyPageUp:     {extendedPrefix, scExtPgUp, extendedPrefix, scExtPgUp | breakBit},
	KeyPageDown:   {extendedPrefix, scExtPgDown, extendedPrefix, scExtPgDown | breakBit},
	KeyInsert:     {extendedPrefix, scExtInsert, extendedPrefix, scExtInsert | breakBit},
	KeyDelete:     {extendedPrefix, scExtDelete, extendedPrefix, scExtDelete | breakBit},
}

// AppendRawKeyScancodes appends the scancodes emitted when a raw key is
// pressed and released. It returns false if the key is not supported.
func AppendRawKeyScancodes(dst []byte, code KeyCode) ([]byte, bool) {
	seq, ok := rawKeyScancodes[code]
	if !ok {
		return dst, false
	}
	return append(dst, seq...), true
}
