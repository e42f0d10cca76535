package keyboard

// Scancode set 1 make codes for the keys that have a distinct meaning to the
// decoder. Break codes are the make code with bit 7 set.
const (
	scEscape     = 0x01
	scBackspace  = 0x0e
	scTab        = 0x0f
	scEnter      = 0x1c
	scLeftCtrl   = 0x1d
	scLeftShift  = 0x2a
	scRightShift = 0x36
	scLeftAlt    = 0x38
	scSpace      = 0x39
	scCapsLock   = 0x3a
	scF1         = 0x3b
	scF10        = 0x44
	scNumLock    = 0x45
	scScrollLock = 0x46
	scF11        = 0x57
	scF12        = 0x58

	// Keys following the extended prefix
	scExtUp     = 0x48
	scExtLeft   = 0x4b
	scExtRight  = 0x4d
	scExtDown   = 0x50
	scExtHome   = 0x47
	scExtEnd    = 0x4f
	scExtPgUp   = 0x49
	scExtPgDown = 0x51
	scExtInsert = 0x52
	scExtDelete = 0x53
	scExtEnter  = 0x1c

	extendedPrefix = 0xe0
	breakBit       = 0x80
)

// us104 maps set 1 make codes to the ASCII characters produced by a US 104-key
// layout without (index 0) and with (index 1) shift. A zero entry marks a
// key that does not produce a character.
var us104 = [0x3a][2]byte{
	0x02: {'1', '!'},
	0x03: {'2', '@'},
	0x04: {'3', '#'},
	0x05: {'4', '$'},
	0x06: {'5', '%'},
	0x07: {'6', '^'},
	0x08: {'7', '&'},
	0x09: {'8', '*'},
	0x0a: {'9', '('},
	0x0b: {'0', ')'},
	0x0c: {'-', '_'},
	0x0d: {'=', '+'},
	0x0e: {'\b', '\b'},
	0x0f: {'\t', '\t'},
	0x10: {'q', 'Q'},
	0x11: {'w', 'W'},
	0x12: {'e', 'E'},
	0x13: {'r', 'R'},
	0x14: {'t', 'T'},
	0x15: {'y', 'Y'},
	0x16: {'u', 'U'},
	0x17: {'i', 'I'},
	0x18: {'o', 'O'},
	0x19: {'p', 'P'},
	0x1a: {'[', '{'},
	0x1b: {']', '}'},
	0x1c: {'\n', '\n'},
	0x1e: {'a', 'A'},
	0x1f: {'s', 'S'},
	0x20: {'d', 'D'},
	0x21: {'f', 'F'},
	0x22: {'g', 'G'},
	0x23: {'h', 'H'},
	0x24: {'j', 'J'},
	0x25: {'k', 'K'},
	0x26: {'l', 'L'},
	0x27: {';', ':'},
	0x28: {'\'', '"'},
	0x29: {'`', '~'},
	0x2b: {'\\', '|'},
	0x2c: {'z', 'Z'},
	0x2d: {'x', 'X'},
	0x2e: {'c', 'C'},
	0x2f: {'v', 'V'},
	0x30: {'b', 'B'},
	0x31: {'n', 'N'},
	0x32: {'m', 'M'},
	0x33: {',', '<'},
	0x34: {'.', '>'},
	0x35: {'/', '?'},
	0x37: {'*', '*'},
	0x39: {' ', ' '},
}
