// Package console provides character grid devices that a terminal can render
// its contents onto.
package console

import "image/color"

// The 16 standard text mode colors. Values are indices into the console
// palette.
const (
	Black uint8 = iota
	Blue
	Green
	Cyan
	Red
	Magenta
	Brown
	LightGray
	DarkGray
	LightBlue
	LightGreen
	LightCyan
	LightRed
	LightMagenta
	Yellow
	White
)

// ScrollDir defines a scroll direction.
type ScrollDir uint8

// The supported list of scroll directions for the console Scroll() calls.
const (
	ScrollDirUp ScrollDir = iota
	ScrollDirDown
)

// The Device interface is implemented by objects that can function as system
// consoles.
type Device interface {
	// Dimensions returns the width and height of the console in
	// characters.
	Dimensions() (uint32, uint32)

	// DefaultColors returns the default foreground and background colors
	// used by this console.
	DefaultColors() (fg, bg uint8)

	// Fill sets the contents of the specified rectangular region to the
	// requested color. Both x and y coordinates are 1-based (top-left
	// corner has coordinates 1,1).
	Fill(x, y, width, height uint32, fg, bg uint8)

	// Scroll the console contents to the specified direction. The caller
	// is responsible for updating (e.g. clear or replace) the contents of
	// the region that was scrolled.
	Scroll(dir ScrollDir, lines uint32)

	// Write a char to the specified location. Both x and y coordinates are
	// 1-based (top-left corner has coordinates 1,1).
	Write(ch byte, fg, bg uint8, x, y uint32)

	// Palette returns the active color palette for this console.
	Palette() color.Palette

	// SetPaletteColor updates the color definition for the specified
	// palette index. Passing a color index greater than the number of
	// supported colors should be a no-op.
	SetPaletteColor(uint8, color.RGBA)
}

// CursorMover is implemented by consoles that display a cursor.
//
// MoveCursor moves the cursor to the 1-based location (x, y).
type CursorMover interface {
	MoveCursor(x, y uint32)
}

// EGAPalette returns the default 16-color text mode palette.
func EGAPalette() color.Palette {
	return color.Palette{
		color.RGBA{R: 0, G: 0, B: 0, A: 255},       /* black */
		color.RGBA{R: 0, G: 0, B: 170, A: 255},     /* blue */
		color.RGBA{R: 0, G: 170, B: 0, A: 255},     /* green */
		color.RGBA{R: 0, G: 170, B: 170, A: 255},   /* cyan */
		color.RGBA{R: 170, G: 0, B: 0, A: 255},     /* red */
		color.RGBA{R: 170, G: 0, B: 170, A: 255},   /* magenta */
		color.RGBA{R: 170, G: 85, B: 0, A: 255},    /* brown */
		color.RGBA{R: 170, G: 170, B: 170, A: 255}, /* light gray */
		color.RGBA{R: 85, G: 85, B: 85, A: 255},    /* dark gray */
		color.RGBA{R: 85, G: 85, B: 255, A: 255},   /* light blue */
		color.RGBA{R: 85, G: 255, B: 85, A: 255},   /* light green */
		color.RGBA{R: 85, G: 255, B: 255, A: 255},  /* light cyan */
		color.RGBA{R: 255, G: 85, B: 85, A: 255},   /* light red */
		color.RGBA{R: 255, G: 85, B: 255, A: 255},  /* light magenta */
		color.RGBA{R: 255, G: 255, B: 85, A: 255},  /* yellow */
		color.RGBA{R: 255, G: 255, B: 255, A: 255}, /* white */
	}
}
