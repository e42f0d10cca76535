package main

import (
	"image/color"
	"vertexos/device/video/console"

	"github.com/gdamore/tcell/v2"
)

// cellScreen is the subset of tcell.Screen used by screenDevice.
type cellScreen interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	ShowCursor(x, y int)
}

type cell struct {
	ch     byte
	fg, bg uint8
}

// screenDevice is a console.Device that renders onto a terminal screen.
// Colors are resolved through the device palette so palette updates repaint
// the whole grid, like they would on VGA hardware.
type screenDevice struct {
	screen        cellScreen
	width, height uint32
	cells         []cell
	palette       color.Palette
}

func newScreenDevice(screen cellScreen, width, height uint32) *screenDevice {
	dev := &screenDevice{
		screen:  screen,
		width:   width,
		height:  height,
		cells:   make([]cell, width*height),
		palette: console.EGAPalette(),
	}

	for i := range dev.cells {
		dev.cells[i] = cell{ch: ' ', fg: console.White, bg: console.Black}
	}
	dev.repaint()

	return dev
}

// Dimensions returns the console width and height in characters.
func (d *screenDevice) Dimensions() (uint32, uint32) {
	return d.width, d.height
}

// DefaultColors returns white on black.
func (d *screenDevice) DefaultColors() (uint8, uint8) {
	return console.White, console.Black
}

// Fill clears the 1-based rectangle at (x, y) using the supplied colors.
func (d *screenDevice) Fill(x, y, width, height uint32, fg, bg uint8) {
	if x == 0 {
		x = 1
	} else if x > d.width {
		x = d.width
	}
	if y == 0 {
		y = 1
	} else if y > d.height {
		y = d.height
	}
	if x+width-1 > d.width {
		width = d.width - x + 1
	}
	if y+height-1 > d.height {
		height = d.height - y + 1
	}

	for row := y; row < y+height; row++ {
		for col := x; col < x+width; col++ {
			d.set(col, row, cell{ch: ' ', fg: fg, bg: bg})
		}
	}
}

// Scroll moves the grid contents by lines rows. The vacated rows keep their
// previous contents.
func (d *screenDevice) Scroll(dir console.ScrollDir, lines uint32) {
	if lines == 0 || lines > d.height {
		return
	}

	offset := int(lines * d.width)
	switch dir {
	case console.ScrollDirUp:
		copy(d.cells, d.cells[offset:])
	case console.ScrollDirDown:
		copy(d.cells[offset:], d.cells[:len(d.cells)-offset])
	}
	d.repaint()
}

// Write places ch at the 1-based location (x, y).
func (d *screenDevice) Write(ch byte, fg, bg uint8, x, y uint32) {
	if x < 1 || x > d.width || y < 1 || y > d.height {
		return
	}
	d.set(x, y, cell{ch: ch, fg: fg, bg: bg})
}

// Palette returns the active color palette.
func (d *screenDevice) Palette() color.Palette {
	return d.palette
}

// SetPaletteColor updates a palette entry and repaints the screen.
func (d *screenDevice) SetPaletteColor(index uint8, rgba color.RGBA) {
	if int(index) >= len(d.palette) {
		return
	}

	d.palette[index] = rgba
	d.repaint()
}

// MoveCursor shows the terminal cursor at the 1-based location (x, y).
func (d *screenDevice) MoveCursor(x, y uint32) {
	d.screen.ShowCursor(int(x)-1, int(y)-1)
}

func (d *screenDevice) set(x, y uint32, c cell) {
	d.cells[(y-1)*d.width+(x-1)] = c
	d.draw(x-1, y-1, c)
}

func (d *screenDevice) repaint() {
	for i, c := range d.cells {
		d.draw(uint32(i)%d.width, uint32(i)/d.width, c)
	}
}

func (d *screenDevice) draw(x, y uint32, c cell) {
	style := tcell.StyleDefault.Foreground(d.color(c.fg)).Background(d.color(c.bg))
	d.screen.SetContent(int(x), int(y), rune(c.ch), nil, style)
}

func (d *screenDevice) color(index uint8) tcell.Color {
	r, g, b, _ := d.palette[index].RGBA()
	return tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8))
}

var (
	_ console.Device      = (*screenDevice)(nil)
	_ console.CursorMover = (*screenDevice)(nil)
)
