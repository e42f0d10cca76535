package console

import (
	"image/color"
	"io"
	"unsafe"
	"vertexos/device"
	"vertexos/kernel"
	"vertexos/kernel/cpu"
	"vertexos/kernel/kfmt"
)

const (
	// VgaTextFramebuffer is the physical address of the mode 0x3 text
	// framebuffer. The boot loader identity maps it.
	VgaTextFramebuffer = uintptr(0xb8000)

	crtcIndexPort = uint16(0x3d4)
	crtcDataPort  = uint16(0x3d5)

	crtcCursorLocationHigh = uint8(0x0e)
	crtcCursorLocationLow  = uint8(0x0f)
)

var (
	// The following functions are mocked by tests.
	portWriteByteFn = cpu.PortWriteByte

	errNoFramebuffer = &kernel.Error{Module: "vga_text_console", Message: "framebuffer address is not set"}
)

// VgaTextConsole implements an EGA-compatible 80x25 text console using VGA
// mode 0x3. The console supports the default 16 EGA colors which can be
// overridden using the SetPaletteColor method.
//
// Each character in the console framebuffer is represented using two bytes,
// a byte for the character ASCII code and a byte that encodes the foreground
// and background colors (4 bits for each).
//
// The default settings for the console are:
//   - white text (color 15) on black background (color 0).
//   - space as the clear character
type VgaTextConsole struct {
	width  uint32
	height uint32

	fbAddr uintptr
	fb     []uint16

	palette   color.Palette
	defaultFg uint8
	defaultBg uint8
	clearChar uint16
}

// NewVgaTextConsole creates a new vga text console whose framebuffer is
// located at fbAddr.
func NewVgaTextConsole(columns, rows uint32, fbAddr uintptr) *VgaTextConsole {
	return &VgaTextConsole{
		width:     columns,
		height:    rows,
		fbAddr:    fbAddr,
		clearChar: uint16(' '),
		palette:   EGAPalette(),
		defaultFg: White,
		defaultBg: Black,
	}
}

// Dimensions returns the console width and height in characters.
func (cons *VgaTextConsole) Dimensions() (uint32, uint32) {
	return cons.width, cons.height
}

// DefaultColors returns the default foreground and background colors
// used by this console.
func (cons *VgaTextConsole) DefaultColors() (fg uint8, bg uint8) {
	return cons.defaultFg, cons.defaultBg
}

// Fill sets the contents of the specified rectangular region to the requested
// color. Both x and y coordinates are 1-based.
func (cons *VgaTextConsole) Fill(x, y, width, height uint32, fg, bg uint8) {
	var (
		clr                  = (((uint16(bg) << 4) | uint16(fg)) << 8) | cons.clearChar
		rowOffset, colOffset uint32
	)

	// clip rectangle
	if x == 0 {
		x = 1
	} else if x >= cons.width {
		x = cons.width
	}

	if y == 0 {
		y = 1
	} else if y >= cons.height {
		y = cons.height
	}

	if x+width-1 > cons.width {
		width = cons.width - x + 1
	}

	if y+height-1 > cons.height {
		height = cons.height - y + 1
	}

	rowOffset = ((y - 1) * cons.width) + (x - 1)
	for ; height > 0; height, rowOffset = height-1, rowOffset+cons.width {
		for colOffset = rowOffset; colOffset < rowOffset+width; colOffset++ {
			cons.fb[colOffset] = clr
		}
	}
}

// Scroll the console contents to the specified direction. The caller
// is responsible for updating (e.g. clear or replace) the contents of
// the region that was scrolled.
func (cons *VgaTextConsole) Scroll(dir ScrollDir, lines uint32) {
	if lines == 0 || lines > cons.height {
		return
	}

	var i uint32
	offset := lines * cons.width

	switch dir {
	case ScrollDirUp:
		for ; i < (cons.height-lines)*cons.width; i++ {
			cons.fb[i] = cons.fb[i+offset]
		}
	case ScrollDirDown:
		for i = cons.height*cons.width - 1; i >= lines*cons.width; i-- {
			cons.fb[i] = cons.fb[i-offset]
		}
	}
}

// Write a char to the specified location. If fg or bg exceed the supported
// colors for this console, they will be set to their default value. Both x and
// y coordinates are 1-based
func (cons *VgaTextConsole) Write(ch byte, fg, bg uint8, x, y uint32) {
	if x < 1 || x > cons.width || y < 1 || y > cons.height {
		return
	}

	maxColorIndex := uint8(len(cons.palette) - 1)
	if fg > maxColorIndex {
		fg = cons.defaultFg
	}
	if bg > maxColorIndex {
		bg = cons.defaultBg
	}

	cons.fb[((y-1)*cons.width)+(x-1)] = (((uint16(bg) << 4) | uint16(fg)) << 8) | uint16(ch)
}

// MoveCursor moves the hardware cursor to the 1-based location (x, y).
// Coordinates outside the console are clipped.
func (cons *VgaTextConsole) MoveCursor(x, y uint32) {
	if x < 1 {
		x = 1
	} else if x > cons.width {
		x = cons.width
	}
	if y < 1 {
		y = 1
	} else if y > cons.height {
		y = cons.height
	}

	pos := uint16((y-1)*cons.width + (x - 1))
	portWriteByteFn(crtcIndexPort, crtcCursorLocationLow)
	portWriteByteFn(crtcDataPort, uint8(pos))
	portWriteByteFn(crtcIndexPort, crtcCursorLocationHigh)
	portWriteByteFn(crtcDataPort, uint8(pos>>8))
}

// Palette returns the active color palette for this console.
func (cons *VgaTextConsole) Palette() color.Palette {
	return cons.palette
}

// SetPaletteColor updates the color definition for the specified
// palette index. Passing a color index greater than the number of
// supported colors should be a no-op.
func (cons *VgaTextConsole) SetPaletteColor(index uint8, rgba color.RGBA) {
	if index >= uint8(len(cons.palette)) {
		return
	}

	cons.palette[index] = rgba

	// Load palette entry to the DAC. In this mode, colors are specified
	// using 6-bits for each component; the RGB values need to be converted
	// to the 0-63 range.
	portWriteByteFn(0x3c8, index)
	portWriteByteFn(0x3c9, rgba.R>>2)
	portWriteByteFn(0x3c9, rgba.G>>2)
	portWriteByteFn(0x3c9, rgba.B>>2)
}

// DriverName returns the name of this driver.
func (cons *VgaTextConsole) DriverName() string {
	return "vga_text_console"
}

// DriverVersion returns the version of this driver.
func (cons *VgaTextConsole) DriverVersion() (uint16, uint16, uint16) {
	return 0, 1, 0
}

// DriverInit initializes this driver.
func (cons *VgaTextConsole) DriverInit(w io.Writer) *kernel.Error {
	if cons.fbAddr == 0 {
		return errNoFramebuffer
	}

	if cons.fb == nil {
		cons.fb = unsafe.Slice((*uint16)(unsafe.Pointer(cons.fbAddr)), cons.width*cons.height)
	}

	cons.Fill(1, 1, cons.width, cons.height, cons.defaultFg, cons.defaultBg)
	kfmt.Fprintf(w, "%dx%d text mode, framebuffer at 0x%x\n", cons.width, cons.height, cons.fbAddr)
	return nil
}

// ProbeForVgaTextConsole returns the 80x25 mode 0x3 console that the boot
// loader leaves the display in.
func ProbeForVgaTextConsole() device.Driver {
	return NewVgaTextConsole(80, 25, VgaTextFramebuffer)
}
