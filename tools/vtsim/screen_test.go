package main

import (
	"image/color"
	"testing"
	"vertexos/device/tty"
	"vertexos/device/video/console"

	"github.com/gdamore/tcell/v2"
)

type fakeCell struct {
	ch    rune
	style tcell.Style
}

type fakeScreen struct {
	width   int
	cells   map[[2]int]fakeCell
	cursorX int
	cursorY int
}

func newFakeScreen(width int) *fakeScreen {
	return &fakeScreen{width: width, cells: make(map[[2]int]fakeCell)}
}

func (s *fakeScreen) SetContent(x, y int, primary rune, _ []rune, style tcell.Style) {
	s.cells[[2]int{x, y}] = fakeCell{ch: primary, style: style}
}

func (s *fakeScreen) ShowCursor(x, y int) {
	s.cursorX, s.cursorY = x, y
}

func (s *fakeScreen) row(y int) string {
	var buf []rune
	for x := 0; x < s.width; x++ {
		buf = append(buf, s.cells[[2]int{x, y}].ch)
	}
	return string(buf)
}

func (s *fakeScreen) colors(x, y int) (tcell.Color, tcell.Color) {
	fg, bg, _ := s.cells[[2]int{x, y}].style.Decompose()
	return fg, bg
}

func TestScreenDeviceWrite(t *testing.T) {
	screen := newFakeScreen(4)
	dev := newScreenDevice(screen, 4, 2)

	if w, h := dev.Dimensions(); w != 4 || h != 2 {
		t.Fatalf("expected dimensions 4x2; got %dx%d", w, h)
	}

	dev.Write('a', console.White, console.Blue, 1, 1)
	dev.Write('b', console.White, console.Blue, 4, 2)

	// Out of bounds writes are ignored.
	dev.Write('x', console.White, console.Blue, 0, 1)
	dev.Write('x', console.White, console.Blue, 5, 1)

	if got := screen.row(0); got != "a   " {
		t.Errorf("expected row 0 to be %q; got %q", "a   ", got)
	}
	if got := screen.row(1); got != "   b" {
		t.Errorf("expected row 1 to be %q; got %q", "   b", got)
	}

	fg, bg := screen.colors(0, 0)
	if expFg := tcell.NewRGBColor(0xff, 0xff, 0xff); fg != expFg {
		t.Errorf("expected fg %v; got %v", expFg, fg)
	}
	if expBg := tcell.NewRGBColor(0, 0, 0xaa); bg != expBg {
		t.Errorf("expected bg %v; got %v", expBg, bg)
	}
}

func TestScreenDeviceScroll(t *testing.T) {
	screen := newFakeScreen(2)
	dev := newScreenDevice(screen, 2, 3)

	for y, ch := range []byte{'1', '2', '3'} {
		dev.Write(ch, console.White, console.Black, 1, uint32(y+1))
	}

	dev.Scroll(console.ScrollDirUp, 1)
	if got := screen.row(0) + screen.row(1) + screen.row(2); got != "2 3 3 " {
		t.Fatalf("unexpected contents after scrolling up: %q", got)
	}

	dev.Scroll(console.ScrollDirDown, 2)
	if got := screen.row(0) + screen.row(1) + screen.row(2); got != "2 3 2 " {
		t.Fatalf("unexpected contents after scrolling down: %q", got)
	}

	// Invalid line counts are ignored.
	dev.Scroll(console.ScrollDirUp, 0)
	dev.Scroll(console.ScrollDirUp, 4)
	if got := screen.row(0) + screen.row(1) + screen.row(2); got != "2 3 2 " {
		t.Fatalf("expected invalid scrolls to be ignored; got %q", got)
	}
}

func TestScreenDeviceFillAndPalette(t *testing.T) {
	screen := newFakeScreen(3)
	dev := newScreenDevice(screen, 3, 3)

	dev.Write('x', console.White, console.Black, 2, 2)
	dev.Fill(2, 2, 10, 10, console.White, console.Red)

	if got := screen.row(1); got != "   " {
		t.Fatalf("expected fill to clear row 1; got %q", got)
	}

	dev.SetPaletteColor(console.Red, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	dev.SetPaletteColor(200, color.RGBA{})

	if got := dev.Palette()[console.Red]; got != (color.RGBA{R: 1, G: 2, B: 3, A: 255}) {
		t.Fatalf("expected palette entry to be updated; got %v", got)
	}

	// Palette updates repaint cells that use the changed color.
	if _, bg := screen.colors(2, 2); bg != tcell.NewRGBColor(1, 2, 3) {
		t.Fatalf("expected filled cell to use the new palette color; got %v", bg)
	}
	if _, bg := screen.colors(0, 0); bg != tcell.NewRGBColor(0, 0, 0) {
		t.Fatalf("expected unfilled cell to keep a black background; got %v", bg)
	}
}

func TestScreenDeviceWithVT(t *testing.T) {
	screen := newFakeScreen(10)
	dev := newScreenDevice(screen, 10, 3)

	vt := tty.NewVT(tty.DefaultTabWidth, 0)
	vt.AttachTo(dev)
	vt.SetState(tty.StateActive)

	if _, err := vt.Write([]byte("hi\nthere")); err != nil {
		t.Fatal(err)
	}

	if got := screen.row(0); got != "hi        " {
		t.Errorf("unexpected row 0: %q", got)
	}
	if got := screen.row(1); got != "there     " {
		t.Errorf("unexpected row 1: %q", got)
	}

	if screen.cursorX != 5 || screen.cursorY != 1 {
		t.Errorf("expected cursor at (5, 1); got (%d, %d)", screen.cursorX, screen.cursorY)
	}
}
