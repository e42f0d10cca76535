// Command vtsim runs the kernel shell, command registries and executor in a
// terminal so they can be exercised without booting the kernel.
//
// Usage:
//
//	vtsim [-config sim.json] [-script commands.lua] [-plain]
//
// Esc or Ctrl-C exits full screen mode. In plain mode the simulator reads
// stdin until EOF.
package main

import (
	"flag"
	"fmt"
	"os"
	"vertexos/device/tty"
	"vertexos/kernel/hal"
	"vertexos/kernel/kfmt"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"
)

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[vtsim] error: %s\n", err.Error())
	os.Exit(1)
}

func main() {
	var (
		configPath = flag.String("config", "", "path to a JSON config file")
		scriptPath = flag.String("script", "", "Lua script that registers extra commands and tests")
		plain      = flag.Bool("plain", false, "use line mode on stdin/stdout")
	)
	flag.Parse()

	cfg := DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = LoadConfig(*configPath); err != nil {
			exit(err)
		}
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		*plain = true
	}

	var err error
	if *plain {
		err = runPlain(cfg, os.Stdin, os.Stdout, *scriptPath)
	} else {
		err = runScreen(cfg, *scriptPath)
	}

	if err != nil {
		exit(err)
	}
}

// runScreen renders the VT onto the terminal and translates key events into
// scancodes. It returns when the user quits.
func runScreen(cfg Config, script string) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err = screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	dev := newScreenDevice(screen, cfg.Width, cfg.Height)
	for index, rgba := range cfg.Palette {
		dev.SetPaletteColor(index, rgba)
	}

	vt := tty.NewVT(tty.DefaultTabWidth, tty.DefaultScrollback)
	vt.AttachTo(dev)
	vt.SetState(tty.StateActive)

	cons := hal.NewConsole(vt, &mutexLocker{})
	cons.Clear()
	kfmt.SetOutputSink(cons)

	m, err := newMachine(cfg, cons)
	if err != nil {
		return err
	}

	if script != "" {
		host := newScriptHost(cons, m.sys.Commands, m.sys.Tests)
		defer host.Close()
		if err = host.RunFile(script); err != nil {
			return err
		}
	}

	quit := make(chan struct{})
	go func() {
		var codes []byte
		for {
			switch ev := screen.PollEvent().(type) {
			case nil:
				return
			case *tcell.EventKey:
				if isQuitKey(ev) {
					close(quit)
					return
				}

				var ok bool
				if codes, ok = appendKeyScancodes(codes[:0], ev); ok {
					m.feed(codes)
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		}
	}()

	m.sys.Greet()
	for {
		if fault := m.step(); fault != nil {
			m.reportFault(fault)
			screen.Show()
			<-quit
			return nil
		}
		screen.Show()

		select {
		case <-m.kick:
		case <-quit:
			return nil
		}
	}
}
