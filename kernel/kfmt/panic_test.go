package kfmt

import (
	"bytes"
	"errors"
	"testing"
	"vertexos/kernel"
	"vertexos/kernel/cpu"
)

// errHalted is raised by the mocked halt function to unwind out of the halt
// loop once it has been entered haltLimit times.
var errHalted = errors.New("cpu halted")

const haltLimit = 3

// runPanic invokes Panic and returns once the mocked halt function unwinds.
func runPanic(t *testing.T, arg interface{}) {
	defer func() {
		if err := recover(); err != nil && err != errHalted {
			t.Fatalf("expected Panic to stay in the halt loop; recovered %v", err)
		}
	}()

	Panic(arg)
	t.Fatal("expected Panic not to return")
}

type mockFaultScreen struct {
	bytes.Buffer
	repainted bool
}

func (s *mockFaultScreen) ShowFaultScreen() {
	s.Reset()
	s.repainted = true
}

func TestPanic(t *testing.T) {
	defer func() {
		cpuHaltFn = cpu.Halt
		cpuDisableInterruptsFn = cpu.DisableInterrupts
		outputSink = nil
	}()

	var (
		halts       int
		intDisabled bool
	)
	cpuHaltFn = func() {
		if !intDisabled {
			t.Error("expected interrupts to be disabled before halting")
		}
		if halts++; halts == haltLimit {
			panic(errHalted)
		}
	}
	cpuDisableInterruptsFn = func() {
		intDisabled = true
	}

	specs := []struct {
		descr string
		arg   interface{}
		exp   string
	}{
		{
			"with *kernel.Error",
			&kernel.Error{Module: "irq", Message: "EXCEPTION: DOUBLE FAULT"},
			"\n-----------------------------------\n[irq] unrecoverable error: EXCEPTION: DOUBLE FAULT\n*** kernel panic: system halted ***\n-----------------------------------\n",
		},
		{
			"with error",
			errors.New("go error"),
			"\n-----------------------------------\n[rt] unrecoverable error: go error\n*** kernel panic: system halted ***\n-----------------------------------\n",
		},
		{
			"with string",
			"assertion left == right failed",
			"\n-----------------------------------\n[rt] unrecoverable error: assertion left == right failed\n*** kernel panic: system halted ***\n-----------------------------------\n",
		},
		{
			"without error",
			nil,
			"\n-----------------------------------\n*** kernel panic: system halted ***\n-----------------------------------\n",
		},
	}

	for _, spec := range specs {
		t.Run(spec.descr, func(t *testing.T) {
			halts, intDisabled = 0, false
			screen := &mockFaultScreen{}
			screen.WriteString("> previous output")
			SetOutputSink(screen)

			runPanic(t, spec.arg)

			if !screen.repainted {
				t.Fatal("expected Panic to repaint the fault screen")
			}

			if got := screen.String(); got != spec.exp {
				t.Fatalf("expected to get:\n%q\ngot:\n%q", spec.exp, got)
			}

			if halts != haltLimit {
				t.Fatalf("expected Panic to keep halting the CPU; halted %d times", halts)
			}
		})
	}
}

func TestPanicWithoutFaultScreen(t *testing.T) {
	defer func() {
		cpuHaltFn = cpu.Halt
		cpuDisableInterruptsFn = cpu.DisableInterrupts
		outputSink = nil
	}()

	cpuHaltFn = func() { panic(errHalted) }
	cpuDisableInterruptsFn = func() {}

	var buf bytes.Buffer
	SetOutputSink(&buf)

	runPanic(t, &kernel.Error{Module: "test", Message: "panic test"})

	exp := "\n-----------------------------------\n[test] unrecoverable error: panic test\n*** kernel panic: system halted ***\n-----------------------------------\n"
	if got := buf.String(); got != exp {
		t.Fatalf("expected to get:\n%q\ngot:\n%q", exp, got)
	}
}
