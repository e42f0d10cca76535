package kfmt

import (
	"vertexos/kernel"
	"vertexos/kernel/cpu"
)

var (
	// The following functions are mocked by tests.
	cpuHaltFn              = cpu.Halt
	cpuDisableInterruptsFn = cpu.DisableInterrupts

	errRuntimePanic = &kernel.Error{Module: "rt", Message: "unknown cause"}
)

// FaultScreen is implemented by output sinks that can repaint the display as
// a diagnostic panel before the panic banner is printed.
type FaultScreen interface {
	ShowFaultScreen()
}

// Panic outputs the supplied error (if not nil) to the console and halts the
// CPU with interrupts disabled so no further input is accepted. Calls to Panic
// never return. Panic also works as a redirection target for calls to panic()
// (resolved via runtime.gopanic) so a failed assertion anywhere in the kernel
// ends up here.
//
//go:redirect-from runtime.gopanic
func Panic(e interface{}) {
	var err *kernel.Error

	switch t := e.(type) {
	case *kernel.Error:
		err = t
	case string:
		panicString(t)
		return
	case error:
		errRuntimePanic.Message = t.Error()
		err = errRuntimePanic
	}

	cpuDisableInterruptsFn()

	if screen, ok := outputSink.(FaultScreen); ok {
		screen.ShowFaultScreen()
	}

	Printf("\n-----------------------------------\n")
	if err != nil {
		Printf("[%s] unrecoverable error: %s\n", err.Module, err.Message)
	}
	Printf("*** kernel panic: system halted ***")
	Printf("\n-----------------------------------\n")

	// Non-maskable interrupts still wake a halted CPU.
	for {
		cpuHaltFn()
	}
}

// panicString serves as a redirect target for runtime.throw
//
//go:redirect-from runtime.throw
func panicString(msg string) {
	errRuntimePanic.Message = msg
	Panic(errRuntimePanic)
}
