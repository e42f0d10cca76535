// Package kmain contains the kernel entry point and the boot sequence.
package kmain

import (
	"vertexos/kernel"
	"vertexos/kernel/cpu"
	"vertexos/kernel/hal"
	"vertexos/kernel/input"
	"vertexos/kernel/irq"
	"vertexos/kernel/kfmt"
	"vertexos/kernel/sync"
)

var (
	errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}
)

// Kmain is the only Go symbol that is visible (exported) from the rt0
// initialization code. This function is invoked by the rt0 assembly code
// after setting up a minimal g0 struct that allows Go code to use the stack
// allocated by the assembly code. The display is expected to be in 80x25 text
// mode with its framebuffer identity mapped.
//
// Kmain is not expected to return. If it does, the rt0 code will halt the CPU.
//
//go:noinline
func Kmain() {
	if err := hal.DetectHardware(hal.DefaultProbes()...); err != nil {
		panic(err)
	}

	cons := hal.NewConsole(hal.ActiveTTY(), &sync.IRQSpinlock{})
	cons.Clear()
	kfmt.SetOutputSink(cons)

	stream := input.NewStream(input.DefaultCapacity)
	if err := irq.Init(stream); err != nil {
		panic(err)
	}

	sys, err := NewSystem(DefaultConfig(), cons, stream)
	if err != nil {
		panic(err)
	}

	sys.Commands.Register("int3", cpu.Breakpoint)

	sys.Greet()

	if err := irq.Enable(); err != nil {
		panic(err)
	}

	sys.Executor.Run()

	// Use kfmt.Panic instead of panic to prevent the compiler from
	// treating kfmt.Panic as dead-code and eliminating it.
	kfmt.Panic(errKmainReturned)
}
