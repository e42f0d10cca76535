// Package irq installs the exception and hardware interrupt handlers and
// bridges keyboard interrupts to the task world.
package irq

import (
	"vertexos/kernel"
	"vertexos/kernel/cpu"
	"vertexos/kernel/gate"
	"vertexos/kernel/input"
	"vertexos/kernel/kfmt"
)

// InitState describes how far interrupt handling has been configured.
type InitState uint8

const (
	// Unconfigured means that no descriptor tables have been loaded.
	Unconfigured InitState = iota

	// TablesLoaded means that the descriptor tables are loaded, handlers
	// are registered and the PICs are remapped but interrupts are still
	// disabled.
	TablesLoaded

	// Active means that hardware interrupts are being delivered.
	Active
)

// String implements fmt.Stringer for InitState.
func (s InitState) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case TablesLoaded:
		return "tables loaded"
	case Active:
		return "active"
	default:
		return "unknown"
	}
}

const (
	// TimerVector is the vector of the programmable interval timer (IRQ0).
	TimerVector = gate.InterruptNumber(PIC1Offset)

	// KeyboardVector is the vector of the PS/2 keyboard (IRQ1).
	KeyboardVector = gate.InterruptNumber(PIC1Offset + 1)

	keyboardDataPort = uint16(0x60)
)

var (
	// The following functions are mocked by tests.
	gateInitFn          = gate.Init
	handleInterruptFn   = gate.HandleInterrupt
	enableInterruptsFn  = cpu.EnableInterrupts
	disableInterruptsFn = cpu.DisableInterrupts
	panicFn             = kfmt.Panic

	errAlreadyConfigured = &kernel.Error{Module: "irq", Message: "interrupt handling is already configured"}
	errNotConfigured     = &kernel.Error{Module: "irq", Message: "descriptor tables have not been loaded"}
	errDoubleFault       = &kernel.Error{Module: "irq", Message: "EXCEPTION: DOUBLE FAULT"}
	errCPUFault          = &kernel.Error{Module: "irq", Message: "EXCEPTION: unrecoverable CPU fault"}

	state InitState

	keyboardStream *input.Stream
)

// State returns the current interrupt configuration state. The state only
// moves forward: Unconfigured, TablesLoaded, Active.
func State() InitState {
	return state
}

// Init loads the descriptor tables, registers the exception, timer and
// keyboard handlers and remaps the PICs. Scancodes received by the keyboard
// handler are pushed to stream. Interrupts remain disabled until Enable is
// called.
func Init(stream *input.Stream) *kernel.Error {
	if state != Unconfigured {
		return errAlreadyConfigured
	}

	disableInterruptsFn()

	if err := gateInitFn(); err != nil {
		return err
	}

	keyboardStream = stream

	handlers := []struct {
		num     gate.InterruptNumber
		ist     uint8
		handler func(*gate.Registers)
	}{
		{gate.Breakpoint, 0, breakpointHandler},
		{gate.DoubleFault, gate.DoubleFaultIST, doubleFaultHandler},
		{gate.DivideByZero, 0, fatalFaultHandler},
		{gate.InvalidOpcode, 0, fatalFaultHandler},
		{gate.GPFException, 0, fatalFaultHandler},
		{gate.PageFaultException, 0, fatalFaultHandler},
		{TimerVector, 0, timerHandler},
		{KeyboardVector, 0, keyboardHandler},
	}

	for _, h := range handlers {
		if err := handleInterruptFn(h.num, h.ist, h.handler); err != nil {
			return err
		}
	}

	PICs.Remap()

	state = TablesLoaded
	return nil
}

// Enable starts the delivery of hardware interrupts.
func Enable() *kernel.Error {
	switch state {
	case Unconfigured:
		return errNotConfigured
	case Active:
		return nil
	}

	state = Active
	enableInterruptsFn()
	return nil
}

// breakpointHandler reports the breakpoint and resumes execution at the
// instruction following INT3.
func breakpointHandler(regs *gate.Registers) {
	kfmt.Printf("EXCEPTION: BREAKPOINT\n")
	regs.DumpTo(kfmt.GetOutputSink())
}

// doubleFaultHandler runs on the dedicated double fault stack. It never
// returns.
func doubleFaultHandler(regs *gate.Registers) {
	kfmt.Printf("EXCEPTION: DOUBLE FAULT (code %x)\n", regs.Info)
	regs.DumpTo(kfmt.GetOutputSink())
	panicFn(errDoubleFault)
}

func fatalFaultHandler(regs *gate.Registers) {
	kfmt.Printf("EXCEPTION: %s (code %x)\n", faultName(gate.InterruptNumber(regs.Vector)), regs.Info)
	regs.DumpTo(kfmt.GetOutputSink())
	panicFn(errCPUFault)
}

func faultName(num gate.InterruptNumber) string {
	switch num {
	case gate.DivideByZero:
		return "DIVIDE ERROR"
	case gate.InvalidOpcode:
		return "INVALID OPCODE"
	case gate.GPFException:
		return "GENERAL PROTECTION FAULT"
	case gate.PageFaultException:
		return "PAGE FAULT"
	default:
		return "CPU FAULT"
	}
}

func timerHandler(regs *gate.Registers) {
	PICs.EndOfInterrupt(uint8(regs.Vector))
}

// keyboardHandler hands the received scancode over to the keyboard stream.
// The controller does not raise further keyboard interrupts until the data
// port has been read.
func keyboardHandler(regs *gate.Registers) {
	scancode := portReadByteFn(keyboardDataPort)
	if keyboardStream != nil {
		keyboardStream.Push(scancode)
	}
	PICs.EndOfInterrupt(uint8(regs.Vector))
}
