package irq

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"vertexos/kernel"
	"vertexos/kernel/cpu"
	"vertexos/kernel/gate"
	"vertexos/kernel/input"
	"vertexos/kernel/kfmt"
)

type portWrite struct {
	port uint16
	val  uint8
}

// mockPorts records port writes and serves port reads from a map.
func mockPorts() (*[]portWrite, map[uint16]uint8) {
	var writes []portWrite
	reads := make(map[uint16]uint8)

	portWriteByteFn = func(port uint16, val uint8) {
		writes = append(writes, portWrite{port, val})
	}
	portReadByteFn = func(port uint16) uint8 {
		return reads[port]
	}
	ioWaitFn = func() {}

	return &writes, reads
}

func resetIRQ() {
	portWriteByteFn = cpu.PortWriteByte
	portReadByteFn = cpu.PortReadByte
	ioWaitFn = cpu.IOWait
	gateInitFn = gate.Init
	handleInterruptFn = gate.HandleInterrupt
	enableInterruptsFn = cpu.EnableInterrupts
	disableInterruptsFn = cpu.DisableInterrupts
	panicFn = kfmt.Panic
	state = Unconfigured
	keyboardStream = nil
}

func TestRemap(t *testing.T) {
	defer resetIRQ()
	writes, reads := mockPorts()
	reads[pic1Data] = 0xb8
	reads[pic2Data] = 0x8e

	PICs.Remap()

	exp := []portWrite{
		{pic1Command, icw1Init},
		{pic2Command, icw1Init},
		{pic1Data, 32},
		{pic2Data, 40},
		{pic1Data, 4},
		{pic2Data, 2},
		{pic1Data, icw4Mode8086},
		{pic2Data, icw4Mode8086},
		{pic1Data, 0xb8},
		{pic2Data, 0x8e},
	}

	if !reflect.DeepEqual(*writes, exp) {
		t.Fatalf("expected port writes:\n%v\ngot:\n%v", exp, *writes)
	}
}

func TestEndOfInterrupt(t *testing.T) {
	defer resetIRQ()

	specs := []struct {
		vector uint8
		exp    []portWrite
	}{
		{32, []portWrite{{pic1Command, cmdEndOfInterrupt}}},
		{39, []portWrite{{pic1Command, cmdEndOfInterrupt}}},
		{40, []portWrite{{pic2Command, cmdEndOfInterrupt}, {pic1Command, cmdEndOfInterrupt}}},
		{47, []portWrite{{pic2Command, cmdEndOfInterrupt}, {pic1Command, cmdEndOfInterrupt}}},
		{3, nil},
		{48, nil},
	}

	for specIndex, spec := range specs {
		writes, _ := mockPorts()
		PICs.EndOfInterrupt(spec.vector)

		if !reflect.DeepEqual(*writes, spec.exp) {
			t.Errorf("[spec %d] expected port writes %v; got %v", specIndex, spec.exp, *writes)
		}
	}
}

func TestInit(t *testing.T) {
	defer resetIRQ()
	mockPorts()

	type registration struct {
		ist     uint8
		handler func(*gate.Registers)
	}
	registered := make(map[gate.InterruptNumber]registration)

	var gateInitCalls, disableCalls, enableCalls int
	gateInitFn = func() *kernel.Error {
		gateInitCalls++
		return nil
	}
	handleInterruptFn = func(num gate.InterruptNumber, ist uint8, handler func(*gate.Registers)) *kernel.Error {
		registered[num] = registration{ist, handler}
		return nil
	}
	disableInterruptsFn = func() { disableCalls++ }
	enableInterruptsFn = func() { enableCalls++ }

	if err := Enable(); err != errNotConfigured {
		t.Fatalf("expected errNotConfigured; got %v", err)
	}

	if State() != Unconfigured {
		t.Fatalf("expected state to be %s; got %s", Unconfigured, State())
	}

	stream := input.NewStream(input.DefaultCapacity)
	if err := Init(stream); err != nil {
		t.Fatal(err)
	}

	if State() != TablesLoaded {
		t.Fatalf("expected state to be %s; got %s", TablesLoaded, State())
	}

	if gateInitCalls != 1 || disableCalls != 1 || enableCalls != 0 {
		t.Fatalf("expected gate.Init and DisableInterrupts to be called once and EnableInterrupts not at all; got %d, %d, %d", gateInitCalls, disableCalls, enableCalls)
	}

	for _, num := range []gate.InterruptNumber{gate.Breakpoint, gate.DoubleFault, gate.DivideByZero, gate.InvalidOpcode, gate.GPFException, gate.PageFaultException, TimerVector, KeyboardVector} {
		reg, ok := registered[num]
		if !ok || reg.handler == nil {
			t.Errorf("expected a handler to be registered for interrupt %d", num)
			continue
		}

		expIST := uint8(0)
		if num == gate.DoubleFault {
			expIST = gate.DoubleFaultIST
		}
		if reg.ist != expIST {
			t.Errorf("expected interrupt %d to use IST %d; got %d", num, expIST, reg.ist)
		}
	}

	if err := Init(stream); err != errAlreadyConfigured {
		t.Fatalf("expected errAlreadyConfigured; got %v", err)
	}

	if err := Enable(); err != nil {
		t.Fatal(err)
	}

	if State() != Active || enableCalls != 1 {
		t.Fatalf("expected state %s after one EnableInterrupts call; got %s after %d calls", Active, State(), enableCalls)
	}

	// Enabling twice is a no-op.
	if err := Enable(); err != nil || enableCalls != 1 {
		t.Fatalf("expected second Enable to be a no-op; got err %v, %d calls", err, enableCalls)
	}
}

func TestInitPropagatesErrors(t *testing.T) {
	defer resetIRQ()
	mockPorts()
	disableInterruptsFn = func() {}

	expErr := &kernel.Error{Module: "test", Message: "gate failure"}
	gateInitFn = func() *kernel.Error { return expErr }

	if err := Init(nil); err != expErr {
		t.Fatalf("expected %v; got %v", expErr, err)
	}

	if State() != Unconfigured {
		t.Fatalf("expected state to remain %s; got %s", Unconfigured, State())
	}

	gateInitFn = func() *kernel.Error { return nil }
	handleInterruptFn = func(gate.InterruptNumber, uint8, func(*gate.Registers)) *kernel.Error { return expErr }

	if err := Init(nil); err != expErr {
		t.Fatalf("expected %v; got %v", expErr, err)
	}
}

func TestKeyboardHandler(t *testing.T) {
	defer resetIRQ()
	writes, reads := mockPorts()

	keyboardStream = input.NewStream(input.DefaultCapacity)
	for _, scancode := range []uint8{0x1e, 0x9e, 0x30} {
		reads[keyboardDataPort] = scancode
		keyboardHandler(&gate.Registers{Vector: uint64(KeyboardVector)})
	}

	if exp, got := 3, keyboardStream.Len(); got != exp {
		t.Fatalf("expected %d buffered scancodes; got %d", exp, got)
	}

	for _, exp := range []uint8{0x1e, 0x9e, 0x30} {
		if got, ok := keyboardStream.PollNext(nil); !ok || got != exp {
			t.Fatalf("expected scancode %x; got %x", exp, got)
		}
	}

	eoi := portWrite{pic1Command, cmdEndOfInterrupt}
	if exp := []portWrite{eoi, eoi, eoi}; !reflect.DeepEqual(*writes, exp) {
		t.Fatalf("expected one EOI per interrupt; got %v", *writes)
	}
}

func TestTimerHandler(t *testing.T) {
	defer resetIRQ()
	writes, _ := mockPorts()

	timerHandler(&gate.Registers{Vector: uint64(TimerVector)})

	if exp := []portWrite{{pic1Command, cmdEndOfInterrupt}}; !reflect.DeepEqual(*writes, exp) {
		t.Fatalf("expected port writes %v; got %v", exp, *writes)
	}
}

func TestExceptionHandlers(t *testing.T) {
	defer func() {
		resetIRQ()
		kfmt.SetOutputSink(nil)
	}()

	var buf bytes.Buffer
	kfmt.SetOutputSink(&buf)

	var panicErr interface{}
	panicFn = func(e interface{}) { panicErr = e }

	specs := []struct {
		handler   func(*gate.Registers)
		regs      gate.Registers
		expOutput string
		expPanic  *kernel.Error
	}{
		{breakpointHandler, gate.Registers{Vector: 3, RIP: 0x1234}, "EXCEPTION: BREAKPOINT\n", nil},
		{doubleFaultHandler, gate.Registers{Vector: 8}, "EXCEPTION: DOUBLE FAULT (code 0)\n", errDoubleFault},
		{fatalFaultHandler, gate.Registers{Vector: 14, Info: 2}, "EXCEPTION: PAGE FAULT (code 2)\n", errCPUFault},
		{fatalFaultHandler, gate.Registers{Vector: 13}, "EXCEPTION: GENERAL PROTECTION FAULT (code 0)\n", errCPUFault},
		{fatalFaultHandler, gate.Registers{Vector: 0}, "EXCEPTION: DIVIDE ERROR (code 0)\n", errCPUFault},
		{fatalFaultHandler, gate.Registers{Vector: 6}, "EXCEPTION: INVALID OPCODE (code 0)\n", errCPUFault},
	}

	for specIndex, spec := range specs {
		buf.Reset()
		panicErr = nil

		spec.handler(&spec.regs)

		if !strings.HasPrefix(buf.String(), spec.expOutput) {
			t.Errorf("[spec %d] expected output to start with %q; got %q", specIndex, spec.expOutput, buf.String())
		}

		if !strings.Contains(buf.String(), "RIP = ") {
			t.Errorf("[spec %d] expected a register dump; got %q", specIndex, buf.String())
		}

		if spec.expPanic == nil {
			if panicErr != nil {
				t.Errorf("[spec %d] expected handler to resume execution; got panic %v", specIndex, panicErr)
			}
			continue
		}

		if err, ok := panicErr.(*kernel.Error); !ok || err != spec.expPanic {
			t.Errorf("[spec %d] expected panic with %v; got %v", specIndex, spec.expPanic, panicErr)
		}
	}
}
