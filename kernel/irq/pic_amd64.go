package irq

import "vertexos/kernel/cpu"

const (
	// PIC1Offset is the vector that IRQ0 is remapped to.
	PIC1Offset = uint8(32)

	// PIC2Offset is the vector that IRQ8 is remapped to.
	PIC2Offset = PIC1Offset + 8

	pic1Command = uint16(0x20)
	pic1Data    = uint16(0x21)
	pic2Command = uint16(0xa0)
	pic2Data    = uint16(0xa1)

	// ICW1: edge triggered, cascade mode, ICW4 follows.
	icw1Init = uint8(0x11)

	// ICW3 values: the slave is connected to IRQ2 of the master.
	icw3Master = uint8(1 << 2)
	icw3Slave  = uint8(2)

	icw4Mode8086 = uint8(0x01)

	cmdEndOfInterrupt = uint8(0x20)
)

var (
	// The following functions are mocked by tests.
	portWriteByteFn = cpu.PortWriteByte
	portReadByteFn  = cpu.PortReadByte
	ioWaitFn        = cpu.IOWait
)

// ChainedPICs drives a master/slave pair of 8259 programmable interrupt
// controllers.
type ChainedPICs struct {
	masterOffset uint8
	slaveOffset  uint8
}

// PICs is the PIC pair found on every PC compatible machine. IRQs 0-7 are
// delivered at vectors 32-39 and IRQs 8-15 at vectors 40-47.
var PICs = &ChainedPICs{masterOffset: PIC1Offset, slaveOffset: PIC2Offset}

// Remap reprograms both controllers so that hardware interrupts do not
// collide with CPU exception vectors. The interrupt masks in effect before
// the call are preserved.
func (p *ChainedPICs) Remap() {
	mask1 := portReadByteFn(pic1Data)
	mask2 := portReadByteFn(pic2Data)

	p.write(pic1Command, icw1Init)
	p.write(pic2Command, icw1Init)
	p.write(pic1Data, p.masterOffset)
	p.write(pic2Data, p.slaveOffset)
	p.write(pic1Data, icw3Master)
	p.write(pic2Data, icw3Slave)
	p.write(pic1Data, icw4Mode8086)
	p.write(pic2Data, icw4Mode8086)

	portWriteByteFn(pic1Data, mask1)
	portWriteByteFn(pic2Data, mask2)
}

// Handles returns true if vector is delivered by one of the two controllers.
func (p *ChainedPICs) Handles(vector uint8) bool {
	return (vector >= p.masterOffset && vector < p.masterOffset+8) ||
		(vector >= p.slaveOffset && vector < p.slaveOffset+8)
}

// EndOfInterrupt acknowledges the interrupt delivered at vector. Interrupts
// raised by the slave controller must be acknowledged by both controllers.
func (p *ChainedPICs) EndOfInterrupt(vector uint8) {
	if !p.Handles(vector) {
		return
	}

	if vector >= p.slaveOffset && vector < p.slaveOffset+8 {
		portWriteByteFn(pic2Command, cmdEndOfInterrupt)
	}
	portWriteByteFn(pic1Command, cmdEndOfInterrupt)
}

func (p *ChainedPICs) write(port uint16, val uint8) {
	portWriteByteFn(port, val)
	ioWaitFn()
}
