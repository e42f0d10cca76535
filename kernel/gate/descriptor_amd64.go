package gate

import (
	"unsafe"
	"vertexos/kernel/mem"
)

const (
	// KernelCodeSelector selects the 64-bit kernel code segment.
	KernelCodeSelector = uint16(0x08)

	// KernelDataSelector selects the kernel data segment.
	KernelDataSelector = uint16(0x10)

	// TSSSelector selects the task state segment descriptor.
	TSSSelector = uint16(0x18)

	// DoubleFaultIST is the 1-based interrupt stack table slot that holds
	// the double fault stack.
	DoubleFaultIST = uint8(1)

	// DoubleFaultStackSize is the size of the stack the CPU switches to
	// when a double fault occurs.
	DoubleFaultStackSize = 5 * mem.PageSize

	idtEntries = 256

	// 64-bit TSS size; the I/O permission bitmap base points past its end
	// so no I/O bitmap is present.
	tssSize = 104

	kernelCodeDescriptor = uint64(0x00af9a000000ffff)
	kernelDataDescriptor = uint64(0x00cf92000000ffff)

	// present, DPL 0, 64-bit available TSS
	tssAccessByte = 0x89

	// present, DPL 0, 64-bit interrupt gate
	interruptGateType = 0x8e
)

// descriptorPointer is the 10-byte operand of the LGDT and LIDT
// instructions: a 16-bit limit followed by a 64-bit base address.
type descriptorPointer [5]uint16

var (
	gdt    [5]uint64
	gdtPtr descriptorPointer

	// tss is stored as 32-bit words since its 64-bit fields are not
	// naturally aligned.
	tss [tssSize / 4]uint32

	idt    [idtEntries][2]uint64
	idtPtr descriptorPointer

	doubleFaultStack [DoubleFaultStackSize]byte
)

// setupTSS points the double fault IST slot to the top of the double fault
// stack.
func setupTSS() {
	mem.Memset(uintptr(unsafe.Pointer(&tss)), 0, mem.Size(unsafe.Sizeof(tss)))

	top := (uintptr(unsafe.Pointer(&doubleFaultStack)) + uintptr(DoubleFaultStackSize)) &^ 15
	setIST(&tss, DoubleFaultIST, uint64(top))

	// The I/O map base lives in the upper 16 bits of the last word.
	tss[len(tss)-1] = tssSize << 16
}

// setIST stores addr into the 1-based IST slot of t. The IST array starts at
// byte offset 36 of the TSS.
func setIST(t *[tssSize / 4]uint32, slot uint8, addr uint64) {
	word := 9 + 2*int(slot-1)
	t[word] = uint32(addr)
	t[word+1] = uint32(addr >> 32)
}

func setupGDT() {
	gdt[0] = 0
	gdt[1] = kernelCodeDescriptor
	gdt[2] = kernelDataDescriptor
	gdt[3], gdt[4] = encodeTSSDescriptor(uintptr(unsafe.Pointer(&tss)), tssSize-1)
	encodePointer(&gdtPtr, uintptr(unsafe.Pointer(&gdt)), uint16(len(gdt)*8-1))
}

// encodeTSSDescriptor returns the two GDT slots describing a 64-bit TSS
// located at base.
func encodeTSSDescriptor(base uintptr, limit uint32) (uint64, uint64) {
	b := uint64(base)
	low := uint64(limit&0xffff) |
		(b&0xffffff)<<16 |
		uint64(tssAccessByte)<<40 |
		uint64((limit>>16)&0xf)<<48 |
		((b>>24)&0xff)<<56

	return low, b >> 32
}

// encodeInterruptGate returns a present IDT entry that transfers control to
// handlerAddr using the supplied code selector and 1-based IST slot.
func encodeInterruptGate(handlerAddr uintptr, codeSel uint16, ist uint8) [2]uint64 {
	addr := uint64(handlerAddr)
	low := addr&0xffff |
		uint64(codeSel)<<16 |
		uint64(ist&0x7)<<32 |
		uint64(interruptGateType)<<40 |
		((addr>>16)&0xffff)<<48

	return [2]uint64{low, addr >> 32}
}

func encodePointer(p *descriptorPointer, base uintptr, limit uint16) {
	p[0] = limit
	for i := 1; i < len(p); i++ {
		p[i] = uint16(base >> (16 * uint(i-1)))
	}
}
