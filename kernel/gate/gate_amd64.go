// Package gate sets up the CPU descriptor tables and routes exceptions and
// hardware interrupts to Go handlers.
package gate

import (
	"io"
	"unsafe"
	"vertexos/kernel"
	"vertexos/kernel/kfmt"
	"vertexos/kernel/mem"
)

// Registers contains a snapshot of all register values when an exception or
// interrupt occurs. The field order matches the layout of the stack frame
// built by the gate entry trampolines.
type Registers struct {
	RAX uint64
	RBX uint64
	RCX uint64
	RDX uint64
	RSI uint64
	RDI uint64
	RBP uint64
	R8  uint64
	R9  uint64
	R10 uint64
	R11 uint64
	R12 uint64
	R13 uint64
	R14 uint64
	R15 uint64

	// Vector is the interrupt number that triggered the gate.
	Vector uint64

	// Info contains the exception code for exceptions that push one and
	// 0 for everything else.
	Info uint64

	// The return frame used by IRETQ
	RIP    uint64
	CS     uint64
	RFlags uint64
	RSP    uint64
	SS     uint64
}

// DumpTo outputs the register contents to w.
func (r *Registers) DumpTo(w io.Writer) {
	kfmt.Fprintf(w, "RAX = %16x RBX = %16x\n", r.RAX, r.RBX)
	kfmt.Fprintf(w, "RCX = %16x RDX = %16x\n", r.RCX, r.RDX)
	kfmt.Fprintf(w, "RSI = %16x RDI = %16x\n", r.RSI, r.RDI)
	kfmt.Fprintf(w, "RBP = %16x\n", r.RBP)
	kfmt.Fprintf(w, "R8  = %16x R9  = %16x\n", r.R8, r.R9)
	kfmt.Fprintf(w, "R10 = %16x R11 = %16x\n", r.R10, r.R11)
	kfmt.Fprintf(w, "R12 = %16x R13 = %16x\n", r.R12, r.R13)
	kfmt.Fprintf(w, "R14 = %16x R15 = %16x\n", r.R14, r.R15)
	kfmt.Fprintf(w, "\n")
	kfmt.Fprintf(w, "INT = %16x ERR = %16x\n", r.Vector, r.Info)
	kfmt.Fprintf(w, "RIP = %16x CS  = %16x\n", r.RIP, r.CS)
	kfmt.Fprintf(w, "RSP = %16x SS  = %16x\n", r.RSP, r.SS)
	kfmt.Fprintf(w, "RFL = %16x\n", r.RFlags)
}

// InterruptNumber describes an x86 interrupt/exception/trap slot.
type InterruptNumber uint8

const (
	// DivideByZero occurs when dividing any number by 0 using the DIV or
	// IDIV instruction.
	DivideByZero = InterruptNumber(0)

	// Breakpoint occurs when the CPU executes an INT3 instruction.
	Breakpoint = InterruptNumber(3)

	// InvalidOpcode occurs when the CPU attempts to execute an invalid or
	// undefined instruction opcode.
	InvalidOpcode = InterruptNumber(6)

	// DoubleFault occurs when an unhandled exception occurs or when an
	// exception occurs within a running exception handler.
	DoubleFault = InterruptNumber(8)

	// GPFException occurs when a general protection fault occurs.
	GPFException = InterruptNumber(13)

	// PageFaultException occurs when a page directory table (PDT) or one
	// of its entries is not present or when a privilege and/or RW
	// protection check fails.
	PageFaultException = InterruptNumber(14)
)

var (
	// The following functions are mocked by tests.
	loadGDTFn        = loadGDT
	reloadSegmentsFn = reloadSegments
	loadTaskRegFn    = loadTaskRegister
	loadIDTFn        = loadIDT
	gateEntriesFn    = gateEntries
	panicFn          = kfmt.Panic

	errNoGateEntry         = &kernel.Error{Module: "gate", Message: "no entry trampoline for interrupt"}
	errUnhandledInterrupt  = &kernel.Error{Module: "gate", Message: "unhandled interrupt"}
	errTablesNotLoaded     = &kernel.Error{Module: "gate", Message: "descriptor tables have not been loaded"}
	errTablesAlreadyLoaded = &kernel.Error{Module: "gate", Message: "descriptor tables have already been loaded"}

	// entryAddr holds the address of the entry trampoline for each
	// interrupt number or 0 if none exists.
	entryAddr [idtEntries]uintptr

	// handlers holds the Go handler registered for each interrupt number.
	handlers [idtEntries]func(*Registers)

	tablesLoaded bool
)

// Init builds the GDT, the TSS with its double fault stack and an IDT where
// every gate is marked as non-present and loads them into the CPU. Init must
// be invoked exactly once, before any call to HandleInterrupt, while
// interrupts are disabled.
func Init() *kernel.Error {
	if tablesLoaded {
		return errTablesAlreadyLoaded
	}

	gateEntriesFn(&entryAddr)

	setupTSS()
	setupGDT()
	loadGDTFn(&gdtPtr)
	reloadSegmentsFn(KernelCodeSelector, KernelDataSelector)
	loadTaskRegFn(TSSSelector)

	mem.Memset(uintptr(unsafe.Pointer(&idt)), 0, mem.Size(unsafe.Sizeof(idt)))
	encodePointer(&idtPtr, uintptr(unsafe.Pointer(&idt)), uint16(len(idt)*16-1))
	loadIDTFn(&idtPtr)

	tablesLoaded = true
	return nil
}

// HandleInterrupt ensures that the provided handler will be invoked when a
// particular interrupt number occurs. The value of the istOffset argument
// specifies the 1-based slot of the interrupt stack table whose stack the CPU
// switches to before invoking the handler (if 0 then IST is not used).
//
// Handlers run with interrupts disabled and must not block. A handler that
// returns resumes the interrupted code; changes made to the supplied
// Registers are applied when the CPU returns from the interrupt.
func HandleInterrupt(intNumber InterruptNumber, istOffset uint8, handler func(*Registers)) *kernel.Error {
	if !tablesLoaded {
		return errTablesNotLoaded
	}

	addr := entryAddr[intNumber]
	if addr == 0 {
		return errNoGateEntry
	}

	handlers[intNumber] = handler
	idt[intNumber] = encodeInterruptGate(addr, KernelCodeSelector, istOffset)
	return nil
}

// dispatchInterrupt is invoked by the interrupt gate entrypoints to route
// an incoming interrupt to the registered handler. Interrupts without a
// handler are fatal.
//
//go:nosplit
func dispatchInterrupt(regs *Registers) {
	if handler := handlers[uint8(regs.Vector)]; handler != nil {
		handler(regs)
		return
	}

	kfmt.Printf("[gate] unhandled interrupt %d\n", regs.Vector)
	regs.DumpTo(kfmt.GetOutputSink())
	panicFn(errUnhandledInterrupt)
}

// loadGDT loads the GDT pointed to by ptr into the CPU.
func loadGDT(ptr *descriptorPointer)

// reloadSegments reloads CS via a far return and DS, ES and SS with the
// supplied selectors. FS and GS are left untouched.
func reloadSegments(codeSel, dataSel uint16)

// loadTaskRegister loads the task register with the supplied TSS selector.
func loadTaskRegister(sel uint16)

// farReturn executes a far return (LRETQ); it is only called from
// reloadSegments.
func farReturn()

// loadIDT loads the IDT pointed to by ptr into the CPU.
func loadIDT(ptr *descriptorPointer)

// gateEntries stores the address of the entry trampoline for each interrupt
// number that has one into table.
func gateEntries(table *[idtEntries]uintptr)

// gateCommon and the gateEntry trampolines are reached only from assembly;
// they are declared here so the linker has their argument metadata.
func gateCommon()
func gateEntry0()
func gateEntry1()
func gateEntry2()
func gateEntry3()
func gateEntry4()
func gateEntry5()
func gateEntry6()
func gateEntry7()
func gateEntry8()
func gateEntry9()
func gateEntry10()
func gateEntry11()
func gateEntry12()
func gateEntry13()
func gateEntry14()
func gateEntry15()
func gateEntry16()
func gateEntry17()
func gateEntry18()
func gateEntry19()
func gateEntry20()
func gateEntry21()
func gateEntry32()
func gateEntry33()
func gateEntry34()
func gateEntry35()
func gateEntry36()
func gateEntry37()
func gateEntry38()
func gateEntry39()
func gateEntry40()
func gateEntry41()
func gateEntry42()
func gateEntry43()
func gateEntry44()
func gateEntry45()
func gateEntry46()
func gateEntry47()
