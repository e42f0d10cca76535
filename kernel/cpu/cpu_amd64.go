package cpu

var (
	// portWriteByteFn is mocked by tests.
	portWriteByteFn = PortWriteByte
)

// EnableInterrupts enables interrupt handling.
func EnableInterrupts()

// DisableInterrupts disables interrupt handling.
func DisableInterrupts()

// InterruptsEnabled returns true if the interrupt flag (RFLAGS.IF) is set.
func InterruptsEnabled() bool

// Halt stops instruction execution until the next interrupt arrives.
func Halt()

// EnableInterruptsAndHalt atomically enables interrupts and halts the CPU. The
// STI instruction delays interrupt delivery until after the following
// instruction, so an interrupt that becomes pending between the two cannot be
// missed.
func EnableInterruptsAndHalt()

// Breakpoint raises a breakpoint exception (INT3).
func Breakpoint()

// PortWriteByte writes a uint8 value to the requested port.
func PortWriteByte(port uint16, val uint8)

// PortReadByte reads a uint8 value from the requested port.
func PortReadByte(port uint16) uint8

// IOWait gives slow devices (e.g. the legacy PICs) time to process a command
// by writing to an unused port.
func IOWait() {
	portWriteByteFn(0x80, 0)
}
