package kernel

// Error describes a kernel error. Kernel errors are declared as package-level
// pointers to Error values; code that runs in interrupt context or before the
// Go allocator is usable cannot call errors.New.
type Error struct {
	// The module where the error occurred.
	Module string

	// The error message
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}
