// Package mem defines memory size units and raw memory helpers used while
// laying out the CPU tables.
package mem

const (
	// PageShift is equal to log2(PageSize).
	PageShift = 12

	// PageSize defines the system's page size in bytes.
	PageSize = Size(1 << PageShift)
)

// Size represents a memory block size in bytes.
type Size uint64

// Common memory block sizes
const (
	Byte Size = 1
	Kb        = 1024 * Byte
	Mb        = 1024 * Kb
	Gb        = 1024 * Mb
)

// Pages returns the number of pages that are required for storing this size.
func (s Size) Pages() uint32 {
	pageSizeMinus1 := PageSize - 1
	return uint32((s+pageSizeMinus1)&^pageSizeMinus1) >> PageShift
}
