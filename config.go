// Package cusp configuration constants
package cusp

// Element and index storage widths (in bytes)
const (
	// ElemSize is the width of a stored value (float32)
	ElemSize = 4

	// IndexSize is the width of a stored index (int32)
	IndexSize = 4
)

// Buffer sizing parameters
const (
	// DefaultNzReserve is the non-zero reservation used when the caller
	// does not supply one
	DefaultNzReserve = 10000

	// MemoryAlignment is the allocation alignment in bytes (cache line)
	MemoryAlignment = 64

	// defaultSystemMemory is reported when the platform memory probe is
	// unavailable
	defaultSystemMemory = 16 * 1024 * 1024 * 1024
)

// Numerical parameters
const (
	// DefaultEqualityThreshold is the tolerance used by the equality checks
	// when the caller passes no explicit threshold
	DefaultEqualityThreshold = 1e-8

	// AdagradFloor keeps the Adagrad family of update rules away from a
	// division by zero
	AdagradFloor = 1e-16
)

// Index sentinels
const (
	// IndexNotAssigned marks a column/row with no storage slot in the
	// block formats' major index array
	IndexNotAssigned int32 = -1
)

// VerifyNzCountUpdates re-fetches the non-zero count from device memory
// on every UpdateCachedNzCount call and compares it against the supplied
// value. The fetch is a device synchronization barrier, which is exactly
// the cost the cache exists to avoid, so verification is off by default.
var VerifyNzCountUpdates = false
