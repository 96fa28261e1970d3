package grid

import "errors"

// Sentinel errors returned by the grid package. Callers match them with
// errors.Is; context is added with fmt.Errorf("...: %w", ErrX).
var (
	// ErrZeroDim is returned when a storage or generator is asked for a
	// zero-dimensional grid.
	ErrZeroDim = errors.New("grid: dimensionality must be > 0")

	// ErrDimMismatch is returned when a point's dimensionality differs from
	// the storage it is inserted into.
	ErrDimMismatch = errors.New("grid: dimension mismatch")

	// ErrBadLevelIndex is returned for a level < 1 or an index that is even
	// or outside [1, 2^level-1].
	ErrBadLevelIndex = errors.New("grid: invalid level/index pair")

	// ErrBadLevel is returned by generators for a level < 1.
	ErrBadLevel = errors.New("grid: level must be >= 1")

	// ErrOutOfRange is returned for a sequence number outside [0, Size()).
	ErrOutOfRange = errors.New("grid: sequence number out of range")

	// ErrBadBox is returned for an empty or inverted bounding box.
	ErrBadBox = errors.New("grid: invalid bounding box")
)
