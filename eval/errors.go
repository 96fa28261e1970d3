package eval

import "errors"

// Configuration errors. They are detected at Prepare and at the entry of
// Multiply/MultiplyTranspose; nothing is written to outputs when one is
// returned.
var (
	// ErrEmptyGrid is returned by Prepare for a storage without points.
	ErrEmptyGrid = errors.New("eval: empty grid")

	// ErrZeroDim is returned for a zero-dimensional dataset.
	ErrZeroDim = errors.New("eval: dimensionality must be > 0")

	// ErrDimMismatch is returned when dataset and grid dimensionality differ
	// or a vector has the wrong length.
	ErrDimMismatch = errors.New("eval: dimension mismatch")

	// ErrUnaligned is returned when a requested data range is not a
	// multiple of the batch size reported by Alignment.
	ErrUnaligned = errors.New("eval: range not aligned to batch size")

	// ErrBadRange is returned for an empty, inverted or out-of-bounds range.
	ErrBadRange = errors.New("eval: invalid data range")

	// ErrNotPrepared is returned when evaluating before Prepare succeeded.
	ErrNotPrepared = errors.New("eval: layout not prepared")

	// ErrLevelOverflow is returned by Prepare when maxLevel^dim does not
	// fit the subspace key.
	ErrLevelOverflow = errors.New("eval: level key overflow")

	// ErrBadData is returned for a dataset whose backing slice does not
	// match rows*dim.
	ErrBadData = errors.New("eval: dataset size mismatch")
)
