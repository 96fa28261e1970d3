package updown

import "errors"

var (
	// ErrDimMismatch is returned when a vector length differs from the grid
	// size or a bounding box has the wrong dimensionality.
	ErrDimMismatch = errors.New("updown: dimension mismatch")

	// ErrEmptyGrid is returned when an operator is built on an empty grid.
	ErrEmptyGrid = errors.New("updown: empty grid")
)
