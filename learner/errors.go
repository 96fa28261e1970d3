package learner

import "errors"

var (
	// ErrDimMismatch is returned when data, targets and grid disagree in
	// size.
	ErrDimMismatch = errors.New("learner: dimension mismatch")

	// ErrNotFitted is returned by Predict before a successful Fit.
	ErrNotFitted = errors.New("learner: model not fitted")

	// ErrEmptyGrid is returned when the grid has no points.
	ErrEmptyGrid = errors.New("learner: empty grid")

	// ErrOutOfDomain is returned for a data point outside the bounding box.
	ErrOutOfDomain = errors.New("learner: data point outside domain")

	// ErrRegularizer is returned for an unknown regularizer name.
	ErrRegularizer = errors.New("learner: unknown regularizer")
)
