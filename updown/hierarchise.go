package updown

import (
	"fmt"

	"github.com/SGpp/SGpp-sub010/grid"
)

// Hierarchise converts nodal values, values[seq] = f(x_seq), into
// hierarchical surpluses in place. The result interpolates f at every grid
// point.
func Hierarchise(s *grid.Storage, values []float64) error {
	if len(values) != s.Size() {
		return fmt.Errorf("%d values for %d points: %w", len(values), s.Size(), ErrDimMismatch)
	}
	sw := newSweeper(s)
	for d := 0; d < s.Dim(); d++ {
		sw.poles(d, func(it *grid.Iterator) { hierarchise(it, values, d, 0, 0) })
	}
	return nil
}

// hierarchise subtracts the linear interpolant of the support end values
// fl and fr. Children see the original nodal value of their parent.
func hierarchise(it *grid.Iterator, values []float64, d int, fl, fr float64) {
	seq := it.Seq()
	u := values[seq]
	values[seq] = u - (fl+fr)/2
	children(it, d,
		func() { hierarchise(it, values, d, fl, u) },
		func() { hierarchise(it, values, d, u, fr) })
}

// Dehierarchise converts hierarchical surpluses into nodal values in place.
// It inverts Hierarchise.
func Dehierarchise(s *grid.Storage, alpha []float64) error {
	if len(alpha) != s.Size() {
		return fmt.Errorf("%d surpluses for %d points: %w", len(alpha), s.Size(), ErrDimMismatch)
	}
	sw := newSweeper(s)
	for d := s.Dim() - 1; d >= 0; d-- {
		sw.poles(d, func(it *grid.Iterator) { dehierarchise(it, alpha, d, 0, 0) })
	}
	return nil
}

func dehierarchise(it *grid.Iterator, alpha []float64, d int, fl, fr float64) {
	seq := it.Seq()
	u := alpha[seq] + (fl+fr)/2
	alpha[seq] = u
	children(it, d,
		func() { dehierarchise(it, alpha, d, fl, u) },
		func() { dehierarchise(it, alpha, d, u, fr) })
}
