package updown

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/SGpp/SGpp-sub010/grid"
)

// operator composes one-dimensional operators with the unidirectional
// principle. Dimension opDim uses op; all others use the mass operator.
type operator struct {
	s     *grid.Storage
	box   *grid.BoundingBox
	sw    *sweeper
	other oneDim
}

func newOperator(s *grid.Storage, box *grid.BoundingBox) (*operator, error) {
	if s.Size() == 0 {
		return nil, ErrEmptyGrid
	}
	if box == nil {
		box = grid.UnitBox(s.Dim())
	}
	if box.Dim() != s.Dim() {
		return nil, fmt.Errorf("box dim %d, grid dim %d: %w", box.Dim(), s.Dim(), ErrDimMismatch)
	}
	return &operator{s: s, box: box, sw: newSweeper(s), other: mass{}}, nil
}

func (o *operator) check(alpha, result []float64) error {
	if len(alpha) != o.s.Size() || len(result) != o.s.Size() {
		return fmt.Errorf("vectors of %d and %d for %d points: %w", len(alpha), len(result), o.s.Size(), ErrDimMismatch)
	}
	return nil
}

func (o *operator) pick(dim, opDim int, op oneDim) oneDim {
	if dim == opDim {
		return op
	}
	return o.other
}

// updown writes into result the operator over dimensions 0..dim applied to
// alpha, using op in dimension opDim.
func (o *operator) updown(alpha, result []float64, dim, opDim int, op oneDim) {
	q := o.box.Width(dim)
	f := o.pick(dim, opDim, op)
	temp := make([]float64, len(alpha))

	if dim == 0 {
		f.up(o.sw, alpha, result, 0, q)
		f.down(o.sw, alpha, temp, 0, q)
		floats.Add(result, temp)
		return
	}

	f.up(o.sw, alpha, temp, dim, q)
	o.updown(temp, result, dim-1, opDim, op)

	o.updown(alpha, temp, dim-1, opDim, op)
	down := make([]float64, len(alpha))
	f.down(o.sw, temp, down, dim, q)
	floats.Add(result, down)
}

// LTwoDot is the mass matrix M_jk = <phi_j, phi_k> of the grid's basis on
// its bounding box.
type LTwoDot struct {
	o *operator
}

// NewLTwoDot returns the mass operator of s on box. A nil box is the unit
// cube.
func NewLTwoDot(s *grid.Storage, box *grid.BoundingBox) (*LTwoDot, error) {
	o, err := newOperator(s, box)
	if err != nil {
		return nil, err
	}
	return &LTwoDot{o: o}, nil
}

// Mult sets result to M*alpha.
func (m *LTwoDot) Mult(alpha, result []float64) error {
	if err := m.o.check(alpha, result); err != nil {
		return err
	}
	m.o.updown(alpha, result, m.o.s.Dim()-1, -1, nil)
	return nil
}

// Laplace is the stiffness matrix A_jk = <grad phi_j, grad phi_k> of the
// grid's basis on its bounding box. It is applied as the sum over d of the
// operators with the derivative product in dimension d and the mass product
// elsewhere.
type Laplace struct {
	o *operator
}

// NewLaplace returns the stiffness operator of s on box. A nil box is the
// unit cube.
func NewLaplace(s *grid.Storage, box *grid.BoundingBox) (*Laplace, error) {
	o, err := newOperator(s, box)
	if err != nil {
		return nil, err
	}
	return &Laplace{o: o}, nil
}

// Mult sets result to A*alpha.
func (lap *Laplace) Mult(alpha, result []float64) error {
	if err := lap.o.check(alpha, result); err != nil {
		return err
	}
	clear(result)
	part := make([]float64, len(alpha))
	dim := lap.o.s.Dim()
	for opDim := 0; opDim < dim; opDim++ {
		lap.o.updown(alpha, part, dim-1, opDim, stiffness{})
		floats.Add(result, part)
	}
	return nil
}
