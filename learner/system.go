package learner

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/SGpp/SGpp-sub010/eval"
	"github.com/SGpp/SGpp-sub010/grid"
)

// system applies B and B^T for one fixed dataset in double precision,
// whatever precision the kernel runs in.
type system interface {
	mult(alpha, y []float64) error
	multTranspose(y, alpha []float64) error
	rows() int
}

type double struct {
	op eval.Operator[float64]
}

func (s double) mult(alpha, y []float64) error          { return s.op.Mult(alpha, y) }
func (s double) multTranspose(y, alpha []float64) error { return s.op.MultTranspose(y, alpha) }
func (s double) rows() int                              { return s.op.Eval.Rows() }

type single struct {
	op    eval.Operator[float32]
	alpha []float32
	y     []float32
}

func (s *single) mult(alpha, y []float64) error {
	narrow(s.alpha, alpha)
	if err := s.op.Mult(s.alpha, s.y); err != nil {
		return err
	}
	widen(y, s.y)
	return nil
}

func (s *single) multTranspose(y, alpha []float64) error {
	narrow(s.y, y)
	if err := s.op.MultTranspose(s.y, s.alpha); err != nil {
		return err
	}
	widen(alpha, s.alpha)
	return nil
}

func (s *single) rows() int { return s.op.Eval.Rows() }

func narrow(dst []float32, src []float64) {
	for i, v := range src {
		dst[i] = float32(v)
	}
}

func widen(dst []float64, src []float32) {
	for i, v := range src {
		dst[i] = float64(v)
	}
}

// unitData maps the rows of x from box into the unit cube as one row-major
// slice.
func unitData(x mat.Matrix, box *grid.BoundingBox) ([]float64, error) {
	rows, dim := x.Dims()
	unit := make([]float64, rows*dim)
	row := make([]float64, dim)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, x)
		if !box.Contains(row) {
			return nil, fmt.Errorf("row %d %v: %w", i, row, ErrOutOfDomain)
		}
		box.ToUnit(unit[i*dim:(i+1)*dim], row)
	}
	return unit, nil
}

func (r *Regression) newSystem(x mat.Matrix) (system, error) {
	rows, dim := x.Dims()
	if dim != r.grid.Dim() {
		return nil, fmt.Errorf("data dim %d, grid dim %d: %w", dim, r.grid.Dim(), ErrDimMismatch)
	}
	unit, err := unitData(x, r.opts.box)
	if err != nil {
		return nil, err
	}
	opts := []eval.Option{eval.WithThreads(r.opts.threads), eval.WithLogger(r.opts.logger)}

	if !r.opts.single {
		ds, err := eval.NewDataset(rows, dim, unit)
		if err != nil {
			return nil, err
		}
		e, err := eval.New(r.grid, ds, opts...)
		if err != nil {
			return nil, err
		}
		return double{op: eval.Operator[float64]{Eval: e}}, nil
	}

	unit32 := make([]float32, len(unit))
	narrow(unit32, unit)
	ds, err := eval.NewDataset(rows, dim, unit32)
	if err != nil {
		return nil, err
	}
	e, err := eval.New(r.grid, ds, opts...)
	if err != nil {
		return nil, err
	}
	return &single{
		op:    eval.Operator[float32]{Eval: e},
		alpha: make([]float32, r.grid.Size()),
		y:     make([]float32, rows),
	}, nil
}
