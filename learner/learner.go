package learner

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/SGpp/SGpp-sub010/basis"
	"github.com/SGpp/SGpp-sub010/grid"
	"github.com/SGpp/SGpp-sub010/solver"
	"github.com/SGpp/SGpp-sub010/updown"
)

// Stats summarizes the last Fit.
type Stats struct {
	Points     int
	Rows       int
	Iterations int
	Residual   float64
	Converged  bool
	Elapsed    time.Duration
}

// Regression fits the surpluses of a sparse grid function to scattered data
// by penalized least squares.
type Regression struct {
	opts  options
	grid  *grid.Storage
	alpha []float64
	stats Stats
}

// New creates a regression on s. The grid is borrowed and may be refined
// through Refine between fits.
func New(s *grid.Storage, opts ...Option) (*Regression, error) {
	if s.Size() == 0 {
		return nil, ErrEmptyGrid
	}
	o := gatherOptions(opts)
	if o.box == nil {
		o.box = grid.UnitBox(s.Dim())
	}
	if o.box.Dim() != s.Dim() {
		return nil, fmt.Errorf("box dim %d, grid dim %d: %w", o.box.Dim(), s.Dim(), ErrDimMismatch)
	}
	return &Regression{opts: o, grid: s}, nil
}

// Grid returns the underlying grid.
func (r *Regression) Grid() *grid.Storage { return r.grid }

// Alpha returns a copy of the fitted surpluses, or nil before Fit.
func (r *Regression) Alpha() []float64 { return slices.Clone(r.alpha) }

// Stats returns the statistics of the last Fit.
func (r *Regression) Stats() Stats { return r.stats }

// Fit solves (B^T*B + lambda*M*C)*alpha = B^T*y by conjugate gradients, where
// B evaluates the grid basis at the M rows of x and C is the regularizer.
// An iteration limit hit before the tolerance is logged and the last
// iterate kept.
func (r *Regression) Fit(x mat.Matrix, y []float64) error {
	rows, _ := x.Dims()
	if rows != len(y) {
		return fmt.Errorf("%d rows, %d targets: %w", rows, len(y), ErrDimMismatch)
	}
	sys, err := r.newSystem(x)
	if err != nil {
		return err
	}
	reg, err := r.regularizer()
	if err != nil {
		return err
	}

	n := r.grid.Size()
	scale := r.opts.lambda * float64(rows)
	tmp := make([]float64, rows)
	penalty := make([]float64, n)
	A := solver.OperatorFunc(func(alpha, out []float64) error {
		if err := sys.mult(alpha, tmp); err != nil {
			return err
		}
		if err := sys.multTranspose(tmp, out); err != nil {
			return err
		}
		if err := reg.Mult(alpha, penalty); err != nil {
			return err
		}
		floats.AddScaled(out, scale, penalty)
		return nil
	})

	b := make([]float64, n)
	if err := sys.multTranspose(y, b); err != nil {
		return err
	}

	start := time.Now()
	cg := &solver.CG{MaxIter: r.opts.maxIter, Tol: r.opts.tol}
	alpha, err := cg.Solve(A, b)
	converged := true
	if errors.Is(err, solver.ErrNotConverged) {
		converged = false
		r.opts.logger.Warn("cg stopped at iteration limit",
			slog.Int("maxIter", r.opts.maxIter),
			slog.Float64("residual", cg.Residual()))
	} else if err != nil {
		return err
	}

	r.alpha = alpha
	r.stats = Stats{
		Points:     n,
		Rows:       rows,
		Iterations: cg.Niter(),
		Residual:   cg.Residual(),
		Converged:  converged,
		Elapsed:    time.Since(start),
	}
	r.opts.logger.Info("fit",
		slog.Int("points", n),
		slog.Int("rows", rows),
		slog.String("regularizer", r.opts.reg.String()),
		slog.Float64("lambda", r.opts.lambda),
		slog.Int("iterations", r.stats.Iterations),
		slog.Float64("residual", r.stats.Residual),
		slog.Duration("elapsed", r.stats.Elapsed))
	return nil
}

func (r *Regression) regularizer() (solver.Operator, error) {
	switch r.opts.reg {
	case Laplace:
		lap, err := updown.NewLaplace(r.grid, r.opts.box)
		if err != nil {
			return nil, err
		}
		return lap, nil
	case Identity:
		return solver.OperatorFunc(func(x, y []float64) error {
			copy(y, x)
			return nil
		}), nil
	}
	return nil, fmt.Errorf("%d: %w", r.opts.reg, ErrRegularizer)
}

// Predict evaluates the fitted function at every row of x.
func (r *Regression) Predict(x mat.Matrix) ([]float64, error) {
	if r.alpha == nil {
		return nil, ErrNotFitted
	}
	if len(r.alpha) != r.grid.Size() {
		return nil, fmt.Errorf("%d surpluses, grid size %d: %w", len(r.alpha), r.grid.Size(), ErrNotFitted)
	}
	sys, err := r.newSystem(x)
	if err != nil {
		return nil, err
	}
	y := make([]float64, sys.rows())
	if err := sys.mult(r.alpha, y); err != nil {
		return nil, err
	}
	return y, nil
}

// Value evaluates the fitted function at a single point of the box.
func (r *Regression) Value(x []float64) (float64, error) {
	if r.alpha == nil || len(r.alpha) != r.grid.Size() {
		return 0, ErrNotFitted
	}
	if len(x) != r.grid.Dim() {
		return 0, fmt.Errorf("point dim %d, grid dim %d: %w", len(x), r.grid.Dim(), ErrDimMismatch)
	}
	if !r.opts.box.Contains(x) {
		return 0, fmt.Errorf("%v: %w", x, ErrOutOfDomain)
	}
	return basis.EvalPoint(r.grid, r.alpha, r.opts.box.ToUnit(nil, x)), nil
}

// MSE returns the mean squared error of the fitted function on x and y.
func (r *Regression) MSE(x mat.Matrix, y []float64) (float64, error) {
	pred, err := r.Predict(x)
	if err != nil {
		return 0, err
	}
	if len(pred) != len(y) {
		return 0, fmt.Errorf("%d rows, %d targets: %w", len(pred), len(y), ErrDimMismatch)
	}
	floats.Sub(pred, y)
	return floats.Dot(pred, pred) / float64(len(y)), nil
}

// Refine refines the n refinable grid points with the largest absolute
// surplus and returns the number of points added. A point is refinable if
// it lacks a child in some dimension. New points get a zero surplus, so
// the fitted function is unchanged until the next Fit.
func (r *Regression) Refine(n int) (int, error) {
	if r.alpha == nil {
		return 0, ErrNotFitted
	}
	it := r.grid.Iterator()
	var order []int
	for seq := range r.alpha {
		if refinable(it, seq) {
			order = append(order, seq)
		}
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(math.Abs(r.alpha[b]), math.Abs(r.alpha[a]))
	})

	added := 0
	for _, seq := range order[:min(n, len(order))] {
		k, err := r.grid.Refine(seq)
		added += k
		if err != nil {
			r.alpha = append(r.alpha, make([]float64, r.grid.Size()-len(r.alpha))...)
			return added, err
		}
	}
	r.alpha = append(r.alpha, make([]float64, r.grid.Size()-len(r.alpha))...)
	r.opts.logger.Debug("refined", slog.Int("candidates", len(order)), slog.Int("added", added))
	return added, nil
}

// refinable reports whether point seq misses a child in any dimension
// below grid.MaxLevel.
func refinable(it *grid.Iterator, seq int) bool {
	it.Seek(seq)
	for d := 0; d < it.Dim(); d++ {
		if l, _ := it.Get(d); l >= grid.MaxLevel {
			continue
		}
		it.LeftChild(d)
		left := it.Valid()
		it.Up(d)
		it.RightChild(d)
		right := it.Valid()
		it.Up(d)
		if !left || !right {
			return true
		}
	}
	return false
}
