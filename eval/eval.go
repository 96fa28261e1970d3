package eval

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/ajroetker/go-highway/hwy"

	"github.com/SGpp/SGpp-sub010/grid"
)

// Eval evaluates a sparse grid function at every point of a fixed dataset
// and accumulates dataset values back onto the grid. It borrows the grid
// storage; after any structural change of the grid, Prepare must be called
// again before the next evaluation.
type Eval[T hwy.FloatsNative] struct {
	opts    options
	storage *grid.Storage
	data    *Dataset[T]
	rows    int
	batch   int

	layout *Layout
	slots  []int
	flat   []T
}

// New creates an evaluator for storage over ds and prepares its layout.
func New[T hwy.FloatsNative](storage *grid.Storage, ds *Dataset[T], opts ...Option) (*Eval[T], error) {
	if ds.Dim() != storage.Dim() {
		return nil, fmt.Errorf("dataset dim %d, grid dim %d: %w", ds.Dim(), storage.Dim(), ErrDimMismatch)
	}
	e := &Eval[T]{
		opts:    gatherOptions(opts),
		storage: storage,
		rows:    ds.Rows(),
		batch:   batchSize[T](),
	}
	e.data = ds.padded(e.batch)
	if err := e.Prepare(); err != nil {
		return nil, err
	}
	return e, nil
}

// Prepare rebuilds the subspace table and the flat coefficient store from
// the current grid. Stored coefficients are discarded.
func (e *Eval[T]) Prepare() error {
	layout, err := buildLayout(e.storage)
	if err != nil {
		e.layout, e.slots, e.flat = nil, nil, nil
		return err
	}
	slots := make([]int, e.storage.Size())
	for seq := range slots {
		p := e.storage.Point(seq)
		level := make([]uint32, p.Dim())
		for d := range level {
			level[d] = p.Level(d)
		}
		sub := layout.subspaces[layout.byFlat[flatLevel(level, layout.maxLevel)]]
		slots[seq] = sub.Offset + localIndex(sub.HInverse, pointIndex(p))
	}
	e.layout, e.slots = layout, slots
	e.flat = make([]T, layout.flatSize)
	e.fillVirtual(0)

	e.opts.logger.Debug("layout prepared",
		slog.Int("points", len(slots)),
		slog.Int("subspaces", layout.Real()),
		slog.Int("maxLevel", layout.maxLevel),
		slog.Int("flatSize", layout.flatSize),
		slog.Float64("fill", float64(len(slots))/float64(layout.flatSize)),
		slog.Int("batch", e.batch),
		slog.Int("threads", e.opts.threads))
	return nil
}

func pointIndex(p grid.Point) []uint32 {
	index := make([]uint32, p.Dim())
	for d := range index {
		index[d] = p.Index(d)
	}
	return index
}

// Alignment returns the batch size. Ranges passed to Multiply and
// MultiplyTranspose must start at a multiple of it.
func (e *Eval[T]) Alignment() int { return e.batch }

// Layout returns the current subspace table, or nil if Prepare failed.
func (e *Eval[T]) Layout() *Layout { return e.layout }

// Rows returns the number of data points, excluding padding.
func (e *Eval[T]) Rows() int { return e.rows }

// Multiply computes result[r] = sum_j alpha[j]*phi_j(x_r) for every data
// row r in [start, end). alpha is indexed by grid sequence number; result
// by data row and must hold at least end values. Rows outside the range
// are left untouched.
func (e *Eval[T]) Multiply(alpha, result []T, start, end int) error {
	if err := e.checkRange(start, end); err != nil {
		return err
	}
	if len(result) < end {
		return fmt.Errorf("result length %d < %d: %w", len(result), end, ErrDimMismatch)
	}
	if err := e.SetCoefficients(alpha); err != nil {
		return err
	}
	e.parallel(start, end, func(k *kernel[T], row, stop int) {
		k.multiply(e.flat, row, stop, result)
	})
	return nil
}

// MultiplyTranspose computes result[j] = sum_r source[r]*phi_j(x_r) over
// the data rows r in [start, end). source is indexed by data row; result by
// grid sequence number.
func (e *Eval[T]) MultiplyTranspose(source, result []T, start, end int) error {
	if err := e.checkRange(start, end); err != nil {
		return err
	}
	if len(source) < end {
		return fmt.Errorf("source length %d < %d: %w", len(source), end, ErrDimMismatch)
	}
	if len(result) != len(e.slots) {
		return fmt.Errorf("result length %d, grid size %d: %w", len(result), len(e.slots), ErrDimMismatch)
	}
	for _, slot := range e.slots {
		e.flat[slot] = 0
	}
	e.parallel(start, end, func(k *kernel[T], row, stop int) {
		k.multiplyTranspose(e.flat, row, stop, source)
	})
	return e.Unflatten(result)
}

func (e *Eval[T]) checkRange(start, end int) error {
	if e.layout == nil {
		return ErrNotPrepared
	}
	if start < 0 || end > e.rows || start > end {
		return fmt.Errorf("[%d, %d) of %d rows: %w", start, end, e.rows, ErrBadRange)
	}
	if start%e.batch != 0 || (end%e.batch != 0 && end != e.rows) {
		return fmt.Errorf("[%d, %d) with batch %d: %w", start, end, e.batch, ErrUnaligned)
	}
	return nil
}

// parallel splits [start, end) into contiguous runs of whole batches, one
// per worker, and blocks until all workers return.
func (e *Eval[T]) parallel(start, end int, work func(k *kernel[T], row, stop int)) {
	if start == end {
		return
	}
	nbatch := (end - start + e.batch - 1) / e.batch
	workers := min(e.opts.threads, nbatch)
	per := (nbatch + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := start + w*per*e.batch
		if lo >= end {
			break
		}
		hi := min(lo+per*e.batch, end)
		wg.Add(1)
		go func() {
			defer wg.Done()
			k := newKernel(e.layout, e.data, e.batch)
			work(k, lo, hi)
		}()
	}
	wg.Wait()
}

func (e *Eval[T]) fillVirtual(v T) {
	nan := T(math.NaN())
	for i := range e.flat {
		e.flat[i] = nan
	}
	for _, slot := range e.slots {
		e.flat[slot] = v
	}
}

// Operator runs an Eval over its whole dataset.
type Operator[T hwy.FloatsNative] struct {
	Eval *Eval[T]
}

// Mult sets y to B*alpha, one value per data row.
func (op Operator[T]) Mult(alpha, y []T) error {
	return op.Eval.Multiply(alpha, y, 0, op.Eval.Rows())
}

// MultTranspose sets alpha to B^T*y, one value per grid point.
func (op Operator[T]) MultTranspose(y, alpha []T) error {
	return op.Eval.MultiplyTranspose(y, alpha, 0, op.Eval.Rows())
}
