package learner

import (
	"bytes"
	"fmt"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/SGpp/SGpp-sub010/grid"
)

// bump vanishes on the boundary of the unit cube and peaks at 1 in its
// center.
func bump(u []float64) float64 {
	v := 1.0
	for _, ud := range u {
		v *= 4 * ud * (1 - ud)
	}
	return v
}

// samples draws rows uniform points in box and evaluates bump on their unit
// coordinates.
func samples(seed int64, rows int, box *grid.BoundingBox) (*mat.Dense, []float64) {
	rng := rand.New(rand.NewSource(seed))
	dim := box.Dim()
	x := mat.NewDense(rows, dim, nil)
	y := make([]float64, rows)
	u := make([]float64, dim)
	for i := 0; i < rows; i++ {
		for d := range u {
			u[d] = rng.Float64()
		}
		x.SetRow(i, box.FromUnit(nil, u))
		y[i] = bump(u)
	}
	return x, y
}

func fitted(t *testing.T, dim, level int, opts ...Option) (*Regression, *mat.Dense, []float64) {
	t.Helper()
	s, err := grid.Regular(dim, level)
	require.NoError(t, err)
	r, err := New(s, append([]Option{WithMaxIter(2000)}, opts...)...)
	require.NoError(t, err)
	x, y := samples(1, 2000, grid.UnitBox(dim))
	require.NoError(t, r.Fit(x, y))
	return r, x, y
}

func TestFitSmooth(t *testing.T) {
	for _, reg := range []Regularizer{Laplace, Identity} {
		r, x, y := fitted(t, 2, 5, WithRegularizer(reg), WithLambda(1e-6))
		train, err := r.MSE(x, y)
		require.NoError(t, err)
		tx, ty := samples(2, 500, grid.UnitBox(2))
		test, err := r.MSE(tx, ty)
		require.NoError(t, err)

		t.Logf("%v: %v points, %v iterations, train mse %.3g, test mse %.3g",
			reg, r.Stats().Points, r.Stats().Iterations, train, test)
		assert.Less(t, train, 1e-4, reg.String())
		assert.Less(t, test, 1e-4, reg.String())
		assert.Equal(t, 2000, r.Stats().Rows)
		assert.Len(t, r.Alpha(), r.Grid().Size())
	}
}

func TestFitSinglePrecision(t *testing.T) {
	r64, x, _ := fitted(t, 3, 3, WithTol(1e-5))
	r32, _, _ := fitted(t, 3, 3, WithTol(1e-5), WithSinglePrecision())

	p64, err := r64.Predict(x)
	require.NoError(t, err)
	p32, err := r32.Predict(x)
	require.NoError(t, err)
	assert.InDeltaSlice(t, p64, p32, 1e-3)
}

func TestFitBox(t *testing.T) {
	box, err := grid.NewBoundingBox([]float64{-1, 0}, []float64{1, 2})
	require.NoError(t, err)
	s, err := grid.Regular(2, 4)
	require.NoError(t, err)
	r, err := New(s, WithBox(box), WithMaxIter(2000))
	require.NoError(t, err)

	x, y := samples(3, 1000, box)
	require.NoError(t, r.Fit(x, y))
	mse, err := r.MSE(x, y)
	require.NoError(t, err)
	assert.Less(t, mse, 1e-3)

	pred, err := r.Predict(x)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		v, err := r.Value(x.RawRowView(i))
		require.NoError(t, err)
		assert.InDelta(t, pred[i], v, 1e-12, "row %v", i)
	}
}

func TestRefineKeepsFunction(t *testing.T) {
	r, x, y := fitted(t, 2, 3, WithThreads(2))
	before, err := r.Predict(x)
	require.NoError(t, err)
	size := r.Grid().Size()

	added, err := r.Refine(3)
	require.NoError(t, err)
	assert.Positive(t, added)
	assert.Equal(t, size+added, r.Grid().Size())
	assert.Len(t, r.Alpha(), r.Grid().Size())

	after, err := r.Predict(x)
	require.NoError(t, err)
	assert.InDeltaSlice(t, before, after, 1e-12)

	require.NoError(t, r.Fit(x, y))
	assert.Equal(t, size+added, r.Stats().Points)
}

func TestRefineSkipsInteriorPoints(t *testing.T) {
	// on a regular grid the largest surpluses sit on coarse points whose
	// children are all stored already
	r, _, _ := fitted(t, 2, 3)
	size := r.Grid().Size()

	added, err := r.Refine(1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, added, 2)
	assert.Equal(t, size+added, r.Grid().Size())

	it := r.Grid().Iterator()
	assert.False(t, refinable(it, 0), "root of a regular level 3 grid has all children")
	assert.True(t, refinable(it, r.Grid().Size()-1))
}

func TestFitLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	fitted(t, 2, 2, WithLogger(logger))
	assert.Contains(t, buf.String(), "msg=fit")
	assert.Contains(t, buf.String(), "iterations=")
}

func TestNotConvergedKeepsIterate(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s, err := grid.Regular(2, 4)
	require.NoError(t, err)
	r, err := New(s, WithMaxIter(2), WithTol(1e-14), WithLogger(logger))
	require.NoError(t, err)
	x, y := samples(1, 300, grid.UnitBox(2))
	require.NoError(t, r.Fit(x, y))
	assert.False(t, r.Stats().Converged)
	assert.Equal(t, 2, r.Stats().Iterations)
	assert.Contains(t, buf.String(), "level=WARN")
	_, err = r.Predict(x)
	assert.NoError(t, err)
}

func TestErrors(t *testing.T) {
	s, err := grid.Regular(2, 2)
	require.NoError(t, err)
	r, err := New(s)
	require.NoError(t, err)

	x, y := samples(1, 10, grid.UnitBox(2))
	_, err = r.Predict(x)
	assert.ErrorIs(t, err, ErrNotFitted)
	_, err = r.Value([]float64{0.5, 0.5})
	assert.ErrorIs(t, err, ErrNotFitted)
	_, err = r.Refine(1)
	assert.ErrorIs(t, err, ErrNotFitted)

	assert.ErrorIs(t, r.Fit(x, y[:9]), ErrDimMismatch)
	x3, y3 := samples(1, 10, grid.UnitBox(3))
	assert.ErrorIs(t, r.Fit(x3, y3), ErrDimMismatch)
	x.Set(4, 1, 1.5)
	assert.ErrorIs(t, r.Fit(x, y), ErrOutOfDomain)

	_, err = New(s, WithBox(grid.UnitBox(3)))
	assert.ErrorIs(t, err, ErrDimMismatch)
	empty, err := grid.NewStorage(2)
	require.NoError(t, err)
	_, err = New(empty)
	assert.ErrorIs(t, err, ErrEmptyGrid)
}

func TestParseRegularizer(t *testing.T) {
	tests := []struct {
		name string
		want Regularizer
		err  error
	}{
		{"laplace", Laplace, nil},
		{"identity", Identity, nil},
		{"tikhonov", 0, ErrRegularizer},
	}
	for _, test := range tests {
		got, err := ParseRegularizer(test.name)
		if test.err != nil {
			assert.ErrorIs(t, err, test.err, test.name)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, test.want, got)
		assert.Equal(t, test.name, got.String())
	}
}

func BenchmarkFit(b *testing.B) {
	for _, level := range []int{4, 6} {
		s, err := grid.Regular(3, level)
		require.NoError(b, err)
		x, y := samples(1, 10000, grid.UnitBox(3))
		b.Run(fmt.Sprintf("d3-l%v", level), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				r, err := New(s, WithMaxIter(50))
				if err != nil {
					b.Fatal(err)
				}
				if err := r.Fit(x, y); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
