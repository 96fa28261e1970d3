package updown

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/SGpp/SGpp-sub010/basis"
	"github.com/SGpp/SGpp-sub010/grid"
)

// denseOperator assembles the matrix sum_d A_d x prod_{e!=d} M_e (laplace)
// or prod_d M_d (mass) entry by entry from one-dimensional integrals.
func denseOperator(s *grid.Storage, box *grid.BoundingBox, laplace bool) *mat.Dense {
	n := s.Size()
	a := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		pj := s.Point(j)
		for k := 0; k < n; k++ {
			pk := s.Point(k)
			massProd := func(skip int) float64 {
				v := 1.0
				for d := 0; d < s.Dim(); d++ {
					if d == skip {
						continue
					}
					v *= box.Width(d) * basis.IntegrateProduct(pj.Level(d), pj.Index(d), pk.Level(d), pk.Index(d))
				}
				return v
			}
			if !laplace {
				a.Set(k, j, massProd(-1))
				continue
			}
			v := 0.0
			for d := 0; d < s.Dim(); d++ {
				deriv := basis.IntegrateDerivProduct(pj.Level(d), pj.Index(d), pk.Level(d), pk.Index(d)) / box.Width(d)
				v += deriv * massProd(d)
			}
			a.Set(k, j, v)
		}
	}
	return a
}

func testGrids(t *testing.T) map[string]*grid.Storage {
	t.Helper()
	grids := map[string]*grid.Storage{}
	for _, cfg := range []struct{ dim, level int }{{1, 4}, {2, 3}, {3, 3}, {4, 2}} {
		s, err := grid.Regular(cfg.dim, cfg.level)
		require.NoError(t, err)
		grids[fmt.Sprintf("regular-d%v-l%v", cfg.dim, cfg.level)] = s
	}
	s, err := grid.Regular(2, 2)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 6; i++ {
		_, err := s.Refine(rng.Intn(s.Size()))
		require.NoError(t, err)
	}
	grids["adaptive-2d"] = s
	s, err = grid.Regular(3, 2)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err := s.Refine(s.Size() - 1)
		require.NoError(t, err)
	}
	grids["adaptive-3d"] = s
	return grids
}

func randomVec(rng *rand.Rand, n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 2*rng.Float64() - 1
	}
	return v
}

func checkAgainstDense(t *testing.T, name string, want *mat.Dense, mult func(alpha, result []float64) error, n int) {
	t.Helper()
	rng := rand.New(rand.NewSource(int64(n)))
	for trial := 0; trial < 3; trial++ {
		alpha := randomVec(rng, n)
		got := make([]float64, n)
		require.NoError(t, mult(alpha, got))

		var ref mat.VecDense
		ref.MulVec(want, mat.NewVecDense(n, alpha))
		assert.InDeltaSlice(t, ref.RawVector().Data, got, 1e-12, "%v trial %v", name, trial)
	}
}

func TestLTwoDotMatchesDense(t *testing.T) {
	for name, s := range testGrids(t) {
		box := grid.UnitBox(s.Dim())
		op, err := NewLTwoDot(s, nil)
		require.NoError(t, err)
		checkAgainstDense(t, name, denseOperator(s, box, false), op.Mult, s.Size())
	}
}

func TestLaplaceMatchesDense(t *testing.T) {
	for name, s := range testGrids(t) {
		box := grid.UnitBox(s.Dim())
		op, err := NewLaplace(s, nil)
		require.NoError(t, err)
		checkAgainstDense(t, name, denseOperator(s, box, true), op.Mult, s.Size())
	}
}

func TestScaledBox(t *testing.T) {
	s, err := grid.Regular(2, 3)
	require.NoError(t, err)
	box, err := grid.NewBoundingBox([]float64{-1, 0}, []float64{3, 0.5})
	require.NoError(t, err)

	lap, err := NewLaplace(s, box)
	require.NoError(t, err)
	checkAgainstDense(t, "laplace", denseOperator(s, box, true), lap.Mult, s.Size())

	m, err := NewLTwoDot(s, box)
	require.NoError(t, err)
	checkAgainstDense(t, "mass", denseOperator(s, box, false), m.Mult, s.Size())
}

func TestLaplaceSymmetricPositive(t *testing.T) {
	s, err := grid.Regular(3, 3)
	require.NoError(t, err)
	op, err := NewLaplace(s, nil)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(3))
	x := randomVec(rng, s.Size())
	y := randomVec(rng, s.Size())
	ax := make([]float64, s.Size())
	ay := make([]float64, s.Size())
	require.NoError(t, op.Mult(x, ax))
	require.NoError(t, op.Mult(y, ay))

	assert.InDelta(t, mat.Dot(mat.NewVecDense(len(y), y), mat.NewVecDense(len(ax), ax)),
		mat.Dot(mat.NewVecDense(len(x), x), mat.NewVecDense(len(ay), ay)), 1e-10)
	assert.Positive(t, mat.Dot(mat.NewVecDense(len(x), x), mat.NewVecDense(len(ax), ax)))
}

func TestHierarchiseInterpolates(t *testing.T) {
	f := func(x []float64) float64 {
		v := 1.0
		for _, xd := range x {
			v *= 4 * xd * (1 - xd) * math.Exp(xd)
		}
		return v
	}
	for name, s := range testGrids(t) {
		values := make([]float64, s.Size())
		x := make([]float64, s.Dim())
		for seq := range values {
			for d := range x {
				x[d] = s.Coord(seq, d)
			}
			values[seq] = f(x)
		}
		nodal := append([]float64(nil), values...)

		require.NoError(t, Hierarchise(s, values))
		for seq := range nodal {
			for d := range x {
				x[d] = s.Coord(seq, d)
			}
			assert.InDelta(t, nodal[seq], basis.EvalPoint(s, values, x), 1e-12, "%v point %v", name, s.Point(seq))
		}

		require.NoError(t, Dehierarchise(s, values))
		assert.InDeltaSlice(t, nodal, values, 1e-12, name)
	}
}

func TestHierarchiseLevelOne(t *testing.T) {
	// the root's surplus is its nodal value; level two surpluses subtract
	// half the root value
	s, err := grid.Regular(1, 2)
	require.NoError(t, err)
	values := []float64{1, 0.75, 0.75}
	require.NoError(t, Hierarchise(s, values))
	assert.InDeltaSlice(t, []float64{1, 0.25, 0.25}, values, 1e-15)
}

func TestErrors(t *testing.T) {
	s, err := grid.Regular(2, 2)
	require.NoError(t, err)
	op, err := NewLaplace(s, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, op.Mult(make([]float64, 4), make([]float64, 5)), ErrDimMismatch)
	assert.ErrorIs(t, Hierarchise(s, make([]float64, 3)), ErrDimMismatch)
	assert.ErrorIs(t, Dehierarchise(s, make([]float64, 6)), ErrDimMismatch)

	_, err = NewLTwoDot(s, grid.UnitBox(3))
	assert.ErrorIs(t, err, ErrDimMismatch)

	empty, err := grid.NewStorage(2)
	require.NoError(t, err)
	_, err = NewLaplace(empty, nil)
	assert.ErrorIs(t, err, ErrEmptyGrid)
}

func BenchmarkLaplace(b *testing.B) {
	for _, level := range []int{4, 6} {
		s, err := grid.Regular(3, level)
		require.NoError(b, err)
		op, err := NewLaplace(s, nil)
		require.NoError(b, err)
		alpha := randomVec(rand.New(rand.NewSource(1)), s.Size())
		result := make([]float64, s.Size())
		b.Run(fmt.Sprintf("d3-l%v", level), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if err := op.Mult(alpha, result); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
