// Package basis implements the piecewise linear hierarchical hat basis used
// by sparse grids, together with brute-force reference evaluators and
// quadrature-based integrals for checking the fast operators.
package basis

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/SGpp/SGpp-sub010/grid"
)

// Hat returns the value of the hat function of the given level and index
// at x in [0,1]: max(0, 1-|2^level*x - index|).
func Hat(level, index uint32, x float64) float64 {
	return math.Max(0, 1-math.Abs(math.Ldexp(x, int(level))-float64(index)))
}

// HatDeriv returns the derivative of the hat function at x. At the kinks
// the derivative of the right piece is returned.
func HatDeriv(level, index uint32, x float64) float64 {
	h := math.Ldexp(1, int(level))
	t := h*x - float64(index)
	switch {
	case t < -1 || t >= 1:
		return 0
	case t < 0:
		return h
	default:
		return -h
	}
}

// Support returns the interval [(index-1)/2^level, (index+1)/2^level] on
// which the hat function is non-zero.
func Support(level, index uint32) (lo, hi float64) {
	h := math.Ldexp(1, -int(level))
	return float64(index-1) * h, float64(index+1) * h
}

// EvalPoint evaluates sum_j alpha[j] * prod_d phi_j(x_d) by visiting every
// stored point. It is the O(N*dim) reference the fast kernels are checked
// against.
func EvalPoint(s *grid.Storage, alpha []float64, x []float64) float64 {
	if len(alpha) != s.Size() {
		panic("inconsistent lengths for coefficient vector")
	}
	total := 0.0
	for seq := 0; seq < s.Size(); seq++ {
		p := s.Point(seq)
		v := alpha[seq]
		for d := range x {
			l, i := p.Get(d)
			v *= Hat(l, i, x[d])
			if v == 0 {
				break
			}
		}
		total += v
	}
	return total
}

// EvalTransposePoint adds weight*phi_j(x) to result[j] for every stored
// point j. It is the reference for the transposed kernel.
func EvalTransposePoint(s *grid.Storage, weight float64, x []float64, result []float64) {
	for seq := 0; seq < s.Size(); seq++ {
		p := s.Point(seq)
		v := weight
		for d := range x {
			l, i := p.Get(d)
			v *= Hat(l, i, x[d])
			if v == 0 {
				break
			}
		}
		result[seq] += v
	}
}

// IntegrateProduct returns the integral over [0,1] of the product of two
// hat functions. The product is piecewise quadratic between the joint
// kinks, so two Gauss-Legendre points per piece are exact.
func IntegrateProduct(l1, i1, l2, i2 uint32) float64 {
	return integratePieces(l1, i1, l2, i2, func(x float64) float64 {
		return Hat(l1, i1, x) * Hat(l2, i2, x)
	})
}

// IntegrateDerivProduct returns the integral over [0,1] of the product of
// the derivatives of two hat functions.
func IntegrateDerivProduct(l1, i1, l2, i2 uint32) float64 {
	return integratePieces(l1, i1, l2, i2, func(x float64) float64 {
		return HatDeriv(l1, i1, x) * HatDeriv(l2, i2, x)
	})
}

// integratePieces integrates f over the intersection of both supports,
// split at every kink of either hat function so each piece is smooth.
func integratePieces(l1, i1, l2, i2 uint32, f func(float64) float64) float64 {
	lo1, hi1 := Support(l1, i1)
	lo2, hi2 := Support(l2, i2)
	lo, hi := math.Max(lo1, lo2), math.Min(hi1, hi2)
	if lo >= hi {
		return 0
	}
	mid1 := (lo1 + hi1) / 2
	mid2 := (lo2 + hi2) / 2
	cuts := []float64{lo}
	for _, c := range []float64{math.Min(mid1, mid2), math.Max(mid1, mid2)} {
		if c > cuts[len(cuts)-1] && c < hi {
			cuts = append(cuts, c)
		}
	}
	cuts = append(cuts, hi)

	total := 0.0
	for k := 1; k < len(cuts); k++ {
		total += quad.Fixed(f, cuts[k-1], cuts[k], 2, quad.Legendre{}, 0)
	}
	return total
}
