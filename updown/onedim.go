package updown

import (
	"math"

	"github.com/SGpp/SGpp-sub010/grid"
)

// oneDim is a one-dimensional operator split into its up and down parts.
// q is the width of the domain in the swept dimension.
type oneDim interface {
	up(sw *sweeper, src, dst []float64, d int, q float64)
	down(sw *sweeper, src, dst []float64, d int, q float64)
}

// mass is the L2 scalar product of hat functions.
type mass struct{}

// down writes the contributions of the point itself and its ancestors.
// fl and fr are the values at the support ends of the ancestors'
// interpolant sum_j alpha_j*phi_j.
func (mass) down(sw *sweeper, src, dst []float64, d int, q float64) {
	sw.poles(d, func(it *grid.Iterator) { massDown(it, src, dst, d, q, 0, 0) })
}

func massDown(it *grid.Iterator, src, dst []float64, d int, q, fl, fr float64) {
	seq := it.Seq()
	l, _ := it.Get(d)
	h := meshWidth(l)
	a := src[seq]
	dst[seq] = q * (2.0/3.0*h*a + h/2*(fl+fr))

	fm := (fl+fr)/2 + a
	children(it, d,
		func() { massDown(it, src, dst, d, q, fl, fm) },
		func() { massDown(it, src, dst, d, q, fm, fr) })
}

// up writes the contributions of strict descendants.
func (mass) up(sw *sweeper, src, dst []float64, d int, q float64) {
	sw.poles(d, func(it *grid.Iterator) { massUp(it, src, dst, d, q) })
}

// massUp returns the integrals of the subtree's function against the
// falling and the rising linear ramp over the current support.
func massUp(it *grid.Iterator, src, dst []float64, d int, q float64) (fl, fr float64) {
	seq := it.Seq()
	l, _ := it.Get(d)
	h := meshWidth(l)

	var fll, frl, flr, frr float64
	children(it, d,
		func() { fll, frl = massUp(it, src, dst, d, q) },
		func() { flr, frr = massUp(it, src, dst, d, q) })

	dst[seq] = q * (frl + flr)
	a := src[seq] * h / 2
	return a + fll + frl/2 + flr/2, a + frr + flr/2 + frl/2
}

// stiffness is the scalar product of hat function derivatives. In one
// dimension the hierarchical hats are orthogonal under it, so the up part
// vanishes.
type stiffness struct{}

func (stiffness) up(sw *sweeper, src, dst []float64, d int, q float64) {
	clear(dst)
}

func (stiffness) down(sw *sweeper, src, dst []float64, d int, q float64) {
	for seq := range dst {
		l := sw.s.Point(seq).Level(d)
		dst[seq] = math.Ldexp(2, int(l)) / q * src[seq]
	}
}
