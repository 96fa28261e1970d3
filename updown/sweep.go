package updown

import (
	"math"

	"github.com/SGpp/SGpp-sub010/grid"
)

// sweeper runs one-dimensional tree walks over every pole of a dimension.
type sweeper struct {
	s  *grid.Storage
	it *grid.Iterator
}

func newSweeper(s *grid.Storage) *sweeper {
	return &sweeper{s: s, it: s.Iterator()}
}

// poles calls f once per pole of dimension d, with the iterator at the
// pole's level one point.
func (sw *sweeper) poles(d int, f func(it *grid.Iterator)) {
	for seq := 0; seq < sw.s.Size(); seq++ {
		if sw.s.Point(seq).Level(d) == 1 {
			sw.it.Seek(seq)
			f(sw.it)
		}
	}
}

// children visits the stored children of the current position in d,
// leaving the iterator where it started.
func children(it *grid.Iterator, d int, left, right func()) {
	if it.Hint(d) {
		return
	}
	it.LeftChild(d)
	if it.Valid() {
		left()
	}
	it.Up(d)
	it.RightChild(d)
	if it.Valid() {
		right()
	}
	it.Up(d)
}

// meshWidth returns 2^-level.
func meshWidth(level uint32) float64 { return math.Ldexp(1, -int(level)) }
