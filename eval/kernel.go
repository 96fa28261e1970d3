package eval

import "github.com/ajroetker/go-highway/hwy"

// kernel holds one worker's scratch state for walking the subspace table
// with a batch of data points. Per-point state is stored dimension-major:
// entry d*width+p belongs to dimension d of batch point p and holds the
// running flat offset and hat product over dimensions 0..d.
type kernel[T hwy.FloatsNative] struct {
	layout *Layout
	data   *Dataset[T]
	width  int
	lanes  int

	cursor    []int
	recompute []int
	flat      []int
	prod      []T
	value     []T

	group []int
	x     []T
	index []T
	prev  []T
	out   []T
}

func newKernel[T hwy.FloatsNative](layout *Layout, data *Dataset[T], width int) *kernel[T] {
	lanes := hwy.MaxLanes[T]()
	gw := roundUp(width, lanes)
	dim := layout.dim
	return &kernel[T]{
		layout:    layout,
		data:      data,
		width:     width,
		lanes:     lanes,
		cursor:    make([]int, width),
		recompute: make([]int, width),
		flat:      make([]int, dim*width),
		prod:      make([]T, dim*width),
		value:     make([]T, width),
		group:     make([]int, width),
		x:         make([]T, gw),
		index:     make([]T, gw),
		prev:      make([]T, gw),
		out:       make([]T, gw),
	}
}

// multiply evaluates the data rows [start, stop) against flat and writes
// one value per row into result.
func (k *kernel[T]) multiply(flat []T, start, stop int, result []T) {
	for row := start; row < stop; row += k.width {
		n := min(k.width, stop-row)
		k.walk(row, n, func(p, slot int, phi T) bool {
			c := flat[slot]
			if isNaN(c) {
				return false
			}
			k.value[p] += phi * c
			return true
		})
		copy(result[row:row+n], k.value[:n])
	}
}

// multiplyTranspose accumulates source[r]*phi_j(x_r) into the flat slot of
// every stored point j whose support holds x_r, for r in [start, stop).
func (k *kernel[T]) multiplyTranspose(flat []T, start, stop int, source []T) {
	for row := start; row < stop; row += k.width {
		n := min(k.width, stop-row)
		k.walk(row, n, func(p, slot int, phi T) bool {
			if isNaN(atomicLoad(&flat[slot])) {
				return false
			}
			atomicAdd(&flat[slot], phi*source[row+p])
			return true
		})
	}
}

// walk moves the first n points of the batch starting at data row row
// through the subspace table. For every subspace a point visits, visit is
// called with the point's slot and hat product; it reports whether the slot
// holds a stored point. Remaining batch points are finished from the start.
func (k *kernel[T]) walk(row, n int, visit func(p, slot int, phi T) bool) {
	l := k.layout
	dim := l.dim
	nreal := l.Real()

	active := n
	for p := 0; p < k.width; p++ {
		k.value[p] = 0
		k.recompute[p] = 0
		k.cursor[p] = 0
		if p >= n {
			k.cursor[p] = l.Count()
		}
	}

	for j := 0; j < nreal && active > 0; j++ {
		sub := &l.subspaces[j]

		m, from := 0, dim
		for p := 0; p < n; p++ {
			if k.cursor[p] == j {
				k.group[m] = p
				m++
				from = min(from, k.recompute[p])
			}
		}
		if m == 0 {
			continue
		}

		for d := from; d < dim; d++ {
			k.dimension(row, m, d, sub.HInverse[d])
		}

		last := (dim - 1) * k.width
		for g := 0; g < m; g++ {
			p := k.group[g]
			if visit(p, sub.Offset+k.flat[last+p], k.prod[last+p]) {
				k.cursor[p] = j + 1
				k.recompute[p] = sub.NextDiff
			} else {
				k.cursor[p] = sub.Next
				k.recompute[p] = sub.JumpDiff
			}
			if k.cursor[p] >= nreal {
				active--
			}
		}
	}
}

// dimension extends the running flat offset and hat product of the m
// grouped points by dimension d at resolution hInv. Lanes past m are
// filled with inert values so the vector loop can run over whole vectors.
func (k *kernel[T]) dimension(row, m, d int, hInv uint32) {
	dim := k.layout.dim
	base := d * k.width
	half := int(hInv >> 1)
	top := int(hInv) - 1
	h := T(hInv)

	gw := roundUp(m, k.lanes)
	for g := 0; g < gw; g++ {
		if g >= m {
			k.x[g], k.index[g], k.prev[g] = 0, 1, 0
			continue
		}
		p := k.group[g]
		x := k.data.data[(row+p)*dim+d]
		i := min(int(x*h)|1, top)
		k.x[g] = x
		k.index[g] = T(i)
		if d == 0 {
			k.prev[g] = 1
			k.flat[base+p] = i >> 1
		} else {
			k.prev[g] = k.prod[base-k.width+p]
			k.flat[base+p] = k.flat[base-k.width+p]*half + i>>1
		}
	}

	hatProduct(h, k.x[:gw], k.index[:gw], k.prev[:gw], k.out[:gw])
	for g := 0; g < m; g++ {
		k.prod[base+k.group[g]] = k.out[g]
	}
}
