package grid

import "fmt"

// BoundingBox maps the unit cube the grid lives on to a hyper-rectangular
// domain defined by Low and Up values in each dimension.
type BoundingBox struct {
	Low []float64
	Up  []float64
}

// UnitBox returns the unit cube [0,1]^dim.
func UnitBox(dim int) *BoundingBox {
	b := &BoundingBox{Low: make([]float64, dim), Up: make([]float64, dim)}
	for d := range b.Up {
		b.Up[d] = 1
	}
	return b
}

// NewBoundingBox validates and returns a box with the given bounds.
func NewBoundingBox(low, up []float64) (*BoundingBox, error) {
	if len(low) == 0 {
		return nil, ErrZeroDim
	}
	if len(low) != len(up) {
		return nil, fmt.Errorf("%d lower, %d upper bounds: %w", len(low), len(up), ErrDimMismatch)
	}
	for d := range low {
		if !(low[d] < up[d]) {
			return nil, fmt.Errorf("dim %d [%v,%v]: %w", d, low[d], up[d], ErrBadBox)
		}
	}
	return &BoundingBox{Low: append([]float64(nil), low...), Up: append([]float64(nil), up...)}, nil
}

// Dim returns the dimensionality of the box.
func (b *BoundingBox) Dim() int { return len(b.Low) }

// Width returns Up[d]-Low[d].
func (b *BoundingBox) Width(d int) float64 { return b.Up[d] - b.Low[d] }

// ToUnit maps x from the box into the unit cube, writing into dst (allocated
// if nil).
func (b *BoundingBox) ToUnit(dst, x []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(x))
	}
	for d := range x {
		dst[d] = (x[d] - b.Low[d]) / b.Width(d)
	}
	return dst
}

// FromUnit maps a unit-cube coordinate u into the box.
func (b *BoundingBox) FromUnit(dst, u []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(u))
	}
	for d := range u {
		dst[d] = b.Low[d] + u[d]*b.Width(d)
	}
	return dst
}

// Contains reports whether x lies inside the closed box.
func (b *BoundingBox) Contains(x []float64) bool {
	for d := range x {
		if x[d] < b.Low[d] || x[d] > b.Up[d] {
			return false
		}
	}
	return true
}

// Split tiles the box into n^dim equally sized sub-boxes, ordered with the
// first dimension varying slowest.
func (b *BoundingBox) Split(n int) []*BoundingBox {
	ndim := b.Dim()
	dims := make([]int, ndim)
	for d := range dims {
		dims[d] = n
	}
	combs := Permute(nil, dims...)
	boxes := make([]*BoundingBox, len(combs))
	for i, comb := range combs {
		sub := &BoundingBox{Low: make([]float64, ndim), Up: make([]float64, ndim)}
		for dim, section := range comb {
			dx := b.Width(dim) / float64(n)
			sub.Low[dim] = b.Low[dim] + dx*float64(section)
			sub.Up[dim] = sub.Low[dim] + dx
		}
		boxes[i] = sub
	}
	return boxes
}
