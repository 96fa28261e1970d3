package grid

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// MaxLevel is the finest level a point may carry in any dimension. It keeps
// 2^level representable in the kernel's integer index arithmetic.
const MaxLevel = 30

// Point identifies one hierarchical hat basis function by its per-dimension
// (level, index) pairs. Indices are odd and lie in [1, 2^level-1]; even
// indices describe the same function at a coarser level and are never
// stored. A Point is a value: it is copied into a Storage on insertion and
// never mutated afterwards.
type Point struct {
	level []uint32
	index []uint32
}

// NewPoint builds a point from level and index tuples of equal length.
func NewPoint(level, index []uint32) (Point, error) {
	if len(level) == 0 {
		return Point{}, ErrZeroDim
	}
	if len(level) != len(index) {
		return Point{}, fmt.Errorf("%d levels, %d indices: %w", len(level), len(index), ErrDimMismatch)
	}
	for d := range level {
		if !validPair(level[d], index[d]) {
			return Point{}, fmt.Errorf("dim %d (l=%d, i=%d): %w", d, level[d], index[d], ErrBadLevelIndex)
		}
	}
	return Point{
		level: append([]uint32(nil), level...),
		index: append([]uint32(nil), index...),
	}, nil
}

// Root returns the level-one point (1,1,...,1) of the given dimensionality.
func Root(dim int) Point {
	p := Point{level: make([]uint32, dim), index: make([]uint32, dim)}
	for d := 0; d < dim; d++ {
		p.level[d] = 1
		p.index[d] = 1
	}
	return p
}

func validPair(l, i uint32) bool {
	return l >= 1 && l <= MaxLevel && i%2 == 1 && i < 1<<l
}

// Dim returns the dimensionality of p.
func (p Point) Dim() int { return len(p.level) }

// Get returns the level and index of p in dimension d. It panics if d is
// out of range.
func (p Point) Get(d int) (level, index uint32) {
	if d < 0 || d >= len(p.level) {
		panic(fmt.Sprintf("grid: dimension %d out of range for %d-dimensional point", d, len(p.level)))
	}
	return p.level[d], p.index[d]
}

// Level returns the level of p in dimension d.
func (p Point) Level(d int) uint32 { l, _ := p.Get(d); return l }

// Index returns the index of p in dimension d.
func (p Point) Index(d int) uint32 { _, i := p.Get(d); return i }

// LevelSum returns |l|_1.
func (p Point) LevelSum() int {
	s := 0
	for _, l := range p.level {
		s += int(l)
	}
	return s
}

// MaxLevel returns the largest level over all dimensions.
func (p Point) MaxLevel() uint32 {
	var m uint32
	for _, l := range p.level {
		m = max(m, l)
	}
	return m
}

// Coord returns the position index/2^level of p in dimension d of the unit
// cube.
func (p Point) Coord(d int) float64 {
	l, i := p.Get(d)
	return float64(i) / float64(uint64(1)<<l)
}

// Hash returns a 64-bit hash of the packed level/index encoding. It is
// order-sensitive: permuting dimensions changes the hash.
func (p Point) Hash() uint64 { return hashLevelIndex(p.level, p.index) }

// Equal reports whether p and q carry identical level and index tuples.
func (p Point) Equal(q Point) bool { return sameLevelIndex(p.level, p.index, q.level, q.index) }

func (p Point) String() string {
	return fmt.Sprintf("l=%v i=%v", p.level, p.index)
}

// with returns a copy of p whose dimension d is replaced by (l, i).
func (p Point) with(d int, l, i uint32) Point {
	q := Point{
		level: append([]uint32(nil), p.level...),
		index: append([]uint32(nil), p.index...),
	}
	q.level[d], q.index[d] = l, i
	return q
}

// hashLevelIndex packs every (level, index) pair into one little-endian
// uint64 (level in the high word) and hashes the buffer.
func hashLevelIndex(level, index []uint32) uint64 {
	var stack [8 * 16]byte
	buf := stack[:0]
	if n := 8 * len(level); n > len(stack) {
		buf = make([]byte, 0, n)
	}
	for d := range level {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(level[d])<<32|uint64(index[d]))
	}
	return xxhash.Sum64(buf)
}

func sameLevelIndex(l1, i1, l2, i2 []uint32) bool {
	if len(l1) != len(l2) {
		return false
	}
	for d := range l1 {
		if l1[d] != l2[d] || i1[d] != i2[d] {
			return false
		}
	}
	return true
}

// parentIndex returns the index of the hierarchical parent of (l, i) at
// level l-1.
func parentIndex(i uint32) uint32 { return (i >> 1) | 1 }
