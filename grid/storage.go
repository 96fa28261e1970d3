package grid

import "fmt"

// Storage is an insertion-ordered collection of grid points. Every point
// gets a dense sequence number 0..Size()-1 in insertion order. Points live
// in a value arena; the lookup index maps the xxhash of the packed
// level/index encoding to the sequence numbers sharing that hash.
//
// Sequence numbers are stable until the next Clear. Storage is not safe for
// concurrent mutation; concurrent readers are fine once insertion is done.
type Storage struct {
	dim    int
	points []Point
	lookup map[uint64][]int
}

// NewStorage returns an empty storage for dim-dimensional points.
func NewStorage(dim int) (*Storage, error) {
	if dim <= 0 {
		return nil, ErrZeroDim
	}
	return &Storage{dim: dim, lookup: map[uint64][]int{}}, nil
}

// Dim returns the dimensionality of the stored points.
func (s *Storage) Dim() int { return s.dim }

// Size returns the number of stored points.
func (s *Storage) Size() int { return len(s.points) }

// Point returns the point with sequence number seq. It panics if seq is out
// of range.
func (s *Storage) Point(seq int) Point { return s.points[seq] }

// Insert adds p and returns its sequence number. Inserting a point that is
// already present returns the existing sequence number.
func (s *Storage) Insert(p Point) (int, error) {
	if p.Dim() != s.dim {
		return -1, fmt.Errorf("point has %d dims, storage %d: %w", p.Dim(), s.dim, ErrDimMismatch)
	}
	h := p.Hash()
	for _, seq := range s.lookup[h] {
		if s.points[seq].Equal(p) {
			return seq, nil
		}
	}
	seq := len(s.points)
	s.points = append(s.points, p)
	s.lookup[h] = append(s.lookup[h], seq)
	return seq, nil
}

// Find returns the sequence number of p, if present.
func (s *Storage) Find(p Point) (int, bool) {
	if p.Dim() != s.dim {
		return -1, false
	}
	seq := s.find(p.level, p.index)
	return seq, seq >= 0
}

func (s *Storage) find(level, index []uint32) int {
	for _, seq := range s.lookup[hashLevelIndex(level, index)] {
		q := s.points[seq]
		if sameLevelIndex(q.level, q.index, level, index) {
			return seq
		}
	}
	return -1
}

// Clear drops all points. Previously handed out sequence numbers become
// invalid.
func (s *Storage) Clear() {
	s.points = nil
	s.lookup = map[uint64][]int{}
}

// MaxLevel returns the largest level stored in any dimension, or 0 for an
// empty storage.
func (s *Storage) MaxLevel() uint32 {
	var m uint32
	for _, p := range s.points {
		m = max(m, p.MaxLevel())
	}
	return m
}

// Coord returns the unit-cube coordinate of point seq in dimension d.
func (s *Storage) Coord(seq, d int) float64 { return s.points[seq].Coord(d) }

// ExportLevelIndex returns the levels and indices of all points as two
// row-major Size()×Dim() arrays ordered by sequence number.
func (s *Storage) ExportLevelIndex() (level, index []uint32) {
	level = make([]uint32, 0, len(s.points)*s.dim)
	index = make([]uint32, 0, len(s.points)*s.dim)
	for _, p := range s.points {
		level = append(level, p.level...)
		index = append(index, p.index...)
	}
	return level, index
}

// InsertClosed inserts p together with every hierarchical ancestor that is
// missing, so the grid stays closed under the parent relation in every
// dimension. It returns the sequence number of p.
func (s *Storage) InsertClosed(p Point) (int, error) {
	if p.Dim() != s.dim {
		return -1, fmt.Errorf("point has %d dims, storage %d: %w", p.Dim(), s.dim, ErrDimMismatch)
	}
	if seq, ok := s.Find(p); ok {
		return seq, nil
	}
	for d := 0; d < s.dim; d++ {
		l, i := p.Get(d)
		if l == 1 {
			continue
		}
		if _, err := s.InsertClosed(p.with(d, l-1, parentIndex(i))); err != nil {
			return -1, err
		}
	}
	return s.Insert(p)
}

// Refine inserts both children of point seq in every dimension, plus any
// ancestors those children need. It returns the number of points added.
func (s *Storage) Refine(seq int) (int, error) {
	if seq < 0 || seq >= len(s.points) {
		return 0, fmt.Errorf("refine %d of %d: %w", seq, len(s.points), ErrOutOfRange)
	}
	before := len(s.points)
	p := s.points[seq]
	for d := 0; d < s.dim; d++ {
		l, i := p.Get(d)
		if l >= MaxLevel {
			return len(s.points) - before, fmt.Errorf("refine dim %d beyond level %d: %w", d, MaxLevel, ErrBadLevelIndex)
		}
		for _, child := range []uint32{2*i - 1, 2*i + 1} {
			if _, err := s.InsertClosed(p.with(d, l+1, child)); err != nil {
				return len(s.points) - before, err
			}
		}
	}
	return len(s.points) - before, nil
}
