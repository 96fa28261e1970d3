package eval

import (
	"fmt"
	"slices"

	"github.com/SGpp/SGpp-sub010/grid"
)

// Subspace describes all grid points sharing one level tuple. Offset and
// Size address its rectangular block of slots in the flat coefficient
// store; Points counts how many of those slots belong to stored points.
//
// Next, NextDiff and JumpDiff drive the kernel's traversal. After a hit at
// this subspace a data point continues at the following subspace and may
// keep its cached per-dimension results for dimensions below NextDiff.
// After a miss (virtual slot) it continues at Next and may keep dimensions
// below JumpDiff.
type Subspace struct {
	Level     []uint32
	HInverse  []uint32
	FlatLevel int
	Offset    int
	Size      int
	Points    int
	Next      int
	NextDiff  int
	JumpDiff  int
}

// Layout is the sorted subspace table of one grid snapshot. The last entry
// is a padding subspace with a single always-virtual slot; Count() is the
// terminal cursor value.
type Layout struct {
	dim       int
	maxLevel  int
	subspaces []Subspace
	byFlat    map[int]int
	flatSize  int
}

// Dim returns the dimensionality of the grid the layout was built for.
func (l *Layout) Dim() int { return l.dim }

// MaxLevel returns the largest level in any dimension of the grid.
func (l *Layout) MaxLevel() int { return l.maxLevel }

// Count returns the number of table entries including the padding
// subspace. It doubles as the "finished" cursor value.
func (l *Layout) Count() int { return len(l.subspaces) }

// Real returns the number of subspaces holding at least one stored point.
func (l *Layout) Real() int { return len(l.subspaces) - 1 }

// Subspace returns table entry i. The returned value shares slices with the
// layout and must not be modified.
func (l *Layout) Subspace(i int) Subspace { return l.subspaces[i] }

// FlatSize returns the length of the flat coefficient store.
func (l *Layout) FlatSize() int { return l.flatSize }

// flatLevel encodes a level tuple as sum_d (level[d]-1)*maxLevel^d, a
// bijection onto [0, maxLevel^dim).
func flatLevel(level []uint32, maxLevel int) int {
	key, radix := 0, 1
	for _, lv := range level {
		key += (int(lv) - 1) * radix
		radix *= maxLevel
	}
	return key
}

// localIndex returns the position of (level, index) inside its subspace
// block: each index is shifted right by one and the results are combined
// mixed-radix with dimension 0 most significant. The kernel computes the
// same value incrementally, dimension by dimension.
func localIndex(hInverse, index []uint32) int {
	flat := 0
	for d := range index {
		flat = flat*int(hInverse[d]>>1) + int(index[d]>>1)
	}
	return flat
}

// buildLayout groups the stored points into subspaces, sorts them, assigns
// flat offsets, computes the skip metadata and appends the padding entry.
func buildLayout(s *grid.Storage) (*Layout, error) {
	if s.Size() == 0 {
		return nil, ErrEmptyGrid
	}
	dim := s.Dim()
	if dim <= 0 {
		return nil, ErrZeroDim
	}
	maxLevel := int(s.MaxLevel())
	for d, radix := 0, 1; d < dim; d++ {
		if radix > int(^uint(0)>>1)/maxLevel {
			return nil, fmt.Errorf("level key %d^%d: %w", maxLevel, dim, ErrLevelOverflow)
		}
		radix *= maxLevel
	}

	l := &Layout{dim: dim, maxLevel: maxLevel}
	byFlat := map[int]int{}
	for seq := 0; seq < s.Size(); seq++ {
		p := s.Point(seq)
		level := make([]uint32, dim)
		for d := range level {
			level[d] = p.Level(d)
		}
		key := flatLevel(level, maxLevel)
		if i, ok := byFlat[key]; ok {
			l.subspaces[i].Points++
			continue
		}
		sub := Subspace{Level: level, HInverse: make([]uint32, dim), FlatLevel: key, Size: 1, Points: 1}
		for d, lv := range level {
			sub.HInverse[d] = 1 << lv
			sub.Size *= 1 << (lv - 1)
		}
		byFlat[key] = len(l.subspaces)
		l.subspaces = append(l.subspaces, sub)
	}

	slices.SortFunc(l.subspaces, func(a, b Subspace) int { return slices.Compare(a.Level, b.Level) })

	l.byFlat = make(map[int]int, len(l.subspaces))
	for i := range l.subspaces {
		l.subspaces[i].Offset = l.flatSize
		l.flatSize += l.subspaces[i].Size
		l.byFlat[l.subspaces[i].FlatLevel] = i
	}

	pad := Subspace{
		Level:     make([]uint32, dim),
		HInverse:  make([]uint32, dim),
		FlatLevel: -1,
		Offset:    l.flatSize,
		Size:      1,
	}
	for d := 0; d < dim; d++ {
		pad.Level[d], pad.HInverse[d] = 1, 2
	}
	l.flatSize++
	l.subspaces = append(l.subspaces, pad)

	l.computeSkips()
	return l, nil
}

// computeSkips fills Next, NextDiff and JumpDiff by walking the sorted table
// in reverse.
//
// A miss at subspace i means the point's hat in i is absent. In a grid
// closed under the parent relation all of its descendants are absent too,
// in particular its descendants along the last dimension. Those are found
// in the subspaces that directly follow i and share every level but the
// last, so a miss jumps past that run: Next[i] is the first later subspace
// whose leading dim-1 levels differ from i's. JumpDiff[i] is the first
// dimension at which that target differs from i.
func (l *Layout) computeSkips() {
	dim := l.dim
	nreal := l.Real()
	subs := l.subspaces

	pad := &subs[nreal]
	pad.Next, pad.NextDiff, pad.JumpDiff = nreal+1, 0, 0

	// The last real subspace is followed only by the padding entry, whose
	// tuple is unrelated: recompute everything. This is also the whole
	// computation for a grid with a single subspace.
	last := &subs[nreal-1]
	last.Next, last.NextDiff, last.JumpDiff = nreal, 0, 0

	for i := nreal - 2; i >= 0; i-- {
		cur, succ := &subs[i], &subs[i+1]
		k := firstDiff(cur.Level, succ.Level)
		cur.NextDiff = k
		if k < dim-1 {
			cur.Next, cur.JumpDiff = i+1, k
			continue
		}
		// succ only refines the last dimension: anything succ may skip, i
		// may skip as well, and succ itself is skipped.
		cur.Next, cur.JumpDiff = succ.Next, succ.JumpDiff
	}
}

func firstDiff(a, b []uint32) int {
	for d := range a {
		if a[d] != b[d] {
			return d
		}
	}
	return len(a)
}
