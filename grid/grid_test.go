package grid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPoint(t *testing.T, level, index []uint32) Point {
	t.Helper()
	p, err := NewPoint(level, index)
	require.NoError(t, err)
	return p
}

func TestNewPoint(t *testing.T) {
	tests := []struct {
		level, index []uint32
		want         error
	}{
		{level: []uint32{1}, index: []uint32{1}},
		{level: []uint32{3, 2}, index: []uint32{5, 3}},
		{level: []uint32{}, index: []uint32{}, want: ErrZeroDim},
		{level: []uint32{1, 1}, index: []uint32{1}, want: ErrDimMismatch},
		{level: []uint32{0}, index: []uint32{1}, want: ErrBadLevelIndex},
		{level: []uint32{2}, index: []uint32{2}, want: ErrBadLevelIndex},
		{level: []uint32{2}, index: []uint32{5}, want: ErrBadLevelIndex},
	}
	for i, test := range tests {
		_, err := NewPoint(test.level, test.index)
		if !errors.Is(err, test.want) {
			t.Errorf("test %v (l=%v, i=%v): got err %v, want %v", i+1, test.level, test.index, err, test.want)
		}
	}
}

func TestPointHashEqual(t *testing.T) {
	a := mustPoint(t, []uint32{2, 3}, []uint32{1, 5})
	b := mustPoint(t, []uint32{2, 3}, []uint32{1, 5})
	c := mustPoint(t, []uint32{3, 2}, []uint32{5, 1})

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.False(t, a.Equal(c))
	assert.NotEqual(t, a.Hash(), c.Hash(), "hash must be order-sensitive")
	assert.InDelta(t, 0.625, a.Coord(1), 0)
	assert.Equal(t, 5, a.LevelSum())
}

func TestPointGetPanics(t *testing.T) {
	p := Root(2)
	assert.Panics(t, func() { p.Get(2) })
	assert.Panics(t, func() { p.Get(-1) })
}

func TestStorageInsertFind(t *testing.T) {
	s, err := NewStorage(2)
	require.NoError(t, err)

	p := mustPoint(t, []uint32{1, 2}, []uint32{1, 3})
	q := mustPoint(t, []uint32{2, 1}, []uint32{3, 1})
	seqP, err := s.Insert(p)
	require.NoError(t, err)
	seqQ, err := s.Insert(q)
	require.NoError(t, err)
	again, err := s.Insert(p)
	require.NoError(t, err)

	assert.Equal(t, 0, seqP)
	assert.Equal(t, 1, seqQ)
	assert.Equal(t, seqP, again)
	assert.Equal(t, 2, s.Size())

	seq, ok := s.Find(q)
	assert.True(t, ok)
	assert.Equal(t, seqQ, seq)
	_, ok = s.Find(Root(2))
	assert.False(t, ok)

	_, err = s.Insert(Root(3))
	assert.ErrorIs(t, err, ErrDimMismatch)

	level, index := s.ExportLevelIndex()
	assert.Equal(t, []uint32{1, 2, 2, 1}, level)
	assert.Equal(t, []uint32{1, 3, 3, 1}, index)

	s.Clear()
	assert.Equal(t, 0, s.Size())
	_, ok = s.Find(p)
	assert.False(t, ok)
}

func TestRegularSize(t *testing.T) {
	tests := []struct {
		dim, level int
		want       int
	}{
		{dim: 1, level: 1, want: 1},
		{dim: 1, level: 4, want: 15},
		{dim: 2, level: 2, want: 5},
		{dim: 2, level: 3, want: 17},
		{dim: 3, level: 2, want: 7},
		{dim: 3, level: 3, want: 31},
		{dim: 4, level: 3, want: 49},
	}
	for _, test := range tests {
		s, err := Regular(test.dim, test.level)
		require.NoError(t, err)
		if s.Size() != test.want {
			t.Errorf("Regular(%v, %v): got %v points, want %v", test.dim, test.level, s.Size(), test.want)
		}
		for seq := 0; seq < s.Size(); seq++ {
			if s.Point(seq).LevelSum() > test.level+test.dim-1 {
				t.Errorf("Regular(%v, %v): point %v exceeds level sum", test.dim, test.level, s.Point(seq))
			}
		}
	}
}

func TestFullSize(t *testing.T) {
	s, err := Full(2, 3)
	require.NoError(t, err)
	assert.Equal(t, 49, s.Size())
	assert.Equal(t, uint32(3), s.MaxLevel())

	_, err = Full(0, 3)
	assert.ErrorIs(t, err, ErrZeroDim)
	_, err = Regular(2, 0)
	assert.ErrorIs(t, err, ErrBadLevel)
}

// closed checks that every stored point's parents are stored as well.
func closed(t *testing.T, s *Storage) {
	t.Helper()
	for seq := 0; seq < s.Size(); seq++ {
		p := s.Point(seq)
		for d := 0; d < s.Dim(); d++ {
			l, i := p.Get(d)
			if l == 1 {
				continue
			}
			if _, ok := s.Find(p.with(d, l-1, parentIndex(i))); !ok {
				t.Fatalf("parent of %v in dim %v missing", p, d)
			}
		}
	}
}

func TestRefine(t *testing.T) {
	s, err := Regular(2, 2)
	require.NoError(t, err)
	before := s.Size()

	// refine the finest point at l=(2,1), i=(3,1)
	seq, ok := s.Find(mustPoint(t, []uint32{2, 1}, []uint32{3, 1}))
	require.True(t, ok)
	added, err := s.Refine(seq)
	require.NoError(t, err)
	assert.Equal(t, s.Size()-before, added)
	assert.Greater(t, added, 0)
	closed(t, s)

	_, ok = s.Find(mustPoint(t, []uint32{3, 1}, []uint32{7, 1}))
	assert.True(t, ok)
	_, ok = s.Find(mustPoint(t, []uint32{2, 2}, []uint32{3, 3}))
	assert.True(t, ok)

	_, err = s.Refine(s.Size())
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestInsertClosed(t *testing.T) {
	s, err := NewStorage(2)
	require.NoError(t, err)
	_, err = s.InsertClosed(mustPoint(t, []uint32{3, 2}, []uint32{5, 1}))
	require.NoError(t, err)
	closed(t, s)
	// (3,2) needs (2,2),(1,2),(3,1),(2,1),(1,1) chains: 2*3 = 6 points
	assert.Equal(t, 6, s.Size())
}

func TestIterator(t *testing.T) {
	s, err := Regular(2, 3)
	require.NoError(t, err)
	it := s.Iterator()
	require.True(t, it.Valid())
	assert.False(t, it.Hint(0))

	it.LeftChild(0)
	l, i := it.Get(0)
	assert.Equal(t, uint32(2), l)
	assert.Equal(t, uint32(1), i)
	assert.True(t, it.Valid())

	it.StepRight(0)
	_, i = it.Get(0)
	assert.Equal(t, uint32(3), i)
	assert.True(t, it.Valid())

	it.RightChild(0)
	assert.True(t, it.Valid(), "l=(3,1) i=(7,1) is in a level 3 regular grid")
	assert.True(t, it.Hint(0))

	it.RightChild(1)
	assert.False(t, it.Valid(), "absent positions are not errors")

	it.Up(1)
	it.Up(0)
	it.Up(0)
	assert.Equal(t, 0, it.Seq())

	it.Seek(s.Size() - 1)
	assert.Equal(t, s.Size()-1, it.Seq())
	it.ResetToLevelOne(0)
	it.ResetToLevelOne(1)
	assert.Equal(t, 0, it.Seq())
}

func TestBoundingBox(t *testing.T) {
	b, err := NewBoundingBox([]float64{-1, 2}, []float64{1, 6})
	require.NoError(t, err)

	u := b.ToUnit(nil, []float64{0, 3})
	assert.InDeltaSlice(t, []float64{0.5, 0.25}, u, 1e-15)
	x := b.FromUnit(nil, u)
	assert.InDeltaSlice(t, []float64{0, 3}, x, 1e-15)
	assert.True(t, b.Contains(x))
	assert.False(t, b.Contains([]float64{2, 3}))

	_, err = NewBoundingBox([]float64{1}, []float64{1})
	assert.ErrorIs(t, err, ErrBadBox)
}

func TestSplitBox(t *testing.T) {
	b := UnitBox(2)
	boxes := b.Split(3)
	require.Len(t, boxes, 9)
	for i, sub := range boxes {
		for d := 0; d < 2; d++ {
			if w := sub.Width(d); w < 1.0/3-1e-12 || w > 1.0/3+1e-12 {
				t.Errorf("box %v dim %v: width %v, want 1/3", i, d, w)
			}
		}
	}
	assert.InDeltaSlice(t, []float64{2.0 / 3, 1.0 / 3}, boxes[7].Low, 1e-12)
}

func TestPermute(t *testing.T) {
	got := Permute(nil, 2, 3)
	want := [][]int{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}}
	assert.Equal(t, want, got)

	pruned := Permute(func(p []int) bool { return p[0] == 1 }, 2, 2)
	assert.Equal(t, [][]int{{0, 0}, {0, 1}}, pruned)
}
