package grid

// Iterator walks the implicit per-dimension binary trees of a Storage. It
// carries a mutable level/index position that need not be stored; Seq
// reports -1 for positions absent from the grid. The sweeps in package
// updown move an Iterator down and up one dimension at a time.
type Iterator struct {
	s     *Storage
	level []uint32
	index []uint32
	seq   int
}

// Iterator returns an iterator positioned at the root (1,...,1).
func (s *Storage) Iterator() *Iterator {
	it := &Iterator{
		s:     s,
		level: make([]uint32, s.dim),
		index: make([]uint32, s.dim),
	}
	for d := range it.level {
		it.level[d], it.index[d] = 1, 1
	}
	it.update()
	return it
}

func (it *Iterator) update() { it.seq = it.s.find(it.level, it.index) }

// Seek moves the iterator to stored point seq.
func (it *Iterator) Seek(seq int) {
	p := it.s.points[seq]
	copy(it.level, p.level)
	copy(it.index, p.index)
	it.seq = seq
}

// Dim returns the dimensionality of the grid being walked.
func (it *Iterator) Dim() int { return len(it.level) }

// Seq returns the sequence number of the current position, or -1.
func (it *Iterator) Seq() int { return it.seq }

// Valid reports whether the current position is a stored point.
func (it *Iterator) Valid() bool { return it.seq >= 0 }

// Get returns the level and index of the current position in dimension d.
func (it *Iterator) Get(d int) (level, index uint32) { return it.level[d], it.index[d] }

// LeftChild moves to the left child in dimension d.
func (it *Iterator) LeftChild(d int) {
	it.index[d] = 2*it.index[d] - 1
	it.level[d]++
	it.update()
}

// RightChild moves to the right child in dimension d.
func (it *Iterator) RightChild(d int) {
	it.index[d] = 2*it.index[d] + 1
	it.level[d]++
	it.update()
}

// StepRight moves from a left child to its right sibling in dimension d.
func (it *Iterator) StepRight(d int) {
	it.index[d] += 2
	it.update()
}

// Up moves to the hierarchical parent in dimension d. It must not be called
// at level one.
func (it *Iterator) Up(d int) {
	it.index[d] = parentIndex(it.index[d])
	it.level[d]--
	it.update()
}

// ResetToLevelOne moves to level one in dimension d.
func (it *Iterator) ResetToLevelOne(d int) {
	it.level[d], it.index[d] = 1, 1
	it.update()
}

// Hint reports whether the current position has no stored child in
// dimension d. For adaptive grids this is the normal way a subtree ends.
func (it *Iterator) Hint(d int) bool {
	l, i := it.level[d], it.index[d]
	if l >= MaxLevel {
		return true
	}
	it.level[d] = l + 1
	it.index[d] = 2*i - 1
	left := it.s.find(it.level, it.index)
	it.index[d] = 2*i + 1
	right := it.s.find(it.level, it.index)
	it.level[d], it.index[d] = l, i
	return left < 0 && right < 0
}
