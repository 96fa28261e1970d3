package grid

import "fmt"

// Regular returns a storage holding the regular sparse grid of the given
// level: every point whose level sum |l|_1 is at most level+dim-1.
func Regular(dim, level int) (*Storage, error) {
	limit := level + dim - 1
	return generate(dim, level, func(prefix []int) bool {
		// prefix holds zero-based levels; every dim contributes at least 1
		sum := dim
		for _, v := range prefix {
			sum += v
		}
		return sum > limit
	})
}

// Full returns a storage holding the full grid of the given level: every
// point whose level is at most level in each dimension.
func Full(dim, level int) (*Storage, error) {
	return generate(dim, level, nil)
}

func generate(dim, level int, skip func([]int) bool) (*Storage, error) {
	if dim <= 0 {
		return nil, ErrZeroDim
	}
	if level < 1 || level > MaxLevel {
		return nil, fmt.Errorf("level %d: %w", level, ErrBadLevel)
	}
	s, err := NewStorage(dim)
	if err != nil {
		return nil, err
	}

	levels := make([]int, dim)
	for d := range levels {
		levels[d] = level
	}
	l := make([]uint32, dim)
	idx := make([]uint32, dim)
	for _, ltuple := range Permute(skip, levels...) {
		counts := make([]int, dim)
		for d, v := range ltuple {
			l[d] = uint32(v + 1)
			counts[d] = 1 << v
		}
		for _, ituple := range Permute(nil, counts...) {
			for d, v := range ituple {
				idx[d] = uint32(2*v + 1)
			}
			p, err := NewPoint(l, idx)
			if err != nil {
				return nil, err
			}
			if _, err := s.Insert(p); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// Permute returns every tuple of the cartesian product [0,dimensions[0]) ×
// [0,dimensions[1]) × ... in lexicographic order (first entry most
// significant). If skip is not nil, any prefix (including complete tuples)
// for which it returns true is pruned together with all its extensions.
func Permute(skip func([]int) bool, dimensions ...int) [][]int {
	if len(dimensions) == 0 {
		return nil
	}
	return permute(skip, dimensions, make([]int, 0, len(dimensions)))
}

func permute(skip func([]int) bool, dimensions []int, prefix []int) [][]int {
	set := make([][]int, 0)
	n := dimensions[0]
	for i := 0; i < n; i++ {
		next := append(prefix[:len(prefix):len(prefix)], i)
		if skip != nil && skip(next) {
			continue
		}
		if len(dimensions) == 1 {
			set = append(set, next)
			continue
		}
		set = append(set, permute(skip, dimensions[1:], next)...)
	}
	return set
}
