// Package updown applies separable operators to sparse grid coefficient
// vectors without assembling a matrix.
//
// Each one-dimensional operator splits into an up part, which collects the
// contributions of hierarchical descendants, and a down part, which carries
// the contributions of ancestors and the point itself towards the leaves.
// Both walk the binary tree of one dimension ("pole") at a time with a
// grid.Iterator. The multi-dimensional operator is composed from these by
// the unidirectional principle: ups run before the sweeps of lower
// dimensions and downs after, so every intermediate value lives on a point
// of the grid. This requires the grid to be closed under the parent
// relation.
//
// Operators share one iterator between calls and are not safe for
// concurrent use.
package updown
