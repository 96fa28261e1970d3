// Package eval evaluates sparse grid functions at many data points at once.
//
// Prepare groups the grid points into subspaces (all points sharing one
// level tuple), sorts them lexicographically and lays out one rectangular
// block of coefficient slots per subspace in a flat array. Slots that
// belong to no stored point hold NaN. Multiply walks that table for a batch
// of data points, computing the hat products one dimension at a time with
// vector instructions and reusing the leading dimensions whenever
// consecutive subspaces agree on them. A NaN slot tells the walk that the
// point's support chain ends there, and the precomputed Next entry skips
// every subspace that could only hold descendants of the missing point.
//
// The grid must be closed under the parent relation: every ancestor of a
// stored point is stored as well. Generators and Storage.Refine in package
// grid maintain this.
package eval
