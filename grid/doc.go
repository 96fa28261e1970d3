// Package grid holds hierarchical sparse grids: points identified by
// per-dimension (level, index) pairs, an insertion-ordered storage assigning
// dense sequence numbers, tree navigation for per-dimension sweeps, and
// generators for regular, full and locally refined grids.
//
// Grids live on the unit cube. A BoundingBox maps them onto a
// hyper-rectangular domain.
package grid
