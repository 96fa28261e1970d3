package eval

import (
	"fmt"

	"github.com/ajroetker/go-highway/hwy"
)

// Dataset is a row-major rows×dim matrix of data points. Coordinates must
// lie in [0,1]; this is not checked.
type Dataset[T hwy.FloatsNative] struct {
	rows int
	dim  int
	data []T
}

// NewDataset wraps data (len rows*dim, row-major) without copying.
func NewDataset[T hwy.FloatsNative](rows, dim int, data []T) (*Dataset[T], error) {
	if dim <= 0 {
		return nil, ErrZeroDim
	}
	if rows <= 0 || len(data) != rows*dim {
		return nil, fmt.Errorf("%d values for %dx%d: %w", len(data), rows, dim, ErrBadData)
	}
	return &Dataset[T]{rows: rows, dim: dim, data: data}, nil
}

// Rows returns the number of data points.
func (ds *Dataset[T]) Rows() int { return ds.rows }

// Dim returns the number of coordinates per data point.
func (ds *Dataset[T]) Dim() int { return ds.dim }

// Row returns data point i. The slice aliases the dataset.
func (ds *Dataset[T]) Row(i int) []T { return ds.data[i*ds.dim : (i+1)*ds.dim] }

// At returns coordinate d of data point i.
func (ds *Dataset[T]) At(i, d int) T { return ds.data[i*ds.dim+d] }

// padded returns a copy whose row count is rounded up to a multiple of
// multiple by replicating the final row, followed by a zeroed guard region
// of one more multiple of rows that lies beyond the returned row count.
func (ds *Dataset[T]) padded(multiple int) *Dataset[T] {
	rows := roundUp(ds.rows, multiple)
	data := make([]T, (rows+multiple)*ds.dim)
	copy(data, ds.data)
	last := ds.Row(ds.rows - 1)
	for i := ds.rows; i < rows; i++ {
		copy(data[i*ds.dim:], last)
	}
	return &Dataset[T]{rows: rows, dim: ds.dim, data: data[:rows*ds.dim]}
}
