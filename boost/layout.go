package boost

import (
	"gonum.org/v1/gonum/mat"

	"github.com/yukawa-ml/focalboost/pkg/errors"
)

// Layout fixes the flattening order used for the N*C prediction,
// gradient and Hessian arrays exchanged with the trainer. The order is
// a contract with the consuming trainer and is therefore an explicit
// parameter, never an implicit assumption.
type Layout int

const (
	// ClassMajor orders all class-0 values for every observation, then
	// all class-1 values, and so on. This is the convention LightGBM
	// expects from multiclass custom objectives and the default here.
	ClassMajor Layout = iota
	// SampleMajor orders all class values of observation 0, then
	// observation 1, and so on (row-major).
	SampleMajor
)

func (l Layout) String() string {
	switch l {
	case ClassMajor:
		return "class_major"
	case SampleMajor:
		return "sample_major"
	default:
		return "unknown"
	}
}

func (l Layout) valid() bool {
	return l == ClassMajor || l == SampleMajor
}

// index returns the flat position of cell (i, j) in an n x c matrix.
func (l Layout) index(i, j, n, c int) int {
	if l == ClassMajor {
		return j*n + i
	}
	return i*c + j
}

// Flatten copies an n x c matrix into a flat slice of length n*c in
// this layout's order.
func (l Layout) Flatten(m mat.Matrix) []float64 {
	n, c := m.Dims()
	flat := make([]float64, n*c)
	for i := 0; i < n; i++ {
		for j := 0; j < c; j++ {
			flat[l.index(i, j, n, c)] = m.At(i, j)
		}
	}
	return flat
}

// Matrix reshapes a flat slice of length n*c back into an n x c
// matrix, inverting Flatten without reordering values.
func (l Layout) Matrix(flat []float64, n, c int) (*mat.Dense, error) {
	if !l.valid() {
		return nil, errors.NewValidationError("layout", "unknown layout", l)
	}
	if len(flat) != n*c {
		return nil, errors.NewDimensionError("Layout.Matrix", n*c, len(flat), 0)
	}
	m := mat.NewDense(n, c, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < c; j++ {
			m.Set(i, j, flat[l.index(i, j, n, c)])
		}
	}
	return m, nil
}
