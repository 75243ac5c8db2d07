package boost

import (
	"math"
	"math/rand"
	"os"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/yukawa-ml/focalboost/pkg/errors"
)

// Dataset is the handle passed to Objective and EvalMetric callbacks.
// It bundles the feature matrix with the integer class labels the
// callbacks differentiate against.
type Dataset struct {
	X      *mat.Dense
	Labels []int
	Name   string
}

// NewDataset validates that X and labels agree on the number of
// observations and wraps them in a handle.
func NewDataset(X *mat.Dense, labels []int) (*Dataset, error) {
	if X == nil {
		return nil, errors.NewValueError("NewDataset", "nil feature matrix")
	}
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.NewValueError("NewDataset", "empty feature matrix")
	}
	if len(labels) != rows {
		return nil, errors.NewDimensionError("NewDataset", rows, len(labels), 0)
	}
	return &Dataset{X: X, Labels: labels}, nil
}

// WithName attaches a name used in eval-result keys (e.g. "valid_0").
func (d *Dataset) WithName(name string) *Dataset {
	d.Name = name
	return d
}

// Len returns the number of observations.
func (d *Dataset) Len() int {
	rows, _ := d.X.Dims()
	return rows
}

// NumFeatures returns the number of feature columns.
func (d *Dataset) NumFeatures() int {
	_, cols := d.X.Dims()
	return cols
}

// row copies observation i into dst, allocating when dst is nil.
func (d *Dataset) row(i int, dst []float64) []float64 {
	return mat.Row(dst, i, d.X)
}

// TrainTestSplit shuffles the dataset with the given seed and splits it
// into train and test parts. testFraction must be in (0, 1).
func TrainTestSplit(d *Dataset, testFraction float64, seed int64) (train, test *Dataset, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, errors.NewValidationError("test_fraction", "must be in (0, 1)", testFraction)
	}
	n := d.Len()
	testSize := int(math.Round(float64(n) * testFraction))
	if testSize == 0 || testSize == n {
		return nil, nil, errors.NewValueError("TrainTestSplit", "split leaves an empty partition")
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	build := func(idx []int) (*Dataset, error) {
		X := mat.NewDense(len(idx), d.NumFeatures(), nil)
		labels := make([]int, len(idx))
		for to, from := range idx {
			X.SetRow(to, d.row(from, nil))
			labels[to] = d.Labels[from]
		}
		return NewDataset(X, labels)
	}

	test, err = build(perm[:testSize])
	if err != nil {
		return nil, nil, err
	}
	train, err = build(perm[testSize:])
	if err != nil {
		return nil, nil, err
	}
	return train, test, nil
}

// LoadDatasetNPY reads a feature matrix and a label vector from two
// NumPy .npy files. Labels may be stored as floats; they are truncated
// to integer class indices.
func LoadDatasetNPY(xPath, yPath string) (*Dataset, error) {
	xf, err := os.Open(xPath)
	if err != nil {
		return nil, errors.Wrapf(err, "LoadDatasetNPY: open %s", xPath)
	}
	defer xf.Close()

	var X mat.Dense
	if err := npyio.Read(xf, &X); err != nil {
		return nil, errors.Wrapf(err, "LoadDatasetNPY: read %s", xPath)
	}

	yf, err := os.Open(yPath)
	if err != nil {
		return nil, errors.Wrapf(err, "LoadDatasetNPY: open %s", yPath)
	}
	defer yf.Close()

	var y []float64
	if err := npyio.Read(yf, &y); err != nil {
		return nil, errors.Wrapf(err, "LoadDatasetNPY: read %s", yPath)
	}

	labels := make([]int, len(y))
	for i, v := range y {
		labels[i] = int(v)
	}
	return NewDataset(&X, labels)
}
