package focal

import (
	"gonum.org/v1/gonum/mat"

	"github.com/yukawa-ml/focalboost/pkg/errors"
)

// Reduction selects how the elementwise loss grid is reduced to the
// scalar eval metric. The two strategies differ by a constant factor of
// N: equivalent for monitoring trends within one validation set, not
// for comparing across differently sized ones.
type Reduction int

const (
	// ReduceMean averages the loss over all N*C cells.
	ReduceMean Reduction = iota
	// ReduceSumPerClass sums the loss over all cells and divides by the
	// number of classes only.
	ReduceSumPerClass
)

func (r Reduction) String() string {
	switch r {
	case ReduceMean:
		return "mean"
	case ReduceSumPerClass:
		return "sum_per_class"
	default:
		return "unknown"
	}
}

// MetricName is the name reported for the focal eval metric.
const MetricName = "focal_loss"

// Metric evaluates the loss kernel over the full N x C grid and reduces
// it to a single scalar. Lower is better.
func (p Params) Metric(scores mat.Matrix, labels []int, reduction Reduction) (float64, error) {
	lossGrid, err := p.LossMatrix(scores, labels)
	if err != nil {
		return 0, err
	}

	rows, cols := lossGrid.Dims()
	var sum float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			sum += lossGrid.At(i, j)
		}
	}

	var value float64
	switch reduction {
	case ReduceMean:
		value = sum / float64(rows*cols)
	case ReduceSumPerClass:
		value = sum / float64(cols)
	default:
		return 0, errors.NewValidationError("reduction", "unknown reduction strategy", reduction)
	}

	if err := errors.CheckScalar("focal_metric", value, 0); err != nil {
		return 0, err
	}
	return value, nil
}
