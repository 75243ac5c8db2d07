// Package metrics provides the classification scores used to evaluate
// focal-loss-trained models.
package metrics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/yukawa-ml/focalboost/pkg/errors"
)

// Accuracy returns the fraction of matching label pairs.
func Accuracy(yTrue, yPred []int) (float64, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, errors.NewValueError("Accuracy", "empty label slice")
	}
	if len(yPred) != n {
		return 0, errors.NewDimensionError("Accuracy", n, len(yPred), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ErrorRate returns 1 - Accuracy.
func ErrorRate(yTrue, yPred []int) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}

// ArgmaxRows returns the column index of the largest value in each row,
// turning an N x C score or probability matrix into predicted labels.
func ArgmaxRows(m mat.Matrix) []int {
	rows, cols := m.Dims()
	out := make([]int, rows)
	for i := 0; i < rows; i++ {
		best := 0
		bestVal := m.At(i, 0)
		for j := 1; j < cols; j++ {
			if v := m.At(i, j); v > bestVal {
				best = j
				bestVal = v
			}
		}
		out[i] = best
	}
	return out
}

// LogLoss computes the mean negative log-probability assigned to the
// true class over an N x C probability matrix. Probabilities are
// stabilized away from zero before the log.
func LogLoss(proba mat.Matrix, labels []int) (float64, error) {
	rows, cols := proba.Dims()
	if rows == 0 || cols == 0 {
		return 0, errors.NewValueError("LogLoss", "empty probability matrix")
	}
	if len(labels) != rows {
		return 0, errors.NewDimensionError("LogLoss", rows, len(labels), 0)
	}

	var sum float64
	for i, label := range labels {
		if label < 0 || label >= cols {
			return 0, errors.Newf("LogLoss: label %d at index %d outside [0, %d)", label, i, cols)
		}
		sum -= errors.StabilizeLog(proba.At(i, label))
	}
	return sum / float64(rows), nil
}
