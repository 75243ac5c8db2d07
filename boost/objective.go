// Package boost provides the trainer-facing side of the focal loss
// objective: the callback contracts a gradient-boosting trainer invokes
// each round, adapters binding them to the focal kernel, and a compact
// multiclass gradient-boosting trainer that consumes them.
package boost

import (
	"github.com/yukawa-ml/focalboost/focal"
	"github.com/yukawa-ml/focalboost/pkg/errors"
)

// Objective is the custom training objective contract. The trainer
// calls it once per boosting round with the current raw scores for the
// training set, flattened per the agreed Layout, and consumes the
// returned gradient and Hessian arrays (same length and layout)
// immediately.
type Objective func(preds []float64, ds *Dataset) (grad, hess []float64, err error)

// EvalMetric is the custom evaluation metric contract. The trainer
// calls it once per round per validation set. higherBetter reports the
// metric's direction; a loss returns false.
type EvalMetric func(preds []float64, ds *Dataset) (name string, value float64, higherBetter bool, err error)

// FocalObjective binds the focal loss hyperparameters and flat layout
// into an Objective. The hyperparameters are validated once here and
// closed over; the returned callback is pure.
func FocalObjective(p focal.Params, layout Layout) (Objective, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !layout.valid() {
		return nil, errors.NewValidationError("layout", "unknown layout", layout)
	}

	return func(preds []float64, ds *Dataset) ([]float64, []float64, error) {
		n := ds.Len()
		if len(preds) != n*p.NumClass {
			return nil, nil, errors.NewDimensionError("FocalObjective", n*p.NumClass, len(preds), 0)
		}
		scores, err := layout.Matrix(preds, n, p.NumClass)
		if err != nil {
			return nil, nil, err
		}
		grad, hess, err := p.GradHess(scores, ds.Labels)
		if err != nil {
			return nil, nil, err
		}
		return layout.Flatten(grad), layout.Flatten(hess), nil
	}, nil
}

// FocalEvalMetric binds the focal loss hyperparameters, flat layout and
// reduction strategy into an EvalMetric. The metric is minimized.
func FocalEvalMetric(p focal.Params, layout Layout, reduction focal.Reduction) (EvalMetric, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !layout.valid() {
		return nil, errors.NewValidationError("layout", "unknown layout", layout)
	}

	return func(preds []float64, ds *Dataset) (string, float64, bool, error) {
		n := ds.Len()
		if len(preds) != n*p.NumClass {
			return focal.MetricName, 0, false, errors.NewDimensionError("FocalEvalMetric", n*p.NumClass, len(preds), 0)
		}
		scores, err := layout.Matrix(preds, n, p.NumClass)
		if err != nil {
			return focal.MetricName, 0, false, err
		}
		value, err := p.Metric(scores, ds.Labels, reduction)
		if err != nil {
			return focal.MetricName, 0, false, err
		}
		return focal.MetricName, value, false, nil
	}, nil
}
