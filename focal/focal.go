// Package focal implements the multiclass focal loss kernel together
// with its analytic first and second derivatives and a centered
// finite-difference oracle for verifying them.
//
// The multiclass adaptation treats each class as an independent
// one-vs-rest binary problem: the loss is applied elementwise to every
// (observation, class) cell of the one-hot-expanded label matrix, not
// through a joint softmax distribution.
package focal

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/yukawa-ml/focalboost/pkg/errors"
)

// DefaultEps is the default clipping bound keeping sigmoid outputs
// strictly inside (0, 1) before the logarithm. The original formulation
// leaves probabilities unclipped; clipping is a deliberate deviation
// that trades a bounded bias for finite losses on extreme scores.
const DefaultEps = 1e-15

// DefaultStep is the default step size for the finite-difference
// derivative oracle.
const DefaultStep = 1e-6

// Params holds the focal loss hyperparameters, fixed for a training
// run. The zero value is not usable; call Validate before use or build
// through the boost adapters, which validate on construction.
type Params struct {
	// Alpha is the class-balance weight in [0, 1] applied to positive
	// cells; negative cells get 1-Alpha.
	Alpha float64
	// Gamma >= 0 is the focusing parameter. Larger values suppress the
	// contribution of already-well-classified cells. Gamma = 0 with
	// Alpha = 0.5 recovers 0.5 * binary cross-entropy with logits.
	Gamma float64
	// NumClass is the number of classes C, at least 2.
	NumClass int
	// Eps bounds sigmoid outputs away from {0, 1}. Zero means
	// DefaultEps.
	Eps float64
	// UseNumericDiff switches GradHess to the finite-difference scheme
	// instead of the closed-form derivatives. Analytic derivatives are
	// the default; the numeric path reproduces the original
	// finite-difference behavior and serves as a test oracle.
	UseNumericDiff bool
	// Step is the finite-difference step size. Zero means DefaultStep.
	Step float64
}

// Validate checks the hyperparameters.
func (p Params) Validate() error {
	if p.Alpha < 0 || p.Alpha > 1 {
		return errors.NewValidationError("alpha", "must be in [0, 1]", p.Alpha)
	}
	if p.Gamma < 0 || math.IsNaN(p.Gamma) {
		return errors.NewValidationError("gamma", "must be >= 0", p.Gamma)
	}
	if p.NumClass < 2 {
		return errors.NewValidationError("num_class", "must be >= 2", p.NumClass)
	}
	if p.Eps < 0 || p.Eps >= 0.5 {
		return errors.NewValidationError("eps", "must be in [0, 0.5)", p.Eps)
	}
	if p.Step < 0 {
		return errors.NewValidationError("step", "must be >= 0", p.Step)
	}
	return nil
}

func (p Params) eps() float64 {
	if p.Eps == 0 {
		return DefaultEps
	}
	return p.Eps
}

func (p Params) step() float64 {
	if p.Step == 0 {
		return DefaultStep
	}
	return p.Step
}

// Sigmoid computes 1 / (1 + exp(-x)).
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// prob returns the clipped sigmoid of x.
func (p Params) prob(x float64) float64 {
	return errors.ClipValue(Sigmoid(x), p.eps(), 1-p.eps())
}

// Loss evaluates the per-cell focal loss for a raw score x and a
// one-hot label component t (0 or 1):
//
//	pr         = sigmoid(x)
//	weight     = alpha*t + (1-alpha)*(1-t)
//	modulation = (1 - (t*pr + (1-t)*(1-pr)))^gamma
//	ce         = t*log(pr) + (1-t)*log(1-pr)
//	loss       = -weight * modulation * ce
func (p Params) Loss(x, t float64) float64 {
	pr := p.prob(x)
	weight := p.Alpha*t + (1-p.Alpha)*(1-t)
	pt := t*pr + (1-t)*(1-pr)
	modulation := math.Pow(1-pt, p.Gamma)
	ce := t*math.Log(pr) + (1-t)*math.Log(1-pr)
	return -weight * modulation * ce
}

// OneHot expands integer class labels into an N x C one-hot matrix.
// Each row sums to exactly 1. Labels outside [0, numClass) are an
// error.
func OneHot(labels []int, numClass int) (*mat.Dense, error) {
	if len(labels) == 0 {
		return nil, errors.NewValueError("OneHot", "empty label slice")
	}
	if numClass < 2 {
		return nil, errors.NewValidationError("num_class", "must be >= 2", numClass)
	}
	oh := mat.NewDense(len(labels), numClass, nil)
	for i, label := range labels {
		if label < 0 || label >= numClass {
			return nil, errors.Newf("OneHot: label %d at index %d outside [0, %d)", label, i, numClass)
		}
		oh.Set(i, label, 1)
	}
	return oh, nil
}

// LossMatrix evaluates the loss kernel elementwise over an N x C raw
// score matrix and the one-hot expansion of labels.
func (p Params) LossMatrix(scores mat.Matrix, labels []int) (*mat.Dense, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rows, cols := scores.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.NewValueError("LossMatrix", "empty score matrix")
	}
	if cols != p.NumClass {
		return nil, errors.NewDimensionError("LossMatrix", p.NumClass, cols, 1)
	}
	if len(labels) != rows {
		return nil, errors.NewDimensionError("LossMatrix", rows, len(labels), 0)
	}
	oh, err := OneHot(labels, p.NumClass)
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, p.Loss(scores.At(i, j), oh.At(i, j)))
		}
	}
	return out, nil
}
