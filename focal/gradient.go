package focal

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/yukawa-ml/focalboost/pkg/errors"
)

// The closed-form derivatives below differentiate the loss through
// p_t = t*p + (1-t)*(1-p), for which the loss collapses to
//
//	L(u) = -weight * (1-u)^gamma * log(u),  u = p_t.
//
// With s = 2t-1, du/dx = s*p*(1-p) and d2u/dx2 = s*p*(1-p)*(1-2p), so
// the chain rule gives both derivatives from dL/du and d2L/du2. The
// clipped probability keeps u and 1-u strictly positive, so the
// fractional powers stay real for any gamma.

// lossTermDerivs returns dL/du and d2L/du2 at u for label component t.
func (p Params) lossTermDerivs(u, t float64) (dLdu, d2Ldu2 float64) {
	weight := p.Alpha*t + (1-p.Alpha)*(1-t)
	logU := math.Log(u)
	pow0 := math.Pow(1-u, p.Gamma)

	dLdu = -pow0 / u
	d2Ldu2 = pow0 / (u * u)
	if p.Gamma != 0 {
		pow1 := math.Pow(1-u, p.Gamma-1)
		dLdu += p.Gamma * pow1 * logU
		d2Ldu2 += 2 * p.Gamma * pow1 / u
		if p.Gamma != 1 {
			d2Ldu2 -= p.Gamma * (p.Gamma - 1) * math.Pow(1-u, p.Gamma-2) * logU
		}
	}
	return weight * dLdu, weight * d2Ldu2
}

// Gradient computes the closed-form first derivative of the loss with
// respect to the raw score x.
func (p Params) Gradient(x, t float64) float64 {
	pr := p.prob(x)
	u := t*pr + (1-t)*(1-pr)
	s := 2*t - 1
	d := pr * (1 - pr)
	dLdu, _ := p.lossTermDerivs(u, t)
	return dLdu * s * d
}

// Hessian computes the closed-form second derivative of the loss with
// respect to the raw score x.
func (p Params) Hessian(x, t float64) float64 {
	pr := p.prob(x)
	u := t*pr + (1-t)*(1-pr)
	s := 2*t - 1
	d := pr * (1 - pr)
	dLdu, d2Ldu2 := p.lossTermDerivs(u, t)
	return d2Ldu2*d*d + dLdu*s*d*(1-2*pr)
}

// NumericGradient estimates dLoss/dx by the centered two-point
// difference (L(x+h) - L(x-h)) / 2h. It is the verification oracle for
// Gradient and the derivative used when UseNumericDiff is set.
func (p Params) NumericGradient(x, t float64) float64 {
	h := p.step()
	return (p.Loss(x+h, t) - p.Loss(x-h, t)) / (2 * h)
}

// NumericHessian estimates d2Loss/dx2 by the three-point stencil
// (L(x+h) - 2L(x) + L(x-h)) / h^2.
func (p Params) NumericHessian(x, t float64) float64 {
	h := p.step()
	return (p.Loss(x+h, t) - 2*p.Loss(x, t) + p.Loss(x-h, t)) / (h * h)
}

// GradHess evaluates the gradient and Hessian of the loss over an
// N x C raw score matrix against the one-hot expansion of labels. Both
// returned matrices have the shape of scores. The function is pure;
// nothing is retained between calls.
func (p Params) GradHess(scores mat.Matrix, labels []int) (grad, hess *mat.Dense, err error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	rows, cols := scores.Dims()
	if rows == 0 || cols == 0 {
		return nil, nil, errors.NewValueError("GradHess", "empty score matrix")
	}
	if cols != p.NumClass {
		return nil, nil, errors.NewDimensionError("GradHess", p.NumClass, cols, 1)
	}
	if len(labels) != rows {
		return nil, nil, errors.NewDimensionError("GradHess", rows, len(labels), 0)
	}
	oh, err := OneHot(labels, p.NumClass)
	if err != nil {
		return nil, nil, err
	}

	grad = mat.NewDense(rows, cols, nil)
	hess = mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			x := scores.At(i, j)
			t := oh.At(i, j)
			if p.UseNumericDiff {
				grad.Set(i, j, p.NumericGradient(x, t))
				hess.Set(i, j, p.NumericHessian(x, t))
			} else {
				grad.Set(i, j, p.Gradient(x, t))
				hess.Set(i, j, p.Hessian(x, t))
			}
		}
	}
	return grad, hess, nil
}
