package errors

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueError(t *testing.T) {
	err := NewValueError("Loss", "empty score matrix")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Loss")
	assert.Contains(t, err.Error(), "empty score matrix")

	var ve *ValueError
	assert.True(t, As(err, &ve))
	assert.Equal(t, "Loss", ve.Op)
}

func TestDimensionError(t *testing.T) {
	err := NewDimensionError("GradHess", 30, 29, 0)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expected 30, got 29")

	var de *DimensionError
	assert.True(t, As(err, &de))
	assert.Equal(t, 30, de.Expected)
	assert.Equal(t, 29, de.Got)
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("alpha", "must be in [0, 1]", 1.5)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "alpha")
	assert.Contains(t, err.Error(), "1.5")
}

func TestNumericalInstabilityError(t *testing.T) {
	err := NewNumericalInstabilityError("gradient", []float64{math.NaN()}, 7)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "gradient")
	assert.Contains(t, err.Error(), "iteration 7")
}

func TestCheckNumericalStability(t *testing.T) {
	assert.NoError(t, CheckNumericalStability("loss", []float64{0.1, -2.5, 3.0}, 0))
	assert.Error(t, CheckNumericalStability("loss", []float64{0.1, math.Inf(1)}, 0))
	assert.Error(t, CheckNumericalStability("loss", []float64{math.NaN()}, 0))
}

func TestClipValue(t *testing.T) {
	assert.Equal(t, 0.5, ClipValue(0.5, 0, 1))
	assert.Equal(t, 0.0, ClipValue(-3, 0, 1))
	assert.Equal(t, 1.0, ClipValue(42, 0, 1))
}

func TestSafeDivide(t *testing.T) {
	assert.Equal(t, 2.0, SafeDivide(4, 2))
	assert.Equal(t, 0.0, SafeDivide(4, 0))
	assert.Equal(t, 0.0, SafeDivide(4, 1e-12))
}

func TestStabilizeLog(t *testing.T) {
	assert.InDelta(t, math.Log(0.5), StabilizeLog(0.5), 1e-12)
	assert.False(t, math.IsInf(StabilizeLog(0), -1))
	assert.InDelta(t, math.Log(1e-15), StabilizeLog(0), 1e-9)
}

func TestWarnHandler(t *testing.T) {
	var captured error
	SetWarningHandler(func(w error) { captured = w })
	defer SetWarningHandler(nil)

	w := NewConvergenceWarning("boosting", 10, "no eval improvement")
	Warn(w)
	assert.Equal(t, w, captured)
	assert.Contains(t, w.Error(), "after 10 iterations")
}
