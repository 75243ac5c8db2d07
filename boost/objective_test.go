package boost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/yukawa-ml/focalboost/focal"
)

func testParams() focal.Params {
	return focal.Params{Alpha: 0.25, Gamma: 2, NumClass: 3}
}

func testDataset(t *testing.T) *Dataset {
	t.Helper()
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	ds, err := NewDataset(X, []int{0, 1})
	require.NoError(t, err)
	return ds
}

func TestFocalObjective(t *testing.T) {
	p := testParams()
	ds := testDataset(t)
	scores := mat.NewDense(2, 3, []float64{2, -1, -1, -0.5, 1.5, 0})

	t.Run("MatchesKernel", func(t *testing.T) {
		for _, layout := range []Layout{ClassMajor, SampleMajor} {
			obj, err := FocalObjective(p, layout)
			require.NoError(t, err)

			grad, hess, err := obj(layout.Flatten(scores), ds)
			require.NoError(t, err)
			require.Len(t, grad, 6)
			require.Len(t, hess, 6)

			wantGrad, wantHess, err := p.GradHess(scores, ds.Labels)
			require.NoError(t, err)
			assert.Equal(t, layout.Flatten(wantGrad), grad, "layout %s", layout)
			assert.Equal(t, layout.Flatten(wantHess), hess, "layout %s", layout)
		}
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		obj, err := FocalObjective(p, ClassMajor)
		require.NoError(t, err)
		_, _, err = obj(make([]float64, 5), ds)
		assert.Error(t, err)
	})

	t.Run("InvalidParams", func(t *testing.T) {
		_, err := FocalObjective(focal.Params{Alpha: 2, Gamma: 2, NumClass: 3}, ClassMajor)
		assert.Error(t, err)
		_, err = FocalObjective(p, Layout(99))
		assert.Error(t, err)
	})
}

func TestFocalEvalMetric(t *testing.T) {
	p := testParams()
	ds := testDataset(t)
	scores := mat.NewDense(2, 3, []float64{2, -1, -1, -0.5, 1.5, 0})

	t.Run("MatchesMetric", func(t *testing.T) {
		eval, err := FocalEvalMetric(p, ClassMajor, focal.ReduceMean)
		require.NoError(t, err)

		name, value, higherBetter, err := eval(ClassMajor.Flatten(scores), ds)
		require.NoError(t, err)
		assert.Equal(t, focal.MetricName, name)
		assert.False(t, higherBetter)

		want, err := p.Metric(scores, ds.Labels, focal.ReduceMean)
		require.NoError(t, err)
		assert.Equal(t, want, value)
	})

	t.Run("ReductionPassthrough", func(t *testing.T) {
		evalMean, err := FocalEvalMetric(p, ClassMajor, focal.ReduceMean)
		require.NoError(t, err)
		evalPerClass, err := FocalEvalMetric(p, ClassMajor, focal.ReduceSumPerClass)
		require.NoError(t, err)

		flat := ClassMajor.Flatten(scores)
		_, mean, _, err := evalMean(flat, ds)
		require.NoError(t, err)
		_, perClass, _, err := evalPerClass(flat, ds)
		require.NoError(t, err)
		assert.InDelta(t, mean*float64(ds.Len()), perClass, 1e-12)
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		eval, err := FocalEvalMetric(p, ClassMajor, focal.ReduceMean)
		require.NoError(t, err)
		_, _, _, err = eval(make([]float64, 4), ds)
		assert.Error(t, err)
	})
}
