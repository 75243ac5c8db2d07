package boost

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordEvaluation(t *testing.T) {
	var history map[string][]float64
	cb := RecordEvaluation(&history)

	for i, v := range []float64{0.5, 0.4, 0.3} {
		env := &CallbackEnv{Iteration: i, EvalResults: map[string]float64{"train-focal_loss": v}}
		require.NoError(t, cb(env))
	}
	assert.Equal(t, []float64{0.5, 0.4, 0.3}, history["train-focal_loss"])
}

func TestEarlyStopping(t *testing.T) {
	t.Run("StopsAfterNoImprovement", func(t *testing.T) {
		cb := EarlyStopping(2, "valid_0-focal_loss", true)

		values := []float64{0.5, 0.4, 0.41, 0.42}
		var stoppedAt = -1
		for i, v := range values {
			env := &CallbackEnv{Iteration: i, EvalResults: map[string]float64{"valid_0-focal_loss": v}}
			require.NoError(t, cb(env))
			if env.StopTraining {
				stoppedAt = i
				assert.Equal(t, 1, env.BestIteration)
				break
			}
		}
		assert.Equal(t, 3, stoppedAt)
	})

	t.Run("KeepsGoingWhileImproving", func(t *testing.T) {
		cb := EarlyStopping(2, "valid_0-focal_loss", true)
		for i, v := range []float64{0.5, 0.4, 0.3, 0.2} {
			env := &CallbackEnv{Iteration: i, EvalResults: map[string]float64{"valid_0-focal_loss": v}}
			require.NoError(t, cb(env))
			assert.False(t, env.StopTraining)
		}
	})

	t.Run("MissingMetricIsIgnored", func(t *testing.T) {
		cb := EarlyStopping(1, "valid_0-focal_loss", true)
		env := &CallbackEnv{Iteration: 0, EvalResults: map[string]float64{}}
		require.NoError(t, cb(env))
		assert.False(t, env.StopTraining)
	})
}

func TestTimeLimit(t *testing.T) {
	cb := TimeLimit(0)
	time.Sleep(time.Millisecond)
	env := &CallbackEnv{Iteration: 0, EvalResults: map[string]float64{}}
	require.NoError(t, cb(env))
	assert.True(t, env.StopTraining)
}

func TestPrintEvaluation(t *testing.T) {
	cb := PrintEvaluation(2)
	for i := 0; i < 4; i++ {
		env := &CallbackEnv{Iteration: i, EvalResults: map[string]float64{"train-focal_loss": 0.5}}
		assert.NoError(t, cb(env))
	}
}
