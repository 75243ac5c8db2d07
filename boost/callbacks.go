package boost

import (
	"fmt"
	"math"
	"time"
)

// CallbackEnv carries per-round training state into callbacks.
type CallbackEnv struct {
	Iteration     int
	NumIterations int
	EvalResults   map[string]float64
	BestIteration int
	StopTraining  bool
}

// Callback is invoked after every boosting round.
type Callback func(env *CallbackEnv) error

// PrintEvaluation prints the eval results every period rounds.
func PrintEvaluation(period int) Callback {
	if period <= 0 {
		period = 1
	}
	return func(env *CallbackEnv) error {
		if env.Iteration%period != 0 {
			return nil
		}
		out := fmt.Sprintf("[%d]", env.Iteration+1)
		for name, value := range env.EvalResults {
			out += fmt.Sprintf("\t%s: %.6f", name, value)
		}
		fmt.Println(out)
		return nil
	}
}

// RecordEvaluation appends each round's eval results to history.
func RecordEvaluation(history *map[string][]float64) Callback {
	return func(env *CallbackEnv) error {
		if *history == nil {
			*history = make(map[string][]float64)
		}
		for name, value := range env.EvalResults {
			(*history)[name] = append((*history)[name], value)
		}
		return nil
	}
}

// EarlyStopping stops training when the named metric has not improved
// for rounds consecutive rounds. minimize selects the improvement
// direction; the focal metric is minimized.
func EarlyStopping(rounds int, metric string, minimize bool) Callback {
	bestScore := math.Inf(1)
	if !minimize {
		bestScore = math.Inf(-1)
	}
	bestIteration := 0
	roundsNoImprove := 0

	return func(env *CallbackEnv) error {
		value, exists := env.EvalResults[metric]
		if !exists {
			return nil
		}

		improved := value < bestScore
		if !minimize {
			improved = value > bestScore
		}

		if improved {
			bestScore = value
			bestIteration = env.Iteration
			roundsNoImprove = 0
		} else {
			roundsNoImprove++
		}
		env.BestIteration = bestIteration

		if roundsNoImprove >= rounds {
			env.StopTraining = true
		}
		return nil
	}
}

// TimeLimit stops training once the wall clock budget is spent.
func TimeLimit(maxDuration time.Duration) Callback {
	start := time.Now()
	return func(env *CallbackEnv) error {
		if time.Since(start) > maxDuration {
			env.StopTraining = true
		}
		return nil
	}
}
