package boost

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/yukawa-ml/focalboost/focal"
	"github.com/yukawa-ml/focalboost/pkg/errors"
	"github.com/yukawa-ml/focalboost/pkg/log"
)

// TrainingParams contains the boosting hyperparameters. These configure
// the trainer itself and are independent of the objective's closed-over
// hyperparameters.
type TrainingParams struct {
	NumIterations  int
	LearningRate   float64
	MaxDepth       int
	MinSamplesLeaf int
	Lambda         float64
	MinGainToSplit float64
	NumClass       int
	// Layout is the flattening convention for the score, gradient and
	// Hessian arrays exchanged with the Objective and EvalMetric
	// callbacks. It must match the layout the callbacks were built
	// with.
	Layout    Layout
	Verbosity int
}

func (p TrainingParams) withDefaults() TrainingParams {
	if p.NumIterations == 0 {
		p.NumIterations = 100
	}
	if p.LearningRate == 0 {
		p.LearningRate = 0.1
	}
	if p.MaxDepth == 0 {
		p.MaxDepth = 3
	}
	if p.MinSamplesLeaf == 0 {
		p.MinSamplesLeaf = 5
	}
	if p.Lambda == 0 {
		p.Lambda = 1.0
	}
	return p
}

func (p TrainingParams) validate() error {
	if p.NumClass < 2 {
		return errors.NewValidationError("num_class", "must be >= 2", p.NumClass)
	}
	if p.NumIterations < 0 {
		return errors.NewValidationError("num_iterations", "must be >= 0", p.NumIterations)
	}
	if p.LearningRate < 0 {
		return errors.NewValidationError("learning_rate", "must be > 0", p.LearningRate)
	}
	if !p.Layout.valid() {
		return errors.NewValidationError("layout", "unknown layout", p.Layout)
	}
	return nil
}

// Trainer boosts one depth-limited regression tree per class per round,
// fit to the gradient and Hessian arrays produced by a custom
// Objective. It is the in-process stand-in for the external boosting
// framework the objective contract was designed for.
type Trainer struct {
	params     TrainingParams
	objective  Objective
	evalMetric EvalMetric
	callbacks  []Callback

	trees         [][]*regTree // [round][class]
	numFeatures   int
	bestIteration int
}

// NewTrainer creates a trainer around a custom objective. Zero-valued
// params fields get defaults.
func NewTrainer(params TrainingParams, objective Objective) *Trainer {
	return &Trainer{
		params:    params.withDefaults(),
		objective: objective,
	}
}

// WithEvalMetric sets the eval metric computed each round for the
// training set and every validation set.
func (t *Trainer) WithEvalMetric(m EvalMetric) *Trainer {
	t.evalMetric = m
	return t
}

// WithCallbacks sets the callbacks dispatched after every round.
func (t *Trainer) WithCallbacks(callbacks ...Callback) *Trainer {
	t.callbacks = callbacks
	return t
}

// BestIteration returns the best round seen by an EarlyStopping
// callback, or the last round when none fired.
func (t *Trainer) BestIteration() int {
	return t.bestIteration
}

// NumTrees returns the number of completed boosting rounds.
func (t *Trainer) NumTrees() int {
	return len(t.trees)
}

// Fit runs the boosting loop: each round it invokes the objective with
// the current flat raw scores, fits one tree per class to the returned
// gradients and Hessians, and evaluates the eval metric on every
// validation set.
func (t *Trainer) Fit(train *Dataset, validSets ...*Dataset) error {
	if t.objective == nil {
		return errors.NewValueError("Fit", "no objective configured")
	}
	if err := t.params.validate(); err != nil {
		return err
	}

	n := train.Len()
	c := t.params.NumClass
	t.numFeatures = train.NumFeatures()
	t.trees = t.trees[:0]
	t.bestIteration = 0

	logger := log.GetLoggerWithName("boost.trainer")

	// Raw scores start at zero; the objective sees the flat layout.
	trainScores := make([]float64, n*c)
	validScores := make([][]float64, len(validSets))
	validNames := make([]string, len(validSets))
	for v, vs := range validSets {
		if vs.NumFeatures() != t.numFeatures {
			return errors.NewDimensionError("Fit", t.numFeatures, vs.NumFeatures(), 1)
		}
		validNames[v] = vs.Name
		if validNames[v] == "" {
			validNames[v] = fmt.Sprintf("valid_%d", v)
		}
		validScores[v] = make([]float64, vs.Len()*c)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	rowBuf := make([]float64, t.numFeatures)
	gradK := make([]float64, n)
	hessK := make([]float64, n)

	for iter := 0; iter < t.params.NumIterations; iter++ {
		grad, hess, err := t.objective(trainScores, train)
		if err != nil {
			return errors.Wrapf(err, "objective failed at iteration %d", iter)
		}
		if len(grad) != n*c || len(hess) != n*c {
			return errors.NewDimensionError("Fit", n*c, len(grad), 0)
		}
		if err := errors.CheckNumericalStability("gradient", grad, iter); err != nil {
			return err
		}
		if err := errors.CheckNumericalStability("hessian", hess, iter); err != nil {
			return err
		}

		roundTrees := make([]*regTree, c)
		for k := 0; k < c; k++ {
			for i := 0; i < n; i++ {
				idx := t.params.Layout.index(i, k, n, c)
				gradK[i] = grad[idx]
				hessK[i] = hess[idx]
			}

			builder := &treeBuilder{
				X:              train.X,
				grad:           gradK,
				hess:           hessK,
				lambda:         t.params.Lambda,
				maxDepth:       t.params.MaxDepth,
				minSamplesLeaf: t.params.MinSamplesLeaf,
				minGain:        t.params.MinGainToSplit,
			}
			tree := builder.build(indices, 0)
			roundTrees[k] = tree

			for i := 0; i < n; i++ {
				train.row(i, rowBuf)
				trainScores[t.params.Layout.index(i, k, n, c)] += t.params.LearningRate * tree.predict(rowBuf)
			}
			for v, vs := range validSets {
				vn := vs.Len()
				for i := 0; i < vn; i++ {
					vs.row(i, rowBuf)
					validScores[v][t.params.Layout.index(i, k, vn, c)] += t.params.LearningRate * tree.predict(rowBuf)
				}
			}
		}
		t.trees = append(t.trees, roundTrees)
		t.bestIteration = iter

		evalResults := make(map[string]float64)
		if t.evalMetric != nil {
			name, value, _, err := t.evalMetric(trainScores, train)
			if err != nil {
				return errors.Wrapf(err, "eval metric failed at iteration %d", iter)
			}
			evalResults["train-"+name] = value

			for v, vs := range validSets {
				name, value, _, err := t.evalMetric(validScores[v], vs)
				if err != nil {
					return errors.Wrapf(err, "eval metric failed at iteration %d", iter)
				}
				evalResults[validNames[v]+"-"+name] = value
			}
		}

		env := &CallbackEnv{
			Iteration:     iter,
			NumIterations: t.params.NumIterations,
			EvalResults:   evalResults,
			BestIteration: t.bestIteration,
		}
		for _, cb := range t.callbacks {
			if err := cb(env); err != nil {
				return errors.Wrapf(err, "callback failed at iteration %d", iter)
			}
		}
		if env.StopTraining {
			t.bestIteration = env.BestIteration
			if t.params.Verbosity > 0 {
				logger.Info("Training stopped by callback",
					"iteration", iter,
					"best_iteration", t.bestIteration)
			}
			break
		}

		if t.params.Verbosity > 0 && iter%10 == 0 {
			logger.Debug("Training progress",
				"iteration", iter,
				"eval", evalResults)
		}
	}

	return nil
}

// Predict returns the raw (pre-sigmoid) N x C score matrix for X.
func (t *Trainer) Predict(X *mat.Dense) (*mat.Dense, error) {
	if len(t.trees) == 0 {
		return nil, errors.NewValueError("Predict", "trainer is not fitted")
	}
	rows, cols := X.Dims()
	if cols != t.numFeatures {
		return nil, errors.NewDimensionError("Predict", t.numFeatures, cols, 1)
	}

	scores := mat.NewDense(rows, t.params.NumClass, nil)
	rowBuf := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(rowBuf, i, X)
		for _, roundTrees := range t.trees {
			for k, tree := range roundTrees {
				scores.Set(i, k, scores.At(i, k)+t.params.LearningRate*tree.predict(rowBuf))
			}
		}
	}
	return scores, nil
}

// PredictProba converts raw scores into per-class probabilities by
// applying the sigmoid to each one-vs-rest score and normalizing each
// row to sum to 1, matching the one-vs-rest structure of the loss.
func (t *Trainer) PredictProba(X *mat.Dense) (*mat.Dense, error) {
	scores, err := t.Predict(X)
	if err != nil {
		return nil, err
	}
	rows, cols := scores.Dims()
	for i := 0; i < rows; i++ {
		var sum float64
		for j := 0; j < cols; j++ {
			p := focal.Sigmoid(scores.At(i, j))
			scores.Set(i, j, p)
			sum += p
		}
		for j := 0; j < cols; j++ {
			scores.Set(i, j, errors.SafeDivide(scores.At(i, j), sum))
		}
	}
	return scores, nil
}
