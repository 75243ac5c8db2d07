// Package focalboost provides a multiclass focal loss objective for
// gradient-boosted tree training in Go.
//
// Focal loss down-weights well-classified examples via a (1-p_t)^gamma
// modulating factor and re-balances classes with an alpha weight. This
// module adapts the binary formulation to multiclass problems by
// treating each class as an independent one-vs-rest binary problem over
// the one-hot-expanded label matrix.
//
// # Packages
//
//   - focal: the loss kernel, its analytic gradient and Hessian, the
//     finite-difference verification oracle, and the eval-metric
//     reduction.
//   - boost: trainer-facing contracts (Objective and EvalMetric
//     callbacks, flat layout conventions, Dataset handles) plus a
//     compact multiclass gradient-boosting trainer that consumes them.
//   - metrics: classification scoring used by the demonstration.
//
// # Quick start
//
//	params := focal.Params{Alpha: 0.25, Gamma: 2, NumClass: 3}
//	obj, _ := boost.FocalObjective(params, boost.ClassMajor)
//	eval, _ := boost.FocalEvalMetric(params, boost.ClassMajor, focal.ReduceMean)
//
//	trainer := boost.NewTrainer(boost.TrainingParams{NumClass: 3}, obj)
//	trainer.WithEvalMetric(eval)
//	if err := trainer.Fit(trainSet, validSet); err != nil {
//	    log.Fatal(err)
//	}
//
// A runnable end-to-end example lives in examples/focal.
package focalboost
