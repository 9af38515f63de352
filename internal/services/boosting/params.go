// Package boosting is a small gradient-boosted decision tree learner with
// leaf-wise growth, early stopping and walk-forward validation. Parameter
// names and defaults follow LightGBM.
package boosting

import (
	"errors"
	"fmt"
	"math"
)

type Objective int

const (
	// Regression minimizes squared error; the metric is RMSE.
	Regression Objective = iota
	// Binary minimizes log loss on 0/1 labels; predictions are probabilities.
	Binary
)

func (o Objective) String() string {
	switch o {
	case Regression:
		return "regression"
	case Binary:
		return "binary"
	default:
		return fmt.Sprintf("objective(%d)", int(o))
	}
}

// Metric names the validation metric of the objective.
func (o Objective) Metric() string {
	if o == Binary {
		return "binary_logloss"
	}
	return "rmse"
}

type Params struct {
	Objective           Objective
	NumRounds           int
	LearningRate        float64
	NumLeaves           int
	MinDataInLeaf       int
	MinSumHessian       float64
	Lambda              float64
	FeatureFraction     float64
	EarlyStoppingRounds int
	Seed                int64
}

func DefaultParams(obj Objective) Params {
	return Params{
		Objective:           obj,
		NumRounds:           100,
		LearningRate:        0.05,
		NumLeaves:           31,
		MinDataInLeaf:       20,
		MinSumHessian:       1e-3,
		FeatureFraction:     0.9,
		EarlyStoppingRounds: 10,
		Seed:                42,
	}
}

func (p Params) Validate() error {
	switch {
	case p.NumRounds < 1:
		return fmt.Errorf("boosting: num_rounds must be >= 1, got %d", p.NumRounds)
	case p.LearningRate <= 0 || math.IsNaN(p.LearningRate):
		return fmt.Errorf("boosting: learning_rate must be > 0, got %v", p.LearningRate)
	case p.NumLeaves < 2:
		return fmt.Errorf("boosting: num_leaves must be >= 2, got %d", p.NumLeaves)
	case p.MinDataInLeaf < 1:
		return fmt.Errorf("boosting: min_data_in_leaf must be >= 1, got %d", p.MinDataInLeaf)
	case p.FeatureFraction <= 0 || p.FeatureFraction > 1:
		return fmt.Errorf("boosting: feature_fraction must be in (0,1], got %v", p.FeatureFraction)
	case p.Lambda < 0 || p.MinSumHessian < 0:
		return errors.New("boosting: lambda and min_sum_hessian must be >= 0")
	case p.EarlyStoppingRounds < 0:
		return errors.New("boosting: early_stopping_rounds must be >= 0")
	}
	return nil
}
