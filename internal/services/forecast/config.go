package forecast

import (
	"StockCast/internal/services/boosting"
	"StockCast/internal/services/features"
)

// Config holds the training and assembly knobs shared by both models.
type Config struct {
	Folds               int
	Rounds              int
	LearningRate        float64
	NumLeaves           int
	MinDataInLeaf       int
	FeatureFraction     float64
	EarlyStoppingRounds int
	Seed                int64

	HorizonDays     int
	Decay           float64
	TopAttributions int

	// Features is the declared feature list; columns missing from the
	// table are skipped.
	Features []string
}

func DefaultConfig() Config {
	p := boosting.DefaultParams(boosting.Binary)
	return Config{
		Folds:               5,
		Rounds:              p.NumRounds,
		LearningRate:        p.LearningRate,
		NumLeaves:           p.NumLeaves,
		MinDataInLeaf:       p.MinDataInLeaf,
		FeatureFraction:     p.FeatureFraction,
		EarlyStoppingRounds: p.EarlyStoppingRounds,
		Seed:                p.Seed,
		HorizonDays:         7,
		Decay:               0.9,
		TopAttributions:     5,
		Features:            features.DefaultSchema,
	}
}

func (c Config) params(obj boosting.Objective) boosting.Params {
	p := boosting.DefaultParams(obj)
	p.NumRounds = c.Rounds
	p.LearningRate = c.LearningRate
	p.NumLeaves = c.NumLeaves
	p.MinDataInLeaf = c.MinDataInLeaf
	p.FeatureFraction = c.FeatureFraction
	p.EarlyStoppingRounds = c.EarlyStoppingRounds
	p.Seed = c.Seed
	return p
}
