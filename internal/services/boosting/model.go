package boosting

import (
	"fmt"
	"math"
	"math/rand"
)

// Model is a trained ensemble. Raw scores are InitScore plus the sum of tree
// outputs; Predict maps them through the objective's link.
type Model struct {
	Objective     Objective `json:"objective"`
	NumFeatures   int       `json:"num_features"`
	InitScore     float64   `json:"init_score"`
	Trees         []*Tree   `json:"trees"`
	BestIteration int       `json:"best_iteration"`
	BestScore     float64   `json:"best_score"`
	// History holds the validation metric after every round when a
	// validation set was given.
	History []float64 `json:"history,omitempty"`
}

// Train fits a model on train. With a validation set the metric is tracked
// every round, training stops after EarlyStoppingRounds rounds without
// improvement, and the ensemble is truncated to its best iteration.
func Train(train Dataset, valid *Dataset, p Params) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := train.validate(p.Objective); err != nil {
		return nil, err
	}
	if valid != nil {
		if err := valid.validate(p.Objective); err != nil {
			return nil, fmt.Errorf("validation set: %w", err)
		}
		if valid.NumFeatures() != train.NumFeatures() {
			return nil, fmt.Errorf("boosting: validation set has %d features, want %d",
				valid.NumFeatures(), train.NumFeatures())
		}
	}

	obj := p.Objective
	m := &Model{
		Objective:   obj,
		NumFeatures: train.NumFeatures(),
		InitScore:   obj.initScore(train.Y),
		BestScore:   math.NaN(),
	}

	n := train.Len()
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = m.InitScore
	}
	var vscores []float64
	if valid != nil {
		vscores = make([]float64, valid.Len())
		for i := range vscores {
			vscores[i] = m.InitScore
		}
	}

	g := &grower{
		x:     train.X,
		order: presort(train.X),
		grad:  make([]float64, n),
		hess:  make([]float64, n),
		p:     p,
	}
	rng := rand.New(rand.NewSource(p.Seed))
	best := math.Inf(1)
	bestIter := 0

	for round := 0; round < p.NumRounds; round++ {
		obj.gradients(train.Y, scores, g.grad, g.hess)
		tree, leafOf := g.grow(sampleFeatures(rng, m.NumFeatures, p.FeatureFraction))
		for i := range scores {
			scores[i] += tree.Nodes[leafOf[i]].Value
		}
		m.Trees = append(m.Trees, tree)

		if valid == nil {
			if l := obj.loss(train.Y, scores); !finite(l) {
				return nil, fmt.Errorf("%w: training %s at round %d", ErrNonFinite, obj.Metric(), round+1)
			}
			continue
		}

		for i, x := range valid.X {
			vscores[i] += tree.Predict(x)
		}
		l := obj.loss(valid.Y, vscores)
		if !finite(l) {
			return nil, fmt.Errorf("%w: validation %s at round %d", ErrNonFinite, obj.Metric(), round+1)
		}
		m.History = append(m.History, l)
		if l < best {
			best, bestIter = l, round+1
		} else if p.EarlyStoppingRounds > 0 && round+1-bestIter >= p.EarlyStoppingRounds {
			break
		}
	}

	if valid != nil {
		m.Trees = m.Trees[:bestIter]
		m.BestIteration = bestIter
		m.BestScore = best
	} else {
		m.BestIteration = len(m.Trees)
	}
	return m, nil
}

// PredictRaw returns the untransformed score.
func (m *Model) PredictRaw(x []float64) float64 {
	s := m.InitScore
	for _, t := range m.Trees {
		s += t.Predict(x)
	}
	return s
}

// Predict returns a probability for Binary and the target for Regression.
func (m *Model) Predict(x []float64) float64 {
	return m.Objective.transform(m.PredictRaw(x))
}

// Contributions splits the raw score of x into per-feature parts by
// following each tree's decision path: every split credits its feature with
// the change in node value. bias plus the sum of phi equals PredictRaw(x).
func (m *Model) Contributions(x []float64) (phi []float64, bias float64) {
	phi = make([]float64, m.NumFeatures)
	bias = m.InitScore
	for _, t := range m.Trees {
		bias += t.Nodes[0].Value
		id := 0
		for !t.Nodes[id].IsLeaf() {
			n := t.Nodes[id]
			next := n.Right
			if goesLeft(x[n.Feature], n.Threshold) {
				next = n.Left
			}
			phi[n.Feature] += t.Nodes[next].Value - n.Value
			id = next
		}
	}
	return phi, bias
}

// FeatureImportance is the total split gain per feature.
func (m *Model) FeatureImportance() []float64 {
	imp := make([]float64, m.NumFeatures)
	for _, t := range m.Trees {
		for _, n := range t.Nodes {
			if !n.IsLeaf() {
				imp[n.Feature] += n.Gain
			}
		}
	}
	return imp
}
