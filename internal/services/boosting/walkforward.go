package boosting

import (
	"errors"
	"fmt"
	"math"
)

var ErrTooFewRows = errors.New("boosting: too few rows for walk-forward validation")

// Range is a half-open row interval.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r Range) Len() int { return r.End - r.Start }

// Fold trains on every row before Test.
type Fold struct {
	Index int   `json:"index"`
	Train Range `json:"train"`
	Test  Range `json:"test"`
}

// WalkForward splits n time-ordered rows into k expanding-window folds. Each
// test block has n/(k+1) rows and the blocks end at the last row; fold i's
// test block lies strictly before fold i+1's.
func WalkForward(n, k int) ([]Fold, error) {
	if k < 2 {
		return nil, fmt.Errorf("boosting: need at least 2 folds, got %d", k)
	}
	size := n / (k + 1)
	if size < 1 {
		return nil, fmt.Errorf("%w: %d rows for %d folds", ErrTooFewRows, n, k)
	}
	folds := make([]Fold, k)
	for i := range folds {
		start := n - (k-i)*size
		folds[i] = Fold{
			Index: i,
			Train: Range{Start: 0, End: start},
			Test:  Range{Start: start, End: start + size},
		}
	}
	return folds, nil
}

type FoldResult struct {
	Fold          Fold
	BestIteration int
	Score         float64
}

type CVResult struct {
	Folds     []FoldResult
	MeanScore float64
	// Rounds is the mean best iteration across folds, at least 1.
	Rounds int
}

// CrossValidate trains one early-stopped model per walk-forward fold.
func CrossValidate(d Dataset, k int, p Params) (*CVResult, error) {
	folds, err := WalkForward(d.Len(), k)
	if err != nil {
		return nil, err
	}
	res := &CVResult{Folds: make([]FoldResult, 0, len(folds))}
	var iters, scores float64
	for _, f := range folds {
		test := d.Slice(f.Test)
		m, err := Train(d.Slice(f.Train), &test, p)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", f.Index, err)
		}
		res.Folds = append(res.Folds, FoldResult{Fold: f, BestIteration: m.BestIteration, Score: m.BestScore})
		iters += float64(m.BestIteration)
		scores += m.BestScore
	}
	res.MeanScore = scores / float64(len(folds))
	res.Rounds = int(math.Round(iters / float64(len(folds))))
	if res.Rounds < 1 {
		res.Rounds = 1
	}
	return res, nil
}

// FitWalkForward validates with CrossValidate and then refits on all of d
// for the validated number of rounds.
func FitWalkForward(d Dataset, k int, p Params) (*Model, *CVResult, error) {
	cv, err := CrossValidate(d, k, p)
	if err != nil {
		return nil, nil, err
	}
	final := p
	final.NumRounds = cv.Rounds
	final.EarlyStoppingRounds = 0
	m, err := Train(d, nil, final)
	if err != nil {
		return nil, cv, fmt.Errorf("final fit: %w", err)
	}
	return m, cv, nil
}
