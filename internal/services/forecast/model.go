package forecast

import (
	"StockCast/internal/domain/models"
	"StockCast/internal/services/boosting"
	"StockCast/internal/services/features"
)

// fitted is a boosted model bound to the table columns it was trained on.
type fitted struct {
	columns []string
	idx     []int
	model   *boosting.Model
	report  models.ModelReport
}

// fit resolves the declared features against the table, validates with
// walk-forward folds over the labeled rows and refits on all of them.
func fit(t *features.Table, declared []string, cfg Config, obj boosting.Objective, target func(features.Row) float64) (*fitted, error) {
	cols := features.Resolve(declared, t.Columns)
	if len(cols) == 0 {
		return nil, models.NewForecastError(models.KindTrainingFailed, "no declared feature column in table")
	}
	idx, err := t.Indices(cols)
	if err != nil {
		return nil, models.ErrTrainingFailed.Wrap(err)
	}

	rows := t.Labeled()
	d := boosting.Dataset{X: make([][]float64, len(rows)), Y: make([]float64, len(rows))}
	for i, r := range rows {
		d.X[i] = t.Vector(r, idx)
		d.Y[i] = target(r)
	}

	m, cv, err := boosting.FitWalkForward(d, cfg.Folds, cfg.params(obj))
	if err != nil {
		return nil, models.NewForecastError(models.KindTrainingFailed,
			"%s model on %d rows", obj, len(rows)).Wrap(err)
	}

	rep := models.ModelReport{
		Metric:      obj.Metric(),
		MeanScore:   cv.MeanScore,
		FinalRounds: len(m.Trees),
		TrainRows:   len(rows),
	}
	for _, f := range cv.Folds {
		rep.Folds = append(rep.Folds, models.FoldMetric{
			Fold:          f.Fold.Index,
			TrainRows:     f.Fold.Train.Len(),
			TestRows:      f.Fold.Test.Len(),
			BestIteration: f.BestIteration,
			Score:         f.Score,
		})
	}
	return &fitted{columns: cols, idx: idx, model: m, report: rep}, nil
}

func (f *fitted) vector(r features.Row) []float64 {
	x := make([]float64, len(f.idx))
	for k, j := range f.idx {
		x[k] = r.Values[j]
	}
	return x
}
