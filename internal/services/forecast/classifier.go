package forecast

import (
	"StockCast/internal/domain/models"
	"StockCast/internal/services/boosting"
	"StockCast/internal/services/features"
)

// DirectionClassifier estimates the probability that the next close is
// above the current one.
type DirectionClassifier struct {
	declared []string
	cfg      Config
	fit      *fitted
}

func NewDirectionClassifier(declared []string, cfg Config) *DirectionClassifier {
	return &DirectionClassifier{declared: declared, cfg: cfg}
}

func (c *DirectionClassifier) Train(t *features.Table) error {
	f, err := fit(t, c.declared, c.cfg, boosting.Binary, func(r features.Row) float64 {
		return float64(r.TargetDir)
	})
	if err != nil {
		return err
	}
	c.fit = f
	return nil
}

func (c *DirectionClassifier) Ready() bool { return c.fit != nil }

// Features returns the columns actually used, nil before training.
func (c *DirectionClassifier) Features() []string {
	if c.fit == nil {
		return nil
	}
	return c.fit.columns
}

func (c *DirectionClassifier) Report() models.ModelReport {
	if c.fit == nil {
		return models.ModelReport{}
	}
	return c.fit.report
}

// PredictProba returns P(up) for the row.
func (c *DirectionClassifier) PredictProba(r features.Row) (float64, error) {
	if c.fit == nil {
		return 0, models.ErrModelNotReady
	}
	return c.fit.model.Predict(c.fit.vector(r)), nil
}

// Attributions returns every feature's signed contribution to the log-odds
// of the row, in feature order.
func (c *DirectionClassifier) Attributions(r features.Row) ([]models.Attribution, error) {
	if c.fit == nil {
		return nil, models.ErrModelNotReady
	}
	phi, _ := c.fit.model.Contributions(c.fit.vector(r))
	out := make([]models.Attribution, len(phi))
	for i, v := range phi {
		out[i] = models.Attribution{Feature: c.fit.columns[i], Value: v}
	}
	return out, nil
}
