package forecast

import (
	"StockCast/internal/domain/models"
	"StockCast/internal/services/boosting"
	"StockCast/internal/services/features"
)

// ReturnRegressor predicts the next-bar return rather than the price, which
// keeps the target stationary.
type ReturnRegressor struct {
	declared []string
	cfg      Config
	fit      *fitted
}

func NewReturnRegressor(declared []string, cfg Config) *ReturnRegressor {
	return &ReturnRegressor{declared: declared, cfg: cfg}
}

func (m *ReturnRegressor) Train(t *features.Table) error {
	f, err := fit(t, m.declared, m.cfg, boosting.Regression, features.Row.NextReturn)
	if err != nil {
		return err
	}
	m.fit = f
	return nil
}

func (m *ReturnRegressor) Ready() bool { return m.fit != nil }

func (m *ReturnRegressor) Report() models.ModelReport {
	if m.fit == nil {
		return models.ModelReport{}
	}
	return m.fit.report
}

func (m *ReturnRegressor) PredictReturn(r features.Row) (float64, error) {
	if m.fit == nil {
		return 0, models.ErrModelNotReady
	}
	return m.fit.model.Predict(m.fit.vector(r)), nil
}

// PredictPrice applies the predicted return to the row's close.
func (m *ReturnRegressor) PredictPrice(r features.Row) (float64, error) {
	ret, err := m.PredictReturn(r)
	if err != nil {
		return 0, err
	}
	return r.Close * (1 + ret), nil
}
