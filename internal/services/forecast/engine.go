package forecast

import (
	"context"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/services/features"
	"StockCast/pkg/logger"
)

const (
	StageFeatures        = "features"
	StageTrainClassifier = "train_classifier"
	StageTrainRegressor  = "train_regressor"
	StageAssemble        = "assemble"
)

// StageRecorder receives per-stage latencies.
type StageRecorder interface {
	RecordLatency(op string, seconds float64)
}

// Engine runs one forecast end to end. It keeps no state between calls:
// both models are trained for the request and dropped afterwards.
type Engine struct {
	cfg Config
	log *logger.Logger
	rec StageRecorder
}

func NewEngine(cfg Config, log *logger.Logger, rec StageRecorder) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{cfg: cfg, log: log, rec: rec}
}

func (e *Engine) Forecast(ctx context.Context, ticker string, bars []models.Bar) (*models.ForecastResult, error) {
	start := time.Now()
	table, err := features.AddFeatures(bars)
	if err != nil {
		return nil, err
	}
	e.observe(StageFeatures, start)

	latest, _ := table.Latest()
	if !latest.Ready() {
		return nil, models.NewForecastError(models.KindInsufficientHistory,
			"indicators undefined on %s", latest.Date.Format("2006-01-02"))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	clf := NewDirectionClassifier(e.cfg.Features, e.cfg)
	if err := clf.Train(table); err != nil {
		return nil, err
	}
	e.observe(StageTrainClassifier, start)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	reg := NewReturnRegressor(e.cfg.Features, e.cfg)
	if err := reg.Train(table); err != nil {
		return nil, err
	}
	e.observe(StageTrainRegressor, start)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	res, err := NewAssembler(e.cfg).Assemble(clf, reg, latest)
	if err != nil {
		return nil, err
	}
	e.observe(StageAssemble, start)

	res.Validation = models.ValidationReport{
		Classifier: clf.Report(),
		Regressor:  reg.Report(),
	}

	e.log.Debug("forecast computed",
		logger.String("ticker", ticker),
		logger.Int("rows", len(table.Rows)),
		logger.String("direction", res.Direction),
		logger.Float64("probability_up", res.ProbabilityUp),
		logger.Int("classifier_rounds", res.Validation.Classifier.FinalRounds),
		logger.Int("regressor_rounds", res.Validation.Regressor.FinalRounds),
	)
	return res, nil
}

func (e *Engine) observe(stage string, start time.Time) {
	if e.rec != nil {
		e.rec.RecordLatency(stage, time.Since(start).Seconds())
	}
}
