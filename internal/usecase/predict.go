package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"StockCast/internal/domain/models"
	drepo "StockCast/internal/domain/repository"
	dsvc "StockCast/internal/domain/service"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/util"
)

const (
	stageFetch  = "fetch"
	sinkTimeout = 5 * time.Second

	sinkClickHouse = "clickhouse"
	sinkKafka      = "kafka"
)

// PredictUseCase fetches history for a ticker, runs the forecaster on it
// and ships the result to the optional sinks.
type PredictUseCase struct {
	src       drepo.BarSource
	engine    dsvc.Forecaster
	archive   drepo.ForecastArchive
	pub       drepo.ForecastPublisher
	metrics   drepo.Metrics
	l         *applogger.Logger
	chartBars int
	now       func() time.Time
}

// NewPredictUseCase wires the use case. archive and pub may be nil.
func NewPredictUseCase(
	src drepo.BarSource,
	engine dsvc.Forecaster,
	archive drepo.ForecastArchive,
	pub drepo.ForecastPublisher,
	metrics drepo.Metrics,
	l *applogger.Logger,
	chartBars int,
) *PredictUseCase {
	if l == nil {
		l = applogger.Nop()
	}
	if chartBars <= 0 {
		chartBars = 100
	}
	return &PredictUseCase{
		src:       src,
		engine:    engine,
		archive:   archive,
		pub:       pub,
		metrics:   metrics,
		l:         l,
		chartBars: chartBars,
		now:       time.Now,
	}
}

func (uc *PredictUseCase) Predict(ctx context.Context, symbol string) (*models.PredictionResponse, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, models.NewForecastError(models.KindEmptyInput, "symbol required")
	}

	start := time.Now()
	h, err := uc.src.FetchDaily(ctx, symbol)
	if err != nil {
		uc.recordError(err)
		if errors.Is(err, drepo.ErrSymbolNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	uc.recordLatency(stageFetch, start)
	if len(h.Bars) == 0 {
		uc.recordError(models.ErrEmptyInput)
		return nil, models.NewForecastError(models.KindEmptyInput, "no data found for symbol %s", symbol)
	}

	res, err := uc.engine.Forecast(ctx, symbol, h.Bars)
	if err != nil {
		uc.recordError(err)
		uc.l.Warn("forecast failed",
			applogger.String("symbol", symbol),
			applogger.Int("bars", len(h.Bars)),
			applogger.Error(err),
		)
		return nil, err
	}

	resp := &models.PredictionResponse{
		Symbol:         symbol,
		CompanyName:    h.CompanyName,
		Currency:       h.Currency,
		ForecastResult: res,
		ChartData:      ChartData(h.Tail(uc.chartBars)),
	}

	if uc.metrics != nil {
		uc.metrics.RecordForecast(symbol, res.Direction, res.PredictedReturn)
		uc.metrics.RecordLastPrice(symbol, res.CurrentPrice)
	}
	uc.l.Info("forecast served",
		applogger.String("symbol", symbol),
		applogger.String("direction", res.Direction),
		applogger.Float64("probability_up", res.ProbabilityUp),
		applogger.Float64("predicted_price", res.PredictedPrice),
		applogger.Duration("duration_ms", time.Since(start)),
	)

	uc.sink(ctx, symbol, res)
	return resp, nil
}

// sink writes to the archive and the event stream. Failures are logged and
// counted only.
func (uc *PredictUseCase) sink(ctx context.Context, symbol string, res *models.ForecastResult) {
	if uc.archive == nil && uc.pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sinkTimeout)
	defer cancel()
	now := uc.now()

	if uc.archive != nil {
		err := uc.archive.SaveForecast(ctx, symbol, res, now)
		uc.recordSink(sinkClickHouse, symbol, err)
	}
	if uc.pub != nil {
		err := uc.pub.PublishForecast(ctx, models.ForecastEvent{
			EventType:      models.EventForecastCreated,
			Symbol:         symbol,
			Direction:      res.Direction,
			ProbabilityUp:  res.ProbabilityUp,
			CurrentPrice:   res.CurrentPrice,
			PredictedPrice: res.PredictedPrice,
			Timestamp:      now.UTC(),
		})
		uc.recordSink(sinkKafka, symbol, err)
	}
}

func (uc *PredictUseCase) recordSink(sink, symbol string, err error) {
	if uc.metrics != nil {
		uc.metrics.RecordSinkWrite(sink, err)
	}
	if err != nil {
		uc.l.Error("forecast sink write failed",
			applogger.String("sink", sink),
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
	}
}

func (uc *PredictUseCase) recordError(err error) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.RecordError(ErrorKind(err))
}

// ErrorKind labels err for metrics.
func ErrorKind(err error) string {
	if kind := models.KindOf(err); kind != "" {
		return string(kind)
	}
	switch {
	case errors.Is(err, drepo.ErrSymbolNotFound):
		return "SymbolNotFound"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Canceled"
	default:
		return "Provider"
	}
}

func (uc *PredictUseCase) recordLatency(stage string, start time.Time) {
	if uc.metrics != nil {
		uc.metrics.RecordLatency(stage, time.Since(start).Seconds())
	}
}

// ChartData converts bars to chart points with YYYY-MM-DD times.
func ChartData(bars []models.Bar) []models.ChartPoint {
	out := make([]models.ChartPoint, len(bars))
	for i, b := range bars {
		out[i] = models.ChartPoint{
			Time:  util.FormatDate(b.Date),
			Open:  b.Open,
			High:  b.High,
			Low:   b.Low,
			Close: b.Close,
		}
	}
	return out
}
