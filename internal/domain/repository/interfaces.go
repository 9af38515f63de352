package repository

import (
	"context"
	"errors"
	"time"

	"StockCast/internal/domain/models"
)

// ErrSymbolNotFound is returned by a BarSource for unknown tickers.
var ErrSymbolNotFound = errors.New("symbol not found")

// BarSource supplies daily history for a ticker. Bars are sorted by date,
// de-duplicated and free of missing prices.
type BarSource interface {
	FetchDaily(ctx context.Context, symbol string) (*models.History, error)
}

// ForecastArchive stores served forecasts for later evaluation.
type ForecastArchive interface {
	Init(ctx context.Context) error // ensure tables
	SaveForecast(ctx context.Context, symbol string, res *models.ForecastResult, createdAt time.Time) error
	Health(ctx context.Context) error
	Close() error
}

// ForecastPublisher emits forecast events to downstream consumers.
type ForecastPublisher interface {
	PublishForecast(ctx context.Context, ev models.ForecastEvent) error
	Close() error
}

type Metrics interface {
	RecordForecast(symbol, direction string, predictedReturn float64)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordCacheLookup(hit bool)
	RecordSinkWrite(sink string, err error)
	RecordLatency(stage string, seconds float64)
}
