package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"StockCast/internal/domain/models"
	applogger "StockCast/pkg/logger"
)

// chExecer is the subset of pkg/clickhouse.Client the archive needs.
type chExecer interface {
	Exec(ctx context.Context, query string, args ...any) error
	Health(ctx context.Context) error
	Close() error
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// CHForecastArchive implements ForecastArchive backed by ClickHouse.
type CHForecastArchive struct {
	db    chExecer
	table string
	l     *applogger.Logger
}

func NewCHForecastArchive(db chExecer, table string) (*CHForecastArchive, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid clickhouse table name %q", table)
	}
	return &CHForecastArchive{db: db, table: table, l: applogger.Nop()}, nil
}

// SetLogger injects a structured logger.
func (s *CHForecastArchive) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

func (s *CHForecastArchive) Init(ctx context.Context) error {
	const qtpl = `
        CREATE TABLE IF NOT EXISTS %s (
            created_at       DateTime64(3),
            as_of            Date,
            symbol           LowCardinality(String),
            direction        LowCardinality(String),
            probability_up   Float64,
            confidence       Float64,
            current_price    Float64,
            predicted_price  Float64,
            predicted_return Float64,
            future_prices    Array(Float64),
            attributions     String,
            validation       String
        )
        ENGINE = MergeTree
        ORDER BY (symbol, created_at)
    `
	if err := s.db.Exec(ctx, fmt.Sprintf(qtpl, s.table)); err != nil {
		return fmt.Errorf("init forecast archive: %w", err)
	}
	return nil
}

func (s *CHForecastArchive) SaveForecast(ctx context.Context, symbol string, res *models.ForecastResult, createdAt time.Time) error {
	start := time.Now()
	attrs, err := json.Marshal(res.Attributions)
	if err != nil {
		return fmt.Errorf("marshal attributions: %w", err)
	}
	validation, err := json.Marshal(res.Validation)
	if err != nil {
		return fmt.Errorf("marshal validation: %w", err)
	}

	q := fmt.Sprintf(`INSERT INTO %s (created_at, as_of, symbol, direction, probability_up, confidence,
        current_price, predicted_price, predicted_return, future_prices, attributions, validation)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	err = s.db.Exec(ctx, q,
		createdAt.UTC(),
		res.AsOf.UTC(),
		symbol,
		res.Direction,
		res.ProbabilityUp,
		res.Confidence,
		res.CurrentPrice,
		res.PredictedPrice,
		res.PredictedReturn,
		res.FuturePrices,
		string(attrs),
		string(validation),
	)
	if err != nil {
		s.l.Error("clickhouse save_forecast error",
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return fmt.Errorf("save forecast: %w", err)
	}
	s.l.Debug("clickhouse save_forecast ok",
		applogger.String("table", s.table),
		applogger.String("symbol", symbol),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

func (s *CHForecastArchive) Health(ctx context.Context) error {
	return s.db.Health(ctx)
}

func (s *CHForecastArchive) Close() error {
	return s.db.Close()
}
