package service

import (
	"context"

	"StockCast/internal/domain/models"
)

// Forecaster trains on bars and forecasts the bar after the last one.
type Forecaster interface {
	Forecast(ctx context.Context, ticker string, bars []models.Bar) (*models.ForecastResult, error)
}

// StockSearcher looks tickers up by symbol or company name.
type StockSearcher interface {
	Search(query string, limit int) []models.Stock
}
