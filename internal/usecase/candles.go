package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
)

const (
	defaultCandles = 100
	maxCandles     = 1000
)

// CandlesUseCase provides business logic for retrieving daily bars.
type CandlesUseCase struct {
	src domrepo.BarSource
}

func NewCandlesUseCase(src domrepo.BarSource) *CandlesUseCase {
	return &CandlesUseCase{src: src}
}

type GetCandlesParams struct {
	Symbol string
	From   time.Time
	Limit  int
}

type GetCandlesResult struct {
	Symbol   string              `json:"symbol"`
	Currency string              `json:"currency"`
	Count    int                 `json:"count"`
	Candles  []models.ChartPoint `json:"candles"`
}

// GetCandles returns the most recent Limit bars on or after From.
func (uc *CandlesUseCase) GetCandles(ctx context.Context, p GetCandlesParams) (*GetCandlesResult, error) {
	p.Symbol = strings.ToUpper(strings.TrimSpace(p.Symbol))
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.Limit <= 0 {
		p.Limit = defaultCandles
	}
	if p.Limit > maxCandles {
		p.Limit = maxCandles
	}

	h, err := uc.src.FetchDaily(ctx, p.Symbol)
	if err != nil {
		return nil, fmt.Errorf("get candles: %w", err)
	}

	bars := h.Bars
	if !p.From.IsZero() {
		i := 0
		for i < len(bars) && bars[i].Date.Before(p.From) {
			i++
		}
		bars = bars[i:]
	}
	if len(bars) > p.Limit {
		bars = bars[len(bars)-p.Limit:]
	}

	candles := ChartData(bars)
	return &GetCandlesResult{
		Symbol:   p.Symbol,
		Currency: h.Currency,
		Count:    len(candles),
		Candles:  candles,
	}, nil
}
