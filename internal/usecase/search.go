package usecase

import (
	"context"

	"StockCast/internal/domain/models"
	dsvc "StockCast/internal/domain/service"
)

// SearchUseCase looks tickers up in the catalog.
type SearchUseCase struct {
	searcher dsvc.StockSearcher
}

func NewSearchUseCase(searcher dsvc.StockSearcher) *SearchUseCase {
	return &SearchUseCase{searcher: searcher}
}

func (uc *SearchUseCase) Search(_ context.Context, query string, limit int) []models.Stock {
	return uc.searcher.Search(query, limit)
}
