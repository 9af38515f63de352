package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"StockCast/internal/domain/models"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50
)

//go:embed stocks.json
var embedded []byte

// Catalog is a fixed, read-only list of searchable tickers.
type Catalog struct {
	stocks []models.Stock
}

// New loads the embedded ticker list.
func New() (*Catalog, error) {
	return FromJSON(embedded)
}

// FromJSON builds a catalog from a JSON array of stocks.
func FromJSON(b []byte) (*Catalog, error) {
	var stocks []models.Stock
	if err := json.Unmarshal(b, &stocks); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &Catalog{stocks: stocks}, nil
}

// Len returns the number of listed tickers.
func (c *Catalog) Len() int { return len(c.stocks) }

// Search matches query case-insensitively against symbol and name and
// returns hits in list order. An empty query matches everything.
func (c *Catalog) Search(query string, limit int) []models.Stock {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]models.Stock, 0, limit)
	for _, s := range c.stocks {
		if len(out) == limit {
			break
		}
		if strings.Contains(strings.ToLower(s.Symbol), q) || strings.Contains(strings.ToLower(s.Name), q) {
			out = append(out, s)
		}
	}
	return out
}
