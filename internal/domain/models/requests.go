package models

// Requests for the HTTP endpoints. Defined in domain for consistency and reuse.

type PredictRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required,ticker"`
}

type SearchRequest struct {
	Query string `query:"query" json:"query" validate:"max=64"`
	Limit int    `query:"limit" json:"limit" default:"10" validate:"gte=1,lte=50"`
}

type CandlesRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required,ticker"`
	N      int    `query:"n" json:"n" default:"100" validate:"gte=1,lte=1000"`
	From   string `query:"from" json:"from"`
}
