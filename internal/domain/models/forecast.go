package models

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	DirectionUp   = "UP"
	DirectionDown = "DOWN"
)

// Attribution is a signed per-feature contribution to the direction score.
// It serializes as a [name, value] pair.
type Attribution struct {
	Feature string
	Value   float64
}

func (a Attribution) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{a.Feature, a.Value})
}

func (a *Attribution) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("attribution: want 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &a.Feature); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &a.Value)
}

// FoldMetric is the outcome of one walk-forward fold.
type FoldMetric struct {
	Fold          int     `json:"fold"`
	TrainRows     int     `json:"train_rows"`
	TestRows      int     `json:"test_rows"`
	BestIteration int     `json:"best_iteration"`
	Score         float64 `json:"score"`
}

// ModelReport summarizes validation of one model and its final refit.
type ModelReport struct {
	Metric      string       `json:"metric"`
	Folds       []FoldMetric `json:"folds"`
	MeanScore   float64      `json:"mean_score"`
	FinalRounds int          `json:"final_rounds"`
	TrainRows   int          `json:"train_rows"`
}

type ValidationReport struct {
	Classifier ModelReport `json:"classifier"`
	Regressor  ModelReport `json:"regressor"`
}

// ForecastResult is the output of one forecast run.
type ForecastResult struct {
	Direction       string           `json:"direction"`
	Confidence      float64          `json:"confidence"`
	ProbabilityUp   float64          `json:"probability_up"`
	ProbabilityDown float64          `json:"probability_down"`
	Attributions    []Attribution    `json:"shap_features"`
	CurrentPrice    float64          `json:"current_price"`
	PredictedPrice  float64          `json:"predicted_price"`
	PredictedReturn float64          `json:"predicted_return"`
	FuturePrices    []float64        `json:"future_prices"`
	AsOf            time.Time        `json:"as_of"`
	Validation      ValidationReport `json:"validation"`
}

// ChartPoint is one bar of chart data; Time is formatted YYYY-MM-DD.
type ChartPoint struct {
	Time  string  `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// PredictionResponse is the payload of GET /api/predict/:symbol.
type PredictionResponse struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name"`
	Currency    string `json:"currency"`
	*ForecastResult
	ChartData []ChartPoint `json:"chart_data"`
}

// Stock is a searchable ticker.
type Stock struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
}

const EventForecastCreated = "FORECAST_CREATED"

// ForecastEvent is published after every successful forecast.
type ForecastEvent struct {
	EventType      string    `json:"event_type"`
	Symbol         string    `json:"symbol"`
	Direction      string    `json:"direction"`
	ProbabilityUp  float64   `json:"probability_up"`
	CurrentPrice   float64   `json:"current_price"`
	PredictedPrice float64   `json:"predicted_price"`
	Timestamp      time.Time `json:"timestamp"`
}
