package models

import "time"

// Bar is one daily OHLCV record. Date is the trading day at midnight UTC.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// History is what the data layer hands to the use cases: ordered bars plus
// the provider metadata needed for the response.
type History struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name"`
	Currency    string `json:"currency"`
	Bars        []Bar  `json:"bars"`
}

// Last returns the most recent bar.
func (h *History) Last() (Bar, bool) {
	if h == nil || len(h.Bars) == 0 {
		return Bar{}, false
	}
	return h.Bars[len(h.Bars)-1], true
}

// Tail returns at most n most recent bars.
func (h *History) Tail(n int) []Bar {
	if h == nil || n <= 0 {
		return nil
	}
	if n >= len(h.Bars) {
		return h.Bars
	}
	return h.Bars[len(h.Bars)-n:]
}
