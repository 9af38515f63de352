package features

import (
	"errors"
	"fmt"
	"math"

	"StockCast/internal/domain/models"

	"github.com/markcheno/go-talib"
)

var ErrUnorderedBars = errors.New("features: bar dates must be strictly increasing")

const (
	rsiPeriod  = 14
	atrPeriod  = 14
	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9
	bbPeriod   = 5
	bbDev      = 2.0
	volWindow  = 20
)

// AddFeatures derives the indicator columns and labels from bars. Every
// indicator only looks backwards; labels come from shiftForward. Rows inside
// the SMA 200 warm-up are dropped and the most recent row is always kept.
func AddFeatures(bars []models.Bar) (*Table, error) {
	n := len(bars)
	if n == 0 {
		return nil, models.NewForecastError(models.KindEmptyInput, "no bars supplied")
	}
	if n < MinHistory {
		return nil, models.NewForecastError(models.KindInsufficientHistory,
			"%d bars, need at least %d", n, MinHistory)
	}
	for i := 1; i < n; i++ {
		if !bars[i].Date.After(bars[i-1].Date) {
			return nil, fmt.Errorf("%w: %s after %s", ErrUnorderedBars,
				bars[i].Date.Format("2006-01-02"), bars[i-1].Date.Format("2006-01-02"))
		}
	}

	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	for i, b := range bars {
		high[i], low[i], closes[i] = b.High, b.Low, b.Close
	}

	cols := computeColumns(high, low, closes)
	next := shiftForward(closes, 1)

	first := MinHistory - 1
	t := &Table{
		Columns: append([]string(nil), DefaultSchema...),
		Rows:    make([]Row, 0, n-first),
	}
	for i := first; i < n; i++ {
		vals := make([]float64, len(DefaultSchema))
		for j, c := range DefaultSchema {
			vals[j] = cols[c][i]
		}
		r := Row{Date: bars[i].Date, Close: closes[i], Values: vals}
		if !math.IsNaN(next[i]) {
			r.HasLabel = true
			r.NextClose = next[i]
			if next[i] > closes[i] {
				r.TargetDir = 1
			}
		}
		t.Rows = append(t.Rows, r)
	}
	return t, nil
}

func computeColumns(high, low, closes []float64) map[string][]float64 {
	cols := make(map[string][]float64, len(DefaultSchema))

	cols[ColRSI] = maskWarmup(talib.Rsi(closes, rsiPeriod), rsiPeriod)
	cols[ColATR] = maskWarmup(talib.Atr(high, low, closes, atrPeriod), atrPeriod)
	cols[ColSMA20] = maskWarmup(talib.Sma(closes, 20), 19)
	cols[ColSMA50] = maskWarmup(talib.Sma(closes, 50), 49)
	cols[ColSMA200] = maskWarmup(talib.Sma(closes, 200), 199)

	ret1 := pctChange(closes, 1)
	cols[ColReturn1D] = ret1
	cols[ColReturn5D] = pctChange(closes, 5)
	cols[ColVolatility20] = rollingStd(ret1, volWindow)

	macdLookback := (macdSlow - 1) + (macdSignal - 1)
	macd, signal, hist := talib.Macd(closes, macdFast, macdSlow, macdSignal)
	cols[ColMACD] = maskWarmup(macd, macdLookback)
	cols[ColMACDHist] = maskWarmup(hist, macdLookback)
	cols[ColMACDSignal] = maskWarmup(signal, macdLookback)

	upper, middle, lower := talib.BBands(closes, bbPeriod, bbDev, bbDev, talib.SMA)
	cols[ColBBLower] = maskWarmup(lower, bbPeriod-1)
	cols[ColBBMiddle] = maskWarmup(middle, bbPeriod-1)
	cols[ColBBUpper] = maskWarmup(upper, bbPeriod-1)

	return cols
}
