package features

// Column names of the feature table. Indicator columns carry their
// parameters in the name, e.g. MACD_12_26_9.
const (
	ColRSI          = "rsi"
	ColATR          = "atr"
	ColSMA20        = "sma_20"
	ColSMA50        = "sma_50"
	ColSMA200       = "sma_200"
	ColReturn1D     = "return_1d"
	ColReturn5D     = "return_5d"
	ColVolatility20 = "volatility_20"
	ColMACD         = "MACD_12_26_9"
	ColMACDHist     = "MACDh_12_26_9"
	ColMACDSignal   = "MACDs_12_26_9"
	ColBBLower      = "BBL_5_2.0"
	ColBBMiddle     = "BBM_5_2.0"
	ColBBUpper      = "BBU_5_2.0"
)

// MinHistory is the number of bars the longest window (SMA 200) needs.
const MinHistory = 200

// DefaultSchema is the declared feature list both models train on.
var DefaultSchema = []string{
	ColRSI, ColATR, ColSMA20, ColSMA50, ColSMA200,
	ColReturn1D, ColReturn5D, ColVolatility20,
	ColMACD, ColMACDHist, ColMACDSignal,
	ColBBLower, ColBBMiddle, ColBBUpper,
}

// Resolve keeps the declared columns that exist in available, in declared
// order. Unknown names are dropped silently.
func Resolve(declared, available []string) []string {
	have := make(map[string]struct{}, len(available))
	for _, c := range available {
		have[c] = struct{}{}
	}
	out := make([]string, 0, len(declared))
	seen := make(map[string]struct{}, len(declared))
	for _, c := range declared {
		if _, ok := have[c]; !ok {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
