package features

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// pctChange returns x[i]/x[i-k] - 1, NaN where undefined.
func pctChange(x []float64, k int) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		if i < k || x[i-k] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = x[i]/x[i-k] - 1
	}
	return out
}

// rollingStd is the sample standard deviation over the trailing window.
// A window containing NaN yields NaN.
func rollingStd(x []float64, window int) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		if i+1 < window {
			out[i] = math.NaN()
			continue
		}
		w := x[i+1-window : i+1]
		if hasNaN(w) {
			out[i] = math.NaN()
			continue
		}
		out[i] = stat.StdDev(w, nil)
	}
	return out
}

// shiftForward returns x[i+k], NaN past the end. This is the only place
// future values are read.
func shiftForward(x []float64, k int) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		if i+k >= len(x) {
			out[i] = math.NaN()
			continue
		}
		out[i] = x[i+k]
	}
	return out
}

// maskWarmup overwrites the first n values, which talib leaves at zero.
func maskWarmup(x []float64, n int) []float64 {
	for i := 0; i < n && i < len(x); i++ {
		x[i] = math.NaN()
	}
	return x
}

func hasNaN(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
