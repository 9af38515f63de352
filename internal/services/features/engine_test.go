package features

import (
	"errors"
	"math"
	"testing"
	"time"

	"StockCast/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBars(n int, price func(i int) float64) []models.Bar {
	start := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := range bars {
		c := price(i)
		bars[i] = models.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   c - 0.2,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000 + float64(i),
		}
	}
	return bars
}

func wavy(i int) float64 {
	return 100 + 0.3*float64(i) + 5*math.Sin(float64(i)/7)
}

func TestAddFeatures(t *testing.T) {
	t.Run("rejects empty input", func(t *testing.T) {
		_, err := AddFeatures(nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrEmptyInput))
	})

	t.Run("rejects short history", func(t *testing.T) {
		_, err := AddFeatures(makeBars(50, wavy))
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrInsufficientHistory))
	})

	t.Run("rejects unordered dates", func(t *testing.T) {
		bars := makeBars(250, wavy)
		bars[100].Date = bars[99].Date
		_, err := AddFeatures(bars)
		assert.ErrorIs(t, err, ErrUnorderedBars)
	})

	t.Run("exactly the minimum yields one unlabeled row", func(t *testing.T) {
		table, err := AddFeatures(makeBars(MinHistory, wavy))
		require.NoError(t, err)
		require.Len(t, table.Rows, 1)
		assert.False(t, table.Rows[0].HasLabel)
		assert.True(t, table.Rows[0].Ready())
	})

	t.Run("drops warm-up and keeps the latest row", func(t *testing.T) {
		bars := makeBars(300, wavy)
		table, err := AddFeatures(bars)
		require.NoError(t, err)

		assert.LessOrEqual(t, len(table.Rows), len(bars))
		assert.Len(t, table.Rows, 300-MinHistory+1)
		assert.Equal(t, DefaultSchema, table.Columns)

		latest, ok := table.Latest()
		require.True(t, ok)
		assert.Equal(t, bars[len(bars)-1].Date, latest.Date)
		assert.False(t, latest.HasLabel)
		assert.True(t, latest.Ready(), "all declared columns defined on the latest row")
		assert.Len(t, table.Labeled(), len(table.Rows)-1)
	})
}

func TestAddFeaturesLabels(t *testing.T) {
	table, err := AddFeatures(makeBars(320, wavy))
	require.NoError(t, err)

	rows := table.Rows
	for i := 0; i < len(rows)-1; i++ {
		want := 0
		if rows[i+1].Close > rows[i].Close {
			want = 1
		}
		require.True(t, rows[i].HasLabel)
		assert.Equal(t, want, rows[i].TargetDir, "row %d", i)
		assert.Equal(t, rows[i+1].Close, rows[i].NextClose)
		assert.InDelta(t, rows[i+1].Close/rows[i].Close-1, rows[i].NextReturn(), 1e-12)
	}
	assert.True(t, math.IsNaN(rows[len(rows)-1].NextReturn()))
}

func TestAddFeaturesIsCausal(t *testing.T) {
	bars := makeBars(320, wavy)
	full, err := AddFeatures(bars)
	require.NoError(t, err)

	prefix, err := AddFeatures(bars[:260])
	require.NoError(t, err)

	byDate := make(map[time.Time]Row, len(full.Rows))
	for _, r := range full.Rows {
		byDate[r.Date] = r
	}
	for _, r := range prefix.Rows {
		other, ok := byDate[r.Date]
		require.True(t, ok)
		for j, col := range prefix.Columns {
			assert.InDelta(t, other.Values[j], r.Values[j], 1e-9, "%s on %s", col, r.Date.Format("2006-01-02"))
		}
	}
}

func TestAddFeaturesIsIdempotent(t *testing.T) {
	bars := makeBars(280, wavy)
	a, err := AddFeatures(bars)
	require.NoError(t, err)
	b, err := AddFeatures(bars)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAddFeaturesValues(t *testing.T) {
	bars := makeBars(260, func(i int) float64 { return 100 + 0.5*float64(i) })
	table, err := AddFeatures(bars)
	require.NoError(t, err)

	latest, _ := table.Latest()
	last := len(bars) - 1

	sma20, _ := table.Value(len(table.Rows)-1, ColSMA20)
	var sum float64
	for i := last - 19; i <= last; i++ {
		sum += bars[i].Close
	}
	assert.InDelta(t, sum/20, sma20, 1e-9)

	r1, _ := table.Value(len(table.Rows)-1, ColReturn1D)
	assert.InDelta(t, bars[last].Close/bars[last-1].Close-1, r1, 1e-12)

	rsi, _ := table.Value(len(table.Rows)-1, ColRSI)
	assert.InDelta(t, 100, rsi, 1e-9, "monotone series has no losses")

	atr, _ := table.Value(len(table.Rows)-1, ColATR)
	assert.InDelta(t, 2, atr, 1e-6, "true range is the constant 2-point bar span")

	lower, _ := table.Value(len(table.Rows)-1, ColBBLower)
	upper, _ := table.Value(len(table.Rows)-1, ColBBUpper)
	assert.Less(t, lower, latest.Close)
	assert.Greater(t, upper, lower)
}

func TestResolve(t *testing.T) {
	got := Resolve([]string{ColSMA20, "missing", ColRSI, ColSMA20}, DefaultSchema)
	assert.Equal(t, []string{ColSMA20, ColRSI}, got)
	assert.Empty(t, Resolve([]string{"a"}, nil))
}

func TestTableMatrix(t *testing.T) {
	table, err := AddFeatures(makeBars(210, wavy))
	require.NoError(t, err)

	rows := table.Labeled()
	x, err := table.Matrix(rows, []string{ColRSI, ColSMA50})
	require.NoError(t, err)
	require.Len(t, x, len(rows))
	assert.Len(t, x[0], 2)
	assert.Equal(t, rows[0].Values[table.Index(ColSMA50)], x[0][1])

	_, err = table.Matrix(rows, []string{"nope"})
	assert.Error(t, err)
}
