package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"StockCast/internal/domain/models"
	drepo "StockCast/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	h   *models.History
	err error
	got string
}

func (f *fakeSource) FetchDaily(_ context.Context, symbol string) (*models.History, error) {
	f.got = symbol
	return f.h, f.err
}

type fakeEngine struct {
	res   *models.ForecastResult
	err   error
	calls int
	bars  int
}

func (f *fakeEngine) Forecast(_ context.Context, _ string, bars []models.Bar) (*models.ForecastResult, error) {
	f.calls++
	f.bars = len(bars)
	return f.res, f.err
}

type fakeArchive struct {
	saved []string
	err   error
}

func (a *fakeArchive) Init(context.Context) error { return nil }
func (a *fakeArchive) SaveForecast(_ context.Context, symbol string, _ *models.ForecastResult, _ time.Time) error {
	a.saved = append(a.saved, symbol)
	return a.err
}
func (a *fakeArchive) Health(context.Context) error { return nil }
func (a *fakeArchive) Close() error { return nil }

type fakePublisher struct {
	events []models.ForecastEvent
	err    error
}

func (p *fakePublisher) PublishForecast(_ context.Context, ev models.ForecastEvent) error {
	p.events = append(p.events, ev)
	return p.err
}
func (p *fakePublisher) Close() error { return nil }

type fakeMetrics struct {
	forecasts []string
	errors    []string
	sinks     map[string]int
	stages    []string
}

func newFakeMetrics() *fakeMetrics { return &fakeMetrics{sinks: map[string]int{}} }

func (m *fakeMetrics) RecordForecast(_ string, direction string, _ float64) {
	m.forecasts = append(m.forecasts, direction)
}
func (m *fakeMetrics) RecordError(kind string) { m.errors = append(m.errors, kind) }
func (m *fakeMetrics) RecordLastPrice(string, float64) {}
func (m *fakeMetrics) RecordCacheLookup(bool) {}
func (m *fakeMetrics) RecordSinkWrite(sink string, err error) {
	if err != nil {
		sink += ":error"
	}
	m.sinks[sink]++
}
func (m *fakeMetrics) RecordLatency(stage string, _ float64) { m.stages = append(m.stages, stage) }

func history(n int) *models.History {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := range bars {
		c := 100 + float64(i)
		bars[i] = models.Bar{Date: start.AddDate(0, 0, i), Open: c - 0.5, High: c + 1, Low: c - 1, Close: c, Volume: 1000}
	}
	return &models.History{Symbol: "AAPL", CompanyName: "Apple Inc.", Currency: "USD", Bars: bars}
}

func forecastResult() *models.ForecastResult {
	return &models.ForecastResult{
		Direction:       models.DirectionUp,
		Confidence:      0.8,
		ProbabilityUp:   0.8,
		ProbabilityDown: 0.2,
		CurrentPrice:    399,
		PredictedPrice:  401,
		PredictedReturn: 0.005,
		FuturePrices:    []float64{401},
	}
}

func TestPredict(t *testing.T) {
	src := &fakeSource{h: history(300)}
	eng := &fakeEngine{res: forecastResult()}
	arch := &fakeArchive{}
	pub := &fakePublisher{}
	m := newFakeMetrics()

	uc := NewPredictUseCase(src, eng, arch, pub, m, nil, 100)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return fixed }

	resp, err := uc.Predict(context.Background(), " aapl ")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", src.got)
	assert.Equal(t, 300, eng.bars)
	assert.Equal(t, "AAPL", resp.Symbol)
	assert.Equal(t, "Apple Inc.", resp.CompanyName)
	assert.Equal(t, "USD", resp.Currency)
	assert.Equal(t, models.DirectionUp, resp.Direction)

	require.Len(t, resp.ChartData, 100)
	assert.Equal(t, "2023-10-28", resp.ChartData[99].Time)
	assert.Equal(t, 399.0, resp.ChartData[99].Close)
	assert.Equal(t, 300.0, resp.ChartData[0].Close)

	assert.Equal(t, []string{"AAPL"}, arch.saved)
	require.Len(t, pub.events, 1)
	assert.Equal(t, models.EventForecastCreated, pub.events[0].EventType)
	assert.Equal(t, fixed, pub.events[0].Timestamp)

	assert.Equal(t, []string{models.DirectionUp}, m.forecasts)
	assert.Equal(t, 1, m.sinks["clickhouse"])
	assert.Equal(t, 1, m.sinks["kafka"])
	assert.Contains(t, m.stages, "fetch")
}

func TestPredictSinkFailuresDoNotFail(t *testing.T) {
	arch := &fakeArchive{err: errors.New("clickhouse down")}
	pub := &fakePublisher{err: errors.New("kafka down")}
	m := newFakeMetrics()
	uc := NewPredictUseCase(&fakeSource{h: history(250)}, &fakeEngine{res: forecastResult()}, arch, pub, m, nil, 0)

	resp, err := uc.Predict(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, 1, m.sinks["clickhouse:error"])
	assert.Equal(t, 1, m.sinks["kafka:error"])
}

func TestPredictWithoutSinks(t *testing.T) {
	uc := NewPredictUseCase(&fakeSource{h: history(250)}, &fakeEngine{res: forecastResult()}, nil, nil, nil, nil, 50)
	resp, err := uc.Predict(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Len(t, resp.ChartData, 50)
}

func TestPredictErrors(t *testing.T) {
	tests := []struct {
		name     string
		symbol   string
		src      *fakeSource
		eng      *fakeEngine
		check    func(t *testing.T, err error)
		wantKind string
	}{
		{
			name:   "blank symbol",
			symbol: "  ",
			src:    &fakeSource{h: history(10)},
			eng:    &fakeEngine{},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, models.ErrEmptyInput)
			},
		},
		{
			name:   "unknown symbol",
			symbol: "NOPE",
			src:    &fakeSource{err: drepo.ErrSymbolNotFound},
			eng:    &fakeEngine{},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, drepo.ErrSymbolNotFound)
			},
			wantKind: "SymbolNotFound",
		},
		{
			name:   "no bars",
			symbol: "EMPTY",
			src:    &fakeSource{h: &models.History{Symbol: "EMPTY"}},
			eng:    &fakeEngine{},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, models.ErrEmptyInput)
			},
			wantKind: "EmptyInput",
		},
		{
			name:   "provider failure",
			symbol: "AAPL",
			src:    &fakeSource{err: errors.New("connection reset")},
			eng:    &fakeEngine{},
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "connection reset")
				assert.Empty(t, models.KindOf(err))
			},
			wantKind: "Provider",
		},
		{
			name:   "short history",
			symbol: "NEW",
			src:    &fakeSource{h: history(50)},
			eng:    &fakeEngine{err: models.ErrInsufficientHistory},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, models.ErrInsufficientHistory)
			},
			wantKind: "InsufficientHistory",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newFakeMetrics()
			arch := &fakeArchive{}
			uc := NewPredictUseCase(tt.src, tt.eng, arch, nil, m, nil, 100)

			resp, err := uc.Predict(context.Background(), tt.symbol)
			require.Error(t, err)
			assert.Nil(t, resp)
			tt.check(t, err)
			assert.Empty(t, arch.saved)
			if tt.wantKind != "" {
				assert.Equal(t, []string{tt.wantKind}, m.errors)
			}
		})
	}
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "TrainingFailed", ErrorKind(models.ErrTrainingFailed.Wrap(errors.New("x"))))
	assert.Equal(t, "Canceled", ErrorKind(context.Canceled))
	assert.Equal(t, "Provider", ErrorKind(errors.New("boom")))
}

func TestGetCandles(t *testing.T) {
	src := &fakeSource{h: history(300)}
	uc := NewCandlesUseCase(src)
	ctx := context.Background()

	res, err := uc.GetCandles(ctx, GetCandlesParams{Symbol: "aapl"})
	require.NoError(t, err)
	assert.Equal(t, "AAPL", res.Symbol)
	assert.Equal(t, 100, res.Count)
	assert.Equal(t, "2023-10-28", res.Candles[99].Time)

	from := time.Date(2023, 10, 20, 0, 0, 0, 0, time.UTC)
	res, err = uc.GetCandles(ctx, GetCandlesParams{Symbol: "AAPL", From: from, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 9, res.Count)
	assert.Equal(t, "2023-10-20", res.Candles[0].Time)

	res, err = uc.GetCandles(ctx, GetCandlesParams{Symbol: "AAPL", Limit: 5000})
	require.NoError(t, err)
	assert.Equal(t, 300, res.Count)

	_, err = uc.GetCandles(ctx, GetCandlesParams{})
	assert.Error(t, err)

	src.err = drepo.ErrSymbolNotFound
	_, err = uc.GetCandles(ctx, GetCandlesParams{Symbol: "NOPE"})
	assert.ErrorIs(t, err, drepo.ErrSymbolNotFound)
}

type fakeSearcher struct {
	query string
	limit int
}

func (f *fakeSearcher) Search(query string, limit int) []models.Stock {
	f.query, f.limit = query, limit
	return []models.Stock{{Symbol: "AAPL", Name: "Apple Inc."}}
}

func TestSearch(t *testing.T) {
	s := &fakeSearcher{}
	got := NewSearchUseCase(s).Search(context.Background(), "app", 7)
	assert.Len(t, got, 1)
	assert.Equal(t, "app", s.query)
	assert.Equal(t, 7, s.limit)
}
