package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	forecasts       *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	lastPrice       *prometheus.GaugeVec
	predictedReturn *prometheus.GaugeVec
	cacheLookups    *prometheus.CounterVec
	sinkWrites      *prometheus.CounterVec
	latency         *prometheus.HistogramVec
}

// New creates a recorder registered on reg; nil means the default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		forecasts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_forecasts_total",
				Help: "Forecasts served, by direction",
			},
			[]string{"direction"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"kind"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockcast_last_price",
				Help: "Last close seen for a symbol",
			},
			[]string{"symbol"},
		),
		predictedReturn: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockcast_predicted_return",
				Help: "Latest predicted next-day return for a symbol",
			},
			[]string{"symbol"},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_bar_cache_lookups_total",
				Help: "Bar cache lookups by result",
			},
			[]string{"result"},
		),
		sinkWrites: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_sink_writes_total",
				Help: "Forecast archive and event writes by sink and outcome",
			},
			[]string{"sink", "outcome"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockcast_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"stage"},
		),
	}
}

// RecordForecast counts a served forecast and tracks its predicted return.
func (r *Recorder) RecordForecast(symbol, direction string, predictedReturn float64) {
	r.forecasts.WithLabelValues(direction).Inc()
	r.predictedReturn.WithLabelValues(symbol).Set(predictedReturn)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

func (r *Recorder) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

func (r *Recorder) RecordSinkWrite(sink string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.sinkWrites.WithLabelValues(sink, outcome).Inc()
}

// RecordLatency records stage latency in seconds.
func (r *Recorder) RecordLatency(stage string, seconds float64) {
	r.latency.WithLabelValues(stage).Observe(seconds)
}
