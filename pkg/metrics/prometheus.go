package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	barsIngested *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	analysesRun  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	cacheLookups *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		barsIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "equitylens_bars_ingested_total",
				Help: "Total number of daily bars ingested",
			},
			[]string{"source", "symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "equitylens_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		analysesRun: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "equitylens_analyses_total",
				Help: "Total number of analysis reports generated",
			},
			[]string{"symbol", "recommendation"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "equitylens_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		cacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "equitylens_cache_lookups_total",
				Help: "Report cache lookups by outcome",
			},
			[]string{"result"},
		),
	}
}

// RecordBarIngested records a bar accepted from a market data source.
func (r *Recorder) RecordBarIngested(source, symbol string) {
	r.barsIngested.WithLabelValues(source, symbol).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordAnalysis records a completed analysis and its recommendation.
func (r *Recorder) RecordAnalysis(symbol, recommendation string) {
	r.analysesRun.WithLabelValues(symbol, recommendation).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordCacheLookup records a report cache hit or miss.
func (r *Recorder) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}
