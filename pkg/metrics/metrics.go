// Package metrics exposes the Prometheus collectors of the engine
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

var (
	// BatchDuration is the wall time of one run-all request
	BatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "varlytics_batch_duration_seconds",
		Help:    "Run-all batch duration in seconds by execution strategy.",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
	}, []string{"strategy"})

	// ModelRuns counts catalogue entry outcomes
	ModelRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "varlytics_model_runs_total",
		Help: "Catalogue entry runs by model and outcome.",
	}, []string{"model", "outcome"})

	// ModelFits counts maximum-likelihood fits actually performed
	ModelFits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "varlytics_model_fits_total",
		Help: "Volatility model fits by spec and outcome.",
	}, []string{"spec", "outcome"})

	// PortfolioDuration is the wall time of one portfolio analysis
	PortfolioDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "varlytics_portfolio_duration_seconds",
		Help:    "Portfolio analysis duration in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})

	// HistoryFetches counts market data fetches by source and outcome
	HistoryFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "varlytics_history_fetches_total",
		Help: "Price history fetches by source and outcome.",
	}, []string{"source", "outcome"})
)

// Outcome maps an error to its label
func Outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}

// ObserveBatch records one run-all duration
func ObserveBatch(strategy string, d time.Duration) {
	BatchDuration.WithLabelValues(strategy).Observe(d.Seconds())
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
