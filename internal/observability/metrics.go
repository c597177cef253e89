package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the weather screen controller.
type Metrics struct {
	Keystrokes prometheus.Counter

	// labels: outcome={success,error,discarded}
	SuggestionRequests *prometheus.CounterVec

	// labels: origin={startup,selection,retry,refresh}, outcome={success,error,discarded}
	ForecastRequests *prometheus.CounterVec
	ForecastDuration prometheus.Histogram

	// labels: op={read,write}, outcome={success,error,missing}
	PersistenceOps *prometheus.CounterVec
}

func newMetrics() *Metrics {
	return &Metrics{
		Keystrokes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_home",
			Name:      "search_keystrokes_total",
			Help:      "Search text changes received.",
		}),
		SuggestionRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_home",
			Name:      "suggestion_requests_total",
			Help:      "Location suggestion requests by outcome.",
		}, []string{"outcome"}),
		ForecastRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_home",
			Name:      "forecast_requests_total",
			Help:      "Forecast requests by origin and outcome.",
		}, []string{"origin", "outcome"}),
		ForecastDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_home",
			Name:      "forecast_request_duration_seconds",
			Help:      "Duration of forecast requests, including transport retries.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		PersistenceOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_home",
			Name:      "persistence_operations_total",
			Help:      "Remembered-city reads and writes by outcome.",
		}, []string{"op", "outcome"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Keystrokes,
		m.SuggestionRequests,
		m.ForecastRequests,
		m.ForecastDuration,
		m.PersistenceOps,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
