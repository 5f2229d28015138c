package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sounding"

// Metrics holds the Prometheus counters, histograms, and gauges for the sounding service.
type Metrics struct {
	// Archive fetch metrics.
	FetchRequests *prometheus.CounterVec // labels: outcome={success,no_data,error}
	FetchRetries  prometheus.Counter
	FetchCache    *prometheus.CounterVec // labels: result={hit,miss}
	FetchDuration prometheus.Histogram

	// Analysis metrics.
	Analyses         *prometheus.CounterVec // labels: outcome={success,invalid,no_data,parse_error,fetch_error}
	AnalysisDuration prometheus.Histogram
	ParseErrors      prometheus.Counter

	// Report publishing metrics.
	ReportsPublished prometheus.Counter
	PublishErrors    prometheus.Counter
	PublishEnabled   prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Upper-air archive requests by outcome.",
		}, []string{"outcome"}),
		FetchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_retries_total",
			Help:      "Archive requests retried after a transient failure.",
		}),
		FetchCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_cache_total",
			Help:      "Sounding cache lookups by result.",
		}, []string{"result"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Archive request duration in seconds, retries included.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		Analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Sounding analyses by outcome.",
		}, []string{"outcome"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Duration of parse and diagnose for one sounding.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_errors_total",
			Help:      "Soundings whose text held no level records.",
		}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_published_total",
			Help:      "Reports written to the Kafka topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Reports that failed to publish.",
		}),
		PublishEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "publish_enabled",
			Help:      "1 when reports are published to Kafka, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchRetries,
		m.FetchCache,
		m.FetchDuration,
		m.Analyses,
		m.AnalysisDuration,
		m.ParseErrors,
		m.ReportsPublished,
		m.PublishErrors,
		m.PublishEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		FetchRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "fetch_requests_total"}, []string{"outcome"}),
		FetchRetries:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "fetch_retries_total"}),
		FetchCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "fetch_cache_total"}, []string{"result"}),
		FetchDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "fetch_duration_seconds"}),
		Analyses:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "analyses_total"}, []string{"outcome"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "analysis_duration_seconds"}),
		ParseErrors:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "parse_errors_total"}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "reports_published_total"}),
		PublishErrors:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "publish_errors_total"}),
		PublishEnabled:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "publish_enabled"}),
	}
}

// NewUnregisteredMetrics returns Metrics that are not registered with any
// registry, for one-shot tools that expose no /metrics endpoint.
func NewUnregisteredMetrics() *Metrics {
	return NewMetricsForTesting()
}
