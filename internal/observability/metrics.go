package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hubs"

// Metrics holds the Prometheus counters, histograms, and gauges for the hub directory.
type Metrics struct {
	// Data access metrics.
	Queries        *prometheus.CounterVec   // labels: operation={query,get,geojson,alerts}, outcome={success,error,not_found}
	CacheLookups   *prometheus.CounterVec   // labels: result={hit,miss,expired}
	SourceRequests *prometheus.CounterVec   // labels: operation, outcome={success,error}
	SourceDuration *prometheus.HistogramVec // labels: operation

	// Status feed metrics.
	UpdatesConsumed  prometheus.Counter
	UpdatesApplied   prometheus.Counter
	UpdatesRejected  prometheus.Counter
	IngestRunning    prometheus.Gauge
	IngestBatchSize  prometheus.Histogram
	IngestBatchDelay prometheus.Histogram

	// Geocoding metrics.
	GeocodeCache   *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeEnabled prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Data access calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by result.",
		}, []string{"result"}),
		SourceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      "Hub source requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		SourceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_request_duration_seconds",
			Help:      "Hub source request duration in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"operation"}),
		UpdatesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_updates_consumed_total",
			Help:      "Total status update messages read from the feed.",
		}),
		UpdatesApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_updates_applied_total",
			Help:      "Total status updates applied to the hub store.",
		}),
		UpdatesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_updates_rejected_total",
			Help:      "Total status updates that failed to decode or matched no hub.",
		}),
		IngestRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ingest_running",
			Help:      "1 when the status feed pipeline is active, 0 when shut down.",
		}),
		IngestBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_batch_size",
			Help:      "Number of messages per batch extracted from the status feed.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		IngestBatchDelay: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_batch_duration_seconds",
			Help:      "Duration of a complete extract-decode-apply cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when address search geocoding is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.Queries,
		m.CacheLookups,
		m.SourceRequests,
		m.SourceDuration,
		m.UpdatesConsumed,
		m.UpdatesApplied,
		m.UpdatesRejected,
		m.IngestRunning,
		m.IngestBatchSize,
		m.IngestBatchDelay,
		m.GeocodeCache,
		m.GeocodeEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		Queries:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "queries_total"}, []string{"operation", "outcome"}),
		CacheLookups:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "cache_lookups_total"}, []string{"result"}),
		SourceRequests:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "source_requests_total"}, []string{"operation", "outcome"}),
		SourceDuration:   prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "source_request_duration_seconds"}, []string{"operation"}),
		UpdatesConsumed:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "status_updates_consumed_total"}),
		UpdatesApplied:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "status_updates_applied_total"}),
		UpdatesRejected:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "status_updates_rejected_total"}),
		IngestRunning:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "ingest_running"}),
		IngestBatchSize:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "ingest_batch_size"}),
		IngestBatchDelay: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "ingest_batch_duration_seconds"}),
		GeocodeCache:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "geocode_cache_total"}, []string{"result"}),
		GeocodeEnabled:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "geocode_enabled"}),
	}
}
