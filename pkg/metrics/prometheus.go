package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	queriesTotal   *prometheus.CounterVec
	queryLatency   *prometheus.HistogramVec
	simulatedPaths prometheus.Counter
	seriesLoads    *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
}

// New creates a recorder registered with the default Prometheus registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registered with reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		queriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "openfof_analytics_queries_total",
				Help: "Total number of analytics queries by type and result",
			},
			[]string{"query", "result"},
		),
		queryLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "openfof_analytics_query_duration_seconds",
				Help:    "Duration of analytics queries in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"query"},
		),
		simulatedPaths: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "openfof_simulated_paths_total",
				Help: "Total number of Monte Carlo price paths simulated",
			},
		),
		seriesLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "openfof_price_series_loads_total",
				Help: "Total number of price series reads by backend and result",
			},
			[]string{"backend", "result"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "openfof_price_cache_lookups_total",
				Help: "Price series cache lookups by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// RecordQuery records a completed analytics query and its latency.
func (r *Recorder) RecordQuery(query, result string, seconds float64) {
	r.queriesTotal.WithLabelValues(query, result).Inc()
	r.queryLatency.WithLabelValues(query).Observe(seconds)
}

// RecordSimulatedPaths adds n simulated paths.
func (r *Recorder) RecordSimulatedPaths(n int) {
	r.simulatedPaths.Add(float64(n))
}

// RecordSeriesLoad records one read of a price store backend.
func (r *Recorder) RecordSeriesLoad(backend, result string) {
	r.seriesLoads.WithLabelValues(backend, result).Inc()
}

// RecordCacheLookup records a cache hit or miss.
func (r *Recorder) RecordCacheLookup(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	r.cacheLookups.WithLabelValues(outcome).Inc()
}
