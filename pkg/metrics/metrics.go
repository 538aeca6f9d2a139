// Package metrics defines the Prometheus collectors used by the indexer and the
// searcher and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the engine.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	QueriesTotal         *prometheus.CounterVec
	QueryLatency         *prometheus.HistogramVec
	RankedResultsCount   prometheus.Histogram
	DictionaryFallbacks  *prometheus.CounterVec
	DictionaryMode       *prometheus.GaugeVec
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	RecordsIndexedTotal  prometheus.Counter
	IndexTerms           prometheus.Gauge
	IndexDocuments       prometheus.Gauge
	SkipPointers         prometheus.Gauge
	BuildDuration        prometheus.Histogram
}

// New creates all collectors and registers them on reg. Passing
// prometheus.DefaultRegisterer exposes them through Handler.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retrieval_queries_total",
				Help: "Total queries by kind (boolean, ranked) and outcome (hit, zero_result, syntax_error).",
			},
			[]string{"kind", "outcome"},
		),
		QueryLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "retrieval_query_latency_seconds",
				Help:    "Query evaluation latency in seconds.",
				Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
			[]string{"kind", "dict_mode"},
		),
		RankedResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "retrieval_ranked_results_count",
				Help:    "Number of results returned per ranked query.",
				Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
			},
		),
		DictionaryFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retrieval_dictionary_fallbacks_total",
				Help: "Times a compressed dictionary could not serve a lookup and raw membership was used.",
			},
			[]string{"requested_mode"},
		),
		DictionaryMode: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "retrieval_dictionary_mode",
				Help: "Active dictionary mode (1 for the mode in use).",
			},
			[]string{"mode"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "retrieval_cache_hits_total",
				Help: "Total number of ranked-result cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "retrieval_cache_misses_total",
				Help: "Total number of ranked-result cache misses.",
			},
		),
		RecordsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "retrieval_records_indexed_total",
				Help: "Token-stream records accumulated by the indexer.",
			},
		),
		IndexTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "retrieval_index_terms",
				Help: "Number of terms in the frozen index.",
			},
		),
		IndexDocuments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "retrieval_index_documents",
				Help: "Number of distinct documents in the frozen index.",
			},
		),
		SkipPointers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "retrieval_index_skip_pointers",
				Help: "Number of skip pointers across all posting lists.",
			},
		),
		BuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "retrieval_index_build_duration_seconds",
				Help:    "Time from first token record to frozen index.",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.QueriesTotal,
		m.QueryLatency,
		m.RankedResultsCount,
		m.DictionaryFallbacks,
		m.DictionaryMode,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.RecordsIndexedTotal,
		m.IndexTerms,
		m.IndexDocuments,
		m.SkipPointers,
		m.BuildDuration,
	)

	return m
}

// SetDictionaryMode marks mode as the only active dictionary mode.
func (m *Metrics) SetDictionaryMode(mode string) {
	for _, known := range []string{"raw", "block", "front"} {
		v := 0.0
		if known == mode {
			v = 1
		}
		m.DictionaryMode.WithLabelValues(known).Set(v)
	}
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
