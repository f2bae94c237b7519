package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "catalog",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 20},
	}, []string{"method", "path"})

	HTTPPanicsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "http_panics_total",
		Help:      "Total handler panics recovered by the HTTP server.",
	})

	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "provider_requests_total",
		Help:      "Total requests to exercise providers by provider name and result status.",
	}, []string{"provider", "status"})

	ProviderRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "catalog",
		Name:      "provider_request_duration_seconds",
		Help:      "Exercise provider request duration in seconds.",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 8, 10, 20},
	}, []string{"provider"})

	ProviderAvailable = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "catalog",
		Name:      "provider_available",
		Help:      "Whether the last request to a provider succeeded (1) or failed (0).",
	}, []string{"provider"})

	EnrichmentRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "enrichment_requests_total",
		Help:      "Total media enrichment lookups by source and result status.",
	}, []string{"source", "status"})

	EnrichmentCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "enrichment_cache_hits_total",
		Help:      "Total number of enrichment lookup cache hits.",
	})

	EnrichmentCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "enrichment_cache_misses_total",
		Help:      "Total number of enrichment lookup cache misses.",
	})

	StoreQueryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "catalog",
		Name:      "store_query_duration_seconds",
		Help:      "Exercise store query duration in seconds.",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.3, 1, 3},
	}, []string{"operation"})

	SearchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "searches_total",
		Help:      "Total catalog searches by serving path.",
	}, []string{"note"})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		HTTPPanicsTotal,
		ProviderRequestsTotal,
		ProviderRequestDuration,
		ProviderAvailable,
		EnrichmentRequestsTotal,
		EnrichmentCacheHitsTotal,
		EnrichmentCacheMissesTotal,
		StoreQueryDuration,
		SearchesTotal,
	)
}
