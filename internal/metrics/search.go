package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "profilesearch",
			Name:      "searches_total",
			Help:      "Total number of search requests",
		},
		[]string{"mode", "status"}, // mode: "plain" / "intelligent"
	)

	SearchStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "profilesearch",
			Name:      "search_stage_duration_seconds",
			Help:      "Duration of individual search pipeline stages",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"stage"}, // embed / lexical / fusion / fetch / rerank
	)

	RerankFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "profilesearch",
			Name:      "llm_fallbacks_total",
			Help:      "LLM stage failures resolved by deterministic fallback",
		},
		[]string{"stage"}, // "enhance" / "rerank" / "intelligent"
	)

	EnhancementCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "profilesearch",
			Name:      "enhancement_cache_total",
			Help:      "Query enhancement cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchStageDuration)
	prometheus.MustRegister(RerankFallbacksTotal)
	prometheus.MustRegister(EnhancementCacheTotal)
	searchMetricsRegistered = true
}
