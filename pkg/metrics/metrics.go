// Package metrics exposes the Prometheus instruments for the search service.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// SearchesTotal counts completed searches by engine and outcome.
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serpd_searches_total",
			Help: "Completed searches",
		},
		[]string{"engine", "status"},
	)

	// SearchDuration records end-to-end search duration in seconds per engine.
	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "serpd_search_duration_seconds",
			Help:    "Search duration",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"engine"},
	)

	// PoolIdle tracks sessions waiting in the pool.
	PoolIdle = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "serpd_pool_idle_sessions",
			Help: "Idle browser sessions",
		},
	)

	// PoolLeased tracks sessions currently lent to a search.
	PoolLeased = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "serpd_pool_leased_sessions",
			Help: "Leased browser sessions",
		},
	)

	// PoolBroken tracks sessions torn down and awaiting a replacement.
	PoolBroken = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "serpd_pool_broken_sessions",
			Help: "Broken browser sessions being recycled",
		},
	)

	// CacheLookupsTotal counts result-cache lookups by outcome (hit/miss).
	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serpd_cache_lookups_total",
			Help: "Result cache lookups",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		SearchesTotal,
		SearchDuration,
		PoolIdle,
		PoolLeased,
		PoolBroken,
		CacheLookupsTotal,
	)
}
