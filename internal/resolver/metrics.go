package resolver

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	resolverResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forge_resolver_resolutions_total",
			Help: "Number of full resolution passes by target.",
		},
		[]string{"target"},
	)
	resolverCacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forge_resolver_cache_hits_total",
			Help: "Number of Resolve calls answered from the per-target cache.",
		},
		[]string{"target"},
	)
	resolverDisabledComponents = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "forge_resolver_disabled_components",
			Help: "Number of disabled components observed in the last resolution of a target.",
		},
		[]string{"target"},
	)

	resolverResolutionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forge_resolver_resolution_duration_seconds",
			Help:    "Time taken to resolve every component of a target.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	metrics.Registry.MustRegister(
		resolverResolutionsTotal,
		resolverCacheHitsTotal,
		resolverDisabledComponents,
		resolverResolutionDuration,
	)
}
