package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ProviderRequests counts upstream intelligence lookups by provider
	// and outcome (an error-kind label, or "success").
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trustrecon",
			Name:      "provider_requests_total",
			Help:      "Total number of upstream intelligence provider requests",
		},
		[]string{"provider", "outcome"},
	)

	// CacheOperations counts report cache operations by op (get/save)
	// and outcome (hit/miss/ok/failed/unavailable).
	CacheOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trustrecon",
			Name:      "cache_operations_total",
			Help:      "Total number of report cache operations",
		},
		[]string{"op", "outcome"},
	)

	// AssessmentsTotal counts served assessments by result
	// (cached/completed/degraded).
	AssessmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trustrecon",
			Name:      "assessments_total",
			Help:      "Total number of trust assessments served",
		},
		[]string{"result"},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// This function is idempotent and can be called multiple times safely.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(ProviderRequests)
		prometheus.DefaultRegisterer.Register(CacheOperations)
		prometheus.DefaultRegisterer.Register(AssessmentsTotal)
	})
}
