package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Query engine Prometheus metrics.
var (
	// AggregationDegradedTotal counts aggregation calls that failed and were
	// absorbed into an empty result instead of an error response.
	AggregationDegradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "placedex",
			Name:      "aggregation_degraded_total",
			Help:      "Aggregation queries degraded to empty results",
		},
		[]string{"facet"},
	)

	IndexQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "placedex",
			Name:      "index_queries_total",
			Help:      "Total index queries by kind and status",
		},
		[]string{"kind", "status"},
	)
)

var registerEngineOnce sync.Once

// RegisterEngineMetrics registers the query engine metrics with the default
// registry. Safe to call more than once.
func RegisterEngineMetrics() {
	registerEngineOnce.Do(func() {
		prometheus.MustRegister(AggregationDegradedTotal, IndexQueriesTotal)
	})
}
