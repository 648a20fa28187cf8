// Package metrics exposes Prometheus counters for tenant lifecycle
// operations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	lifecycleOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenanthub_lifecycle_operations_total",
		Help: "Tenant lifecycle operations by operation and result",
	}, []string{"operation", "result"})

	lifecycleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tenanthub_lifecycle_operation_duration_seconds",
		Help:    "Duration of tenant lifecycle operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	partialFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenanthub_lifecycle_partial_failures_total",
		Help: "Lifecycle operations that left catalog and partitions out of step",
	}, []string{"operation", "step"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenanthub_login_attempts_total",
		Help: "Admin login attempts by result",
	}, []string{"result"})

	partitionDrift = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tenanthub_partition_drift",
		Help: "Names found out of step by the last reconciliation pass",
	}, []string{"kind"})
)

// ObserveLifecycle records one lifecycle operation.
func ObserveLifecycle(operation string, err error, took time.Duration) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	lifecycleOperations.WithLabelValues(operation, result).Inc()
	lifecycleDuration.WithLabelValues(operation).Observe(took.Seconds())
}

// ObservePartialFailure counts an operation that needs reconciliation.
func ObservePartialFailure(operation, step string) {
	partialFailures.WithLabelValues(operation, step).Inc()
}

// ObserveLogin records a login attempt. result is one of "ok", "denied",
// "limited" or "error".
func ObserveLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

// SetPartitionDrift publishes the result of a reconciliation pass.
func SetPartitionDrift(orphaned, missing int) {
	partitionDrift.WithLabelValues("orphaned_partition").Set(float64(orphaned))
	partitionDrift.WithLabelValues("missing_partition").Set(float64(missing))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
