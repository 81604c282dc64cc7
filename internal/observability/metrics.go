// internal/observability/metrics.go
package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Metric status labels.
	StatusSuccess = "success"
	StatusError   = "error"

	defaultNamespace = "dashboard"
)

// Metrics holds the Prometheus collectors for the dashboard core and its adapters.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Remote API metrics
	RemoteRequestsTotal   *prometheus.CounterVec
	RemoteRequestDuration *prometheus.HistogramVec

	// Collection metrics
	CollectionOperationsTotal *prometheus.CounterVec
	CollectionSize            *prometheus.GaugeVec
	RollbacksTotal            *prometheus.CounterVec
	BulkDeleteItemsTotal      *prometheus.CounterVec

	// List cache metrics
	ListCacheTotal *prometheus.CounterVec
}

var (
	globalMetrics *Metrics
	globalOnce    sync.Once
)

// InitMetrics registers the collectors with the default registry once and returns them.
func InitMetrics(namespace string) *Metrics {
	globalOnce.Do(func() {
		globalMetrics = NewMetrics(prometheus.DefaultRegisterer, namespace)
	})
	return globalMetrics
}

// NewMetrics registers a fresh set of collectors with reg.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = defaultNamespace
	}
	factory := promauto.With(reg)

	return &Metrics{
		RemoteRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Total number of remote API requests",
			},
			[]string{"method", "status"},
		),
		RemoteRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "Remote API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		CollectionOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "collection",
				Name:      "operations_total",
				Help:      "Total number of collection cache operations",
			},
			[]string{"resource", "operation", "status"},
		),
		CollectionSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "collection",
				Name:      "items",
				Help:      "Number of resources currently held by the collection cache",
			},
			[]string{"resource"},
		),
		RollbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "collection",
				Name:      "rollbacks_total",
				Help:      "Total number of resources restored after a failed optimistic delete",
			},
			[]string{"resource", "operation"},
		),
		BulkDeleteItemsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "collection",
				Name:      "bulk_delete_items_total",
				Help:      "Total number of resources processed by bulk deletes",
			},
			[]string{"resource", "outcome"},
		),
		ListCacheTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "list_cache",
				Name:      "lookups_total",
				Help:      "Total number of list cache lookups",
			},
			[]string{"resource", "result"},
		),
	}
}

// RecordRemoteRequest records one HTTP round trip. A zero status means a transport failure.
func (m *Metrics) RecordRemoteRequest(method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	label := "transport_error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.RemoteRequestsTotal.WithLabelValues(method, label).Inc()
	m.RemoteRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordOperation records a collection operation outcome.
func (m *Metrics) RecordOperation(resource, operation string, err error) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.CollectionOperationsTotal.WithLabelValues(resource, operation, status).Inc()
}

// SetCollectionSize reports the current number of cached resources.
func (m *Metrics) SetCollectionSize(resource string, n int) {
	if m == nil {
		return
	}
	m.CollectionSize.WithLabelValues(resource).Set(float64(n))
}

// RecordRollback counts restored resources.
func (m *Metrics) RecordRollback(resource, operation string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RollbacksTotal.WithLabelValues(resource, operation).Add(float64(n))
}

// RecordBulkDelete counts bulk delete outcomes per item.
func (m *Metrics) RecordBulkDelete(resource string, deleted, failed, skipped int) {
	if m == nil {
		return
	}
	m.BulkDeleteItemsTotal.WithLabelValues(resource, "deleted").Add(float64(deleted))
	m.BulkDeleteItemsTotal.WithLabelValues(resource, "failed").Add(float64(failed))
	m.BulkDeleteItemsTotal.WithLabelValues(resource, "skipped").Add(float64(skipped))
}

// RecordListCache counts list cache hits and misses.
func (m *Metrics) RecordListCache(resource string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.ListCacheTotal.WithLabelValues(resource, result).Inc()
}
