package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics for the order lifecycle service
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	OperationOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_operation_outcomes_total",
			Help: "Order operations by outcome code (ok or the failure kind)",
		},
		[]string{"operation", "code"},
	)

	NotificationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_notification_failures_total",
			Help: "Best-effort seller notifications that could not be written",
		},
		[]string{"type"},
	)

	CacheInvalidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_tag_invalidations_total",
			Help: "Cache tag invalidations broadcast, by tag and result",
		},
		[]string{"tag", "result"},
	)
)

var registerOnce sync.Once

// Register registers all Prometheus metrics with the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)
		prometheus.MustRegister(OperationOutcomesTotal)
		prometheus.MustRegister(NotificationFailuresTotal)
		prometheus.MustRegister(CacheInvalidationsTotal)
	})
}
