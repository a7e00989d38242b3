// Package metrics exposes Prometheus collectors for the HTTP API and the object store.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudify_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cloudify_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	objectStoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cloudify_object_store_operation_duration_seconds",
			Help:    "Object store operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	objectStoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudify_object_store_operations_total",
			Help: "Total object store operations",
		},
		[]string{"operation", "status"},
	)

	uploadedBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cloudify_uploaded_bytes_total",
			Help: "Total bytes accepted by the upload endpoint",
		},
	)

	trashPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cloudify_trash_purged_items_total",
			Help: "Rows removed by empty-trash",
		},
	)
)

func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordObjectStoreOperation records one call against the external object store.
func RecordObjectStoreOperation(operation string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	objectStoreOperations.WithLabelValues(operation, status).Inc()
	objectStoreDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func RecordUpload(bytes int64) {
	uploadedBytes.Add(float64(bytes))
}

func RecordTrashPurged(count int64) {
	trashPurged.Add(float64(count))
}

// Middleware labels requests by route template so ids don't explode cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
