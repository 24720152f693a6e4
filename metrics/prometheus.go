package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "endpoint", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)
	syncProductsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_products_total",
			Help: "Total number of products processed by sync runs, by outcome.",
		},
		[]string{"outcome"},
	)
	syncRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sync_run_duration_seconds",
			Help:    "Histogram of full sync run durations.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(syncProductsTotal)
	prometheus.MustRegister(syncRunDuration)
}

// RecordRequest records metrics for a handled HTTP request.
func RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := classifyStatus(statusCode)
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// RecordSyncOutcome counts a single reconciled record under its outcome label
// (inserted, updated, unchanged, skipped, failed).
func RecordSyncOutcome(outcome string) {
	syncProductsTotal.WithLabelValues(outcome).Inc()
}

// RecordSyncRun records the duration of a completed sync run.
func RecordSyncRun(duration time.Duration) {
	syncRunDuration.Observe(duration.Seconds())
}

func classifyStatus(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "2xx"
	} else if statusCode >= 300 && statusCode < 400 {
		return "3xx"
	} else if statusCode >= 400 && statusCode < 500 {
		return "4xx"
	} else if statusCode >= 500 && statusCode < 600 {
		return "5xx"
	}
	return "unknown"
}

// MetricsHandler returns the HTTP handler exporting Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
