// Package metrics exposes request-level prometheus instrumentation for the
// exchange transports.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cexlink_http_requests_total",
		Help: "HTTP requests issued per exchange and endpoint.",
	}, []string{"exchange", "endpoint", "method"})

	requestErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cexlink_request_errors_total",
		Help: "Classified errors per exchange, endpoint and error kind.",
	}, []string{"exchange", "endpoint", "kind"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cexlink_http_request_duration_seconds",
		Help:    "HTTP request latency per exchange and endpoint.",
		Buckets: prometheus.DefBuckets,
	}, []string{"exchange", "endpoint"})
)

// ObserveRequest records one completed HTTP round trip.
func ObserveRequest(exchange, endpoint, method string, seconds float64) {
	requestsTotal.WithLabelValues(exchange, endpoint, method).Inc()
	requestDuration.WithLabelValues(exchange, endpoint).Observe(seconds)
}

// ObserveError records one classified error.
func ObserveError(exchange, endpoint, kind string) {
	requestErrors.WithLabelValues(exchange, endpoint, kind).Inc()
}
