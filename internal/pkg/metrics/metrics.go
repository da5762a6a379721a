// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "treasury"

// Upstream outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	// UpstreamRequests counts calls to external data sources.
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Total number of upstream requests by source and outcome",
	}, []string{"source", "outcome"})

	// PriceFallbacks counts fallbacks taken by the price resolver.
	PriceFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_fallbacks_total",
		Help:      "Total number of price resolver fallbacks by kind",
	}, []string{"kind"})

	// HTTPRequestDuration tracks API latency.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"route", "status"})
)

// ObserveUpstream records the outcome of one upstream call.
func ObserveUpstream(source string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	UpstreamRequests.WithLabelValues(source, outcome).Inc()
}

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
