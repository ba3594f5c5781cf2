// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts hypermedia GETs by relation and outcome.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "udapi_http_requests_total",
		Help: "Total number of hypermedia GET requests by relation and result",
	}, []string{"relation", "result"})

	// HTTPRequestDuration tracks the latency of one navigation hop.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "udapi_http_request_duration_seconds",
		Help:    "Latency of hypermedia GET requests by relation",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"relation"})
)

// ObserveHTTPRequest records the outcome and latency of a single GET.
// An empty relation is reported as "direct" (root document fetches).
func ObserveHTTPRequest(relation, result string, d time.Duration) {
	if relation == "" {
		relation = "direct"
	}
	if result == "" {
		result = "unknown"
	}
	HTTPRequestsTotal.WithLabelValues(relation, result).Inc()
	HTTPRequestDuration.WithLabelValues(relation).Observe(d.Seconds())
}
