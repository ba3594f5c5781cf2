// SPDX-License-Identifier: MIT
package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, gauge.Write(metric))
	return metric.GetGauge().GetValue()
}

func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, counter.Write(metric))
	return metric.GetCounter().GetValue()
}

func TestObserveHTTPRequestDefaultsRelation(t *testing.T) {
	before := getCounterValue(t, HTTPRequestsTotal.WithLabelValues("direct", "success"))
	ObserveHTTPRequest("", "success", 20*time.Millisecond)
	after := getCounterValue(t, HTTPRequestsTotal.WithLabelValues("direct", "success"))
	assert.Equal(t, before+1, after)
}

func TestIncStreamSyncErrorUnknownReason(t *testing.T) {
	before := getCounterValue(t, StreamSyncErrorsTotal.WithLabelValues("unknown"))
	IncStreamSyncError("")
	assert.Equal(t, before+1, getCounterValue(t, StreamSyncErrorsTotal.WithLabelValues("unknown")))
}

func TestIncStreamTransition(t *testing.T) {
	before := getCounterValue(t, StreamTransitionsTotal.WithLabelValues("idle", "connecting"))
	IncStreamTransition("idle", "connecting")
	IncStreamTransition("idle", "connecting")
	assert.Equal(t, before+2, getCounterValue(t, StreamTransitionsTotal.WithLabelValues("idle", "connecting")))
}

func TestSetCircuitBreakerStateIsOneHot(t *testing.T) {
	SetCircuitBreakerState("api", "open")
	assert.Equal(t, 1.0, getGaugeValue(t, circuitBreakerState.WithLabelValues("api", "open")))
	assert.Equal(t, 0.0, getGaugeValue(t, circuitBreakerState.WithLabelValues("api", "closed")))
	assert.Equal(t, 0.0, getGaugeValue(t, circuitBreakerState.WithLabelValues("api", "half-open")))

	SetCircuitBreakerState("api", "closed")
	assert.Equal(t, 0.0, getGaugeValue(t, circuitBreakerState.WithLabelValues("api", "open")))
	assert.Equal(t, 1.0, getGaugeValue(t, circuitBreakerState.WithLabelValues("api", "closed")))
}

func TestObserveEchoRoundTripClampsNegative(t *testing.T) {
	metric := &dto.Metric{}
	require.NoError(t, StreamEchoRoundTrip.Write(metric))
	before := metric.GetHistogram().GetSampleCount()

	ObserveEchoRoundTrip(-5 * time.Millisecond)

	metric = &dto.Metric{}
	require.NoError(t, StreamEchoRoundTrip.Write(metric))
	assert.Equal(t, before+1, metric.GetHistogram().GetSampleCount())
}
