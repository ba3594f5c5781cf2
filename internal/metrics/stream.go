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
	// StreamFramesTotal counts frames processed by consume loops.
	StreamFramesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "udapi_stream_frames_total",
		Help: "Total number of stream frames processed by kind (data, echo)",
	}, []string{"kind"})

	// StreamSyncErrorsTotal counts frames rejected as malformed.
	StreamSyncErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "udapi_stream_sync_errors_total",
		Help: "Total number of stream synchronization errors by reason",
	}, []string{"reason"})

	// StreamEchoRoundTrip tracks echo round-trip latency.
	StreamEchoRoundTrip = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "udapi_stream_echo_roundtrip_seconds",
		Help:    "Echo round-trip time between send and receipt",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 3, 10},
	})

	// StreamTransitionsTotal counts session lifecycle transitions.
	StreamTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "udapi_stream_transitions_total",
		Help: "Total number of streaming session state transitions",
	}, []string{"from", "to"})

	// StreamDisconnectsTotal counts session disconnects by cause.
	StreamDisconnectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "udapi_stream_disconnects_total",
		Help: "Total number of stream disconnects by cause (requested, unsolicited)",
	}, []string{"cause"})

	// StreamObserverPanicsTotal counts recovered observer panics.
	StreamObserverPanicsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "udapi_stream_observer_panics_total",
		Help: "Total number of recovered observer panics by event kind",
	}, []string{"event"})
)

// IncStreamFrame records one processed frame.
func IncStreamFrame(kind string) {
	StreamFramesTotal.WithLabelValues(kind).Inc()
}

// IncStreamSyncError records a malformed frame.
func IncStreamSyncError(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	StreamSyncErrorsTotal.WithLabelValues(reason).Inc()
}

// ObserveEchoRoundTrip records an echo round trip. Negative values (clock skew)
// are clamped to zero.
func ObserveEchoRoundTrip(d time.Duration) {
	if d < 0 {
		d = 0
	}
	StreamEchoRoundTrip.Observe(d.Seconds())
}

// IncStreamTransition records a lifecycle transition.
func IncStreamTransition(from, to string) {
	StreamTransitionsTotal.WithLabelValues(from, to).Inc()
}

// IncStreamDisconnect records a disconnect with its cause.
func IncStreamDisconnect(cause string) {
	StreamDisconnectsTotal.WithLabelValues(cause).Inc()
}

// IncObserverPanic records a recovered observer panic.
func IncObserverPanic(event string) {
	StreamObserverPanicsTotal.WithLabelValues(event).Inc()
}
