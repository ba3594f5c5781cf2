// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package stream

import (
	"math"
	"sync/atomic"
	"time"
)

// LivenessSnapshot is a point-in-time copy of the session's liveness data.
type LivenessSnapshot struct {
	// LastMessageReceivedAt is the last data message or echo reply; zero if none.
	LastMessageReceivedAt   time.Time
	LastEchoRoundTripMillis float64
	LastDisconnectAt        *time.Time
}

// liveness is written by the consume loop only and read from anywhere.
type liveness struct {
	lastMessage    atomic.Int64 // unix nanos, 0 = never
	rttBits        atomic.Uint64
	lastDisconnect atomic.Int64
	activeSince    atomic.Int64
}

func (l *liveness) markActive(now time.Time) { l.activeSince.Store(now.UnixNano()) }

func (l *liveness) recordMessage(now time.Time) { l.lastMessage.Store(now.UnixNano()) }

func (l *liveness) recordEcho(now time.Time, rtt time.Duration) {
	l.rttBits.Store(math.Float64bits(float64(rtt) / float64(time.Millisecond)))
	l.lastMessage.Store(now.UnixNano())
}

func (l *liveness) recordDisconnect(now time.Time) { l.lastDisconnect.Store(now.UnixNano()) }

func (l *liveness) snapshot() LivenessSnapshot {
	snap := LivenessSnapshot{
		LastMessageReceivedAt:   fromNanos(l.lastMessage.Load()),
		LastEchoRoundTripMillis: math.Float64frombits(l.rttBits.Load()),
	}
	if n := l.lastDisconnect.Load(); n != 0 {
		t := time.Unix(0, n).UTC()
		snap.LastDisconnectAt = &t
	}
	return snap
}

// lastActivity is the newer of the last message and the start of the current run.
func (l *liveness) lastActivity() time.Time {
	n := l.lastMessage.Load()
	if since := l.activeSince.Load(); since > n {
		n = since
	}
	return fromNanos(n)
}

func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
