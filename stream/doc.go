// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package stream runs the live update subscription of one resource.
//
// A Session resolves the resource's broker endpoint, opens a consumer and
// drives a single consume loop goroutine. Lifecycle events and messages are
// delivered to observers on that goroutine, in arrival order:
//
//	Connected, Message..., Disconnected
//
// Stop is synchronous: once it returns no further events fire. Pause holds
// delivery without closing the connection. Echo probes measure round-trip
// latency and feed the staleness signal; the session never reconnects on its
// own.
package stream
