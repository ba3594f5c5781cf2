// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package stream

import "errors"

var (
	// ErrAlreadyActive is returned by Start under StartReject when the session is streaming or paused.
	ErrAlreadyActive = errors.New("stream: session already active")
	// ErrNotActive is returned by Pause and Resume outside streaming/paused.
	ErrNotActive = errors.New("stream: session not active")
	// ErrBrokerConnect wraps consumer open failures. The session is left errored.
	ErrBrokerConnect = errors.New("stream: broker connect failed")
	// ErrUnsolicitedDisconnect is reported by Err after the broker dropped the session.
	ErrUnsolicitedDisconnect = errors.New("stream: unsolicited disconnect")
	// ErrMalformedEcho and ErrMalformedMessage reach observers through SynchronizationError.
	ErrMalformedEcho    = errors.New("stream: malformed echo")
	ErrMalformedMessage = errors.New("stream: malformed message")
	// ErrNoStreamLink is returned when a resource exposes no broker endpoint.
	ErrNoStreamLink = errors.New("stream: no stream link")
)
