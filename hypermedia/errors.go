// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package hypermedia

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport matches every failed GET: network errors, non-2xx
	// statuses and an open circuit breaker.
	ErrTransport = errors.New("hypermedia: transport failure")
	// ErrBadResponse is returned when a body cannot be decoded as an item list.
	ErrBadResponse = errors.New("hypermedia: invalid response format")
)

// TransportError carries the context of one failed GET.
type TransportError struct {
	// LogContext is the caller's diagnostic label, e.g. "GetSnapshot Http Error".
	LogContext string
	Href       string
	Status     int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	msg := "hypermedia: transport failure"
	if e.LogContext != "" {
		msg = e.LogContext + ": " + msg
	}
	msg = fmt.Sprintf("%s: GET %s", msg, e.Href)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}
