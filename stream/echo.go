// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package stream

import (
	"fmt"
	"strings"
	"time"
)

// EchoTimeLayout is the wire format of the echo timestamp (millisecond precision, UTC).
const EchoTimeLayout = "2006-01-02T15:04:05.000Z"

// FormatEcho builds an echo payload "<id>;<timestamp>".
func FormatEcho(id string, sent time.Time) string {
	return id + ";" + sent.UTC().Format(EchoTimeLayout)
}

// ParseEcho extracts the id and send time from an echo payload.
func ParseEcho(payload string) (id string, sent time.Time, err error) {
	fields := strings.Split(payload, ";")
	if len(fields) < 2 {
		return "", time.Time{}, fmt.Errorf("%w: %q has no timestamp field", ErrMalformedEcho, payload)
	}
	sent, err = time.Parse(EchoTimeLayout, strings.TrimSpace(fields[1]))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrMalformedEcho, err)
	}
	return fields[0], sent, nil
}
