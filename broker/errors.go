// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package broker

import "errors"

var (
	// ErrBadConnectionString is returned by ParseURI for text that is not a
	// usable broker URI.
	ErrBadConnectionString = errors.New("bad connection string")

	// ErrDisconnected is returned (wrapped) by Consumer.Next when the broker
	// connection or channel goes away.
	ErrDisconnected = errors.New("broker disconnected")

	// ErrConsumerClosed is returned by Consumer methods after Close.
	ErrConsumerClosed = errors.New("consumer closed")
)
