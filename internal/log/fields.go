// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldSessionID     = "session_id"
	FieldCorrelationID = "correlation_id"
	FieldResourceID    = "resource_id"
	FieldResourceName  = "resource_name"

	// Process fields
	FieldEvent      = "event"
	FieldComponent  = "component"
	FieldLogContext = "log_context"

	// Hypermedia fields
	FieldRelation = "relation"
	FieldHref     = "href"
	FieldStatus   = "status"

	// Broker fields
	FieldHost        = "host"
	FieldVirtualHost = "vhost"
	FieldQueue       = "queue"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"
)
