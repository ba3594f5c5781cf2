// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the SDK.
const (
	// Hypermedia attributes
	RelationKey   = "udapi.relation"
	HrefKey       = "udapi.href"
	LogContextKey = "udapi.log_context"
	HTTPStatusKey = "http.status_code"

	// Streaming attributes
	ResourceIDKey   = "udapi.resource_id"
	ResourceNameKey = "udapi.resource_name"
	BrokerHostKey   = "udapi.broker.host"
	VirtualHostKey  = "udapi.broker.vhost"
	QueueKey        = "udapi.broker.queue"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HopAttributes describes one hypermedia navigation hop.
func HopAttributes(relation, href, logContext string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(RelationKey, relation),
		attribute.String(HrefKey, href),
	}
	if logContext != "" {
		attrs = append(attrs, attribute.String(LogContextKey, logContext))
	}
	return attrs
}

// StreamAttributes describes a streaming session. Empty values are omitted.
func StreamAttributes(resourceID, resourceName, host, vhost, queue string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 5)
	for _, kv := range []struct{ k, v string }{
		{ResourceIDKey, resourceID},
		{ResourceNameKey, resourceName},
		{BrokerHostKey, host},
		{VirtualHostKey, vhost},
		{QueueKey, queue},
	} {
		if kv.v != "" {
			attrs = append(attrs, attribute.String(kv.k, kv.v))
		}
	}
	return attrs
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
