// SPDX-License-Identifier: MIT
package telemetry

import (
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestHopAttributes(t *testing.T) {
	attrs := HopAttributes("stream", "http://svc/x", "GetAmqpStream Http Error")
	if len(attrs) != 3 {
		t.Fatalf("Expected 3 attributes, got %d", len(attrs))
	}
	verifyAttribute(t, attrs, RelationKey, "stream")
	verifyAttribute(t, attrs, HrefKey, "http://svc/x")
	verifyAttribute(t, attrs, LogContextKey, "GetAmqpStream Http Error")

	if got := HopAttributes("stream", "http://svc/x", ""); len(got) != 2 {
		t.Errorf("Expected log context to be omitted, got %d attributes", len(got))
	}
}

func TestStreamAttributes(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		queue   string
		wantLen int
	}{
		{name: "id and queue", id: "fx-1", queue: "q1", wantLen: 2},
		{name: "only id", id: "fx-1", wantLen: 1},
		{name: "empty", wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := StreamAttributes(tt.id, "", "", "", tt.queue)
			if len(attrs) != tt.wantLen {
				t.Errorf("Expected %d attributes, got %d", tt.wantLen, len(attrs))
			}
			if tt.id != "" {
				verifyAttribute(t, attrs, ResourceIDKey, tt.id)
			}
			if tt.queue != "" {
				verifyAttribute(t, attrs, QueueKey, tt.queue)
			}
		})
	}
}

func TestErrorAttributes(t *testing.T) {
	attrs := ErrorAttributes("transport")
	verifyBoolAttribute(t, attrs, ErrorKey, true)
	verifyAttribute(t, attrs, ErrorTypeKey, "transport")
}

func verifyAttribute(t *testing.T, attrs []attribute.KeyValue, key, expectedValue string) {
	t.Helper()
	for _, attr := range attrs {
		if string(attr.Key) == key {
			if attr.Value.AsString() != expectedValue {
				t.Errorf("Expected %s=%s, got %s", key, expectedValue, attr.Value.AsString())
			}
			return
		}
	}
	t.Errorf("Attribute %s not found", key)
}

func verifyBoolAttribute(t *testing.T, attrs []attribute.KeyValue, key string, expectedValue bool) {
	t.Helper()
	for _, attr := range attrs {
		if string(attr.Key) == key {
			if attr.Value.AsBool() != expectedValue {
				t.Errorf("Expected %s=%t, got %t", key, expectedValue, attr.Value.AsBool())
			}
			return
		}
	}
	t.Errorf("Attribute %s not found", key)
}
