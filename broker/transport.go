// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package broker

import (
	"context"
	"time"
)

// DefaultPrefetch is the per-consumer unacknowledged message window.
const DefaultPrefetch = 10

// FrameKind tells data frames from echo replies.
type FrameKind int

const (
	FrameData FrameKind = iota
	FrameEcho
)

func (k FrameKind) String() string {
	if k == FrameEcho {
		return "echo"
	}
	return "data"
}

// Frame is one message taken off the queue.
type Frame struct {
	Kind       FrameKind
	Body       []byte
	Tag        string
	ReceivedAt time.Time
}

// ConsumerOptions tune the consumer opened for a session.
type ConsumerOptions struct {
	Prefetch  int
	GlobalQoS bool
	// ConsumerTag is sent to the broker when non-empty.
	ConsumerTag string
}

// DefaultConsumerOptions returns prefetch 10 without a global limit.
func DefaultConsumerOptions() ConsumerOptions {
	return ConsumerOptions{Prefetch: DefaultPrefetch}
}

// Transport opens consumers on a broker.
type Transport interface {
	Open(ctx context.Context, d Descriptor, opts ConsumerOptions) (Consumer, error)
}

// Consumer is an open subscription to one queue.
//
// Next and SendEcho may be called concurrently with each other. Close
// unblocks a pending Next.
type Consumer interface {
	// Next blocks until a frame arrives, ctx is done, or the broker goes away.
	// Broker loss is reported as an error wrapping ErrDisconnected.
	Next(ctx context.Context) (Frame, error)
	// SendEcho publishes an echo request whose reply arrives as a FrameEcho.
	SendEcho(ctx context.Context, payload string) error
	Close() error
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, d Descriptor, opts ConsumerOptions) (Consumer, error)

func (f TransportFunc) Open(ctx context.Context, d Descriptor, opts ConsumerOptions) (Consumer, error) {
	return f(ctx, d, opts)
}
