// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package stream

import (
	"context"
	"fmt"

	"github.com/ManuGH/udapi/broker"
	"github.com/ManuGH/udapi/hypermedia"
)

// DescriptorSource produces the broker endpoint at session start.
type DescriptorSource interface {
	Descriptor(ctx context.Context) (broker.Descriptor, error)
}

// SourceFunc adapts a function to DescriptorSource.
type SourceFunc func(ctx context.Context) (broker.Descriptor, error)

func (f SourceFunc) Descriptor(ctx context.Context) (broker.Descriptor, error) { return f(ctx) }

// StaticURI parses uri on every start.
func StaticURI(uri string) DescriptorSource {
	return SourceFunc(func(context.Context) (broker.Descriptor, error) {
		return broker.ParseURI(uri)
	})
}

// LinkFollower is the part of hypermedia.Resolver a LinkSource needs.
type LinkFollower interface {
	Follow(ctx context.Context, links []hypermedia.Link, rel hypermedia.Relation, logContext string) ([]hypermedia.Item, error)
}

// LinkSource follows a resource's stream relation and parses the broker URI
// found under the "amqp" relation of the returned items.
type LinkSource struct {
	Follower LinkFollower
	// Links returns the resource's current links; it is read on every start.
	Links      func() []hypermedia.Link
	Relation   hypermedia.Relation
	LogContext string
}

func (s LinkSource) Descriptor(ctx context.Context) (broker.Descriptor, error) {
	rel := s.Relation
	if rel == "" {
		rel = hypermedia.RelStreamAMQP
	}
	logContext := s.LogContext
	if logContext == "" {
		logContext = "GetAmqpStream Http Error"
	}

	items, err := s.Follower.Follow(ctx, s.Links(), rel, logContext)
	if err != nil {
		return broker.Descriptor{}, fmt.Errorf("resolve stream endpoint: %w", err)
	}
	link, ok := hypermedia.FindInItems(items, hypermedia.RelAMQP)
	if !ok {
		return broker.Descriptor{}, ErrNoStreamLink
	}
	d, err := broker.ParseURI(link.Href)
	if err != nil {
		return broker.Descriptor{}, fmt.Errorf("stream endpoint: %w", err)
	}
	return d, nil
}
