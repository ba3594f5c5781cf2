// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package udapi

import (
	"context"
	"fmt"

	"github.com/ManuGH/udapi/broker"
	"github.com/ManuGH/udapi/hypermedia"
	"github.com/ManuGH/udapi/internal/log"
	"github.com/ManuGH/udapi/stream"
)

// Resource is a fixture: a snapshot plus a live update stream.
type Resource struct {
	endpoint
	feature *Feature
	source  stream.LinkSource
	session *stream.Session
}

func newResource(f *Feature, item hypermedia.Item) *Resource {
	r := &Resource{feature: f}
	r.init(f.client, item)
	r.source = stream.LinkSource{
		Follower:   f.client.resolver,
		Links:      r.Links,
		Relation:   hypermedia.RelStreamAMQP,
		LogContext: "GetAmqpStream Http Error",
	}

	opts := append([]stream.Option{stream.WithResource(r.ID(), r.Name())}, f.client.sessionOpts...)
	r.session = stream.NewSession(r.source, f.client.transport, opts...)
	return r
}

// ID is the content id, or "" when the item carries no content.
func (r *Resource) ID() string {
	if c := r.item().Content; c != nil {
		return c.ID
	}
	return ""
}

// Content returns the summary published with the resource. It may be nil.
func (r *Resource) Content() *hypermedia.Summary { return r.item().Content }

// Snapshot fetches the full current state as raw JSON. It returns "" when the
// resource has no snapshot link.
func (r *Resource) Snapshot(ctx context.Context) (string, error) {
	r.client.logger.Debug().
		Str(log.FieldResourceID, r.ID()).
		Str(log.FieldResourceName, r.Name()).
		Msg("get snapshot")
	body, err := r.client.resolver.FollowAsString(ctx, r.Links(), hypermedia.RelSnapshot, "GetSnapshot Http Error")
	if err != nil {
		return "", fmt.Errorf("%s: %w", r.Name(), err)
	}
	return body, nil
}

// QueueDetails resolves and parses the broker endpoint without connecting.
func (r *Resource) QueueDetails(ctx context.Context) (broker.Descriptor, error) {
	return r.source.Descriptor(ctx)
}

// StartStreaming connects the resource's session. See stream.Session.Start.
func (r *Resource) StartStreaming(ctx context.Context) error {
	return r.session.Start(ctx)
}

func (r *Resource) PauseStreaming() error { return r.session.Pause() }

func (r *Resource) UnpauseStreaming() error { return r.session.Resume() }

// StopStreaming blocks until no further events can fire.
func (r *Resource) StopStreaming() error { return r.session.Stop() }

// Close stops streaming.
func (r *Resource) Close() error { return r.session.Stop() }

func (r *Resource) Subscribe(o stream.Observer) (unsubscribe func()) {
	return r.session.Subscribe(o)
}

func (r *Resource) Liveness() stream.LivenessSnapshot { return r.session.Liveness() }

func (r *Resource) IsStreamActive() bool { return r.session.IsActive() }

// Session exposes the underlying session for health checks and state queries.
func (r *Resource) Session() *stream.Session { return r.session }

// Refresh re-reads the parent feature's resource list and replaces this
// resource's links and content with the entry that has the same id (or
// name, when there is no content).
func (r *Resource) Refresh(ctx context.Context) error {
	items, err := r.feature.follow(ctx, hypermedia.RelResourcesList, "GetResources Http Error")
	if err != nil {
		return err
	}
	id, name := r.ID(), r.Name()
	for _, it := range items {
		if (id != "" && it.Content != nil && it.Content.ID == id) || (id == "" && it.Name == name) {
			r.replace(it)
			return nil
		}
	}
	return fmt.Errorf("%w: resource %q no longer listed", ErrNotFound, name)
}
