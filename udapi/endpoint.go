// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package udapi

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ManuGH/udapi/hypermedia"
)

// endpoint holds one node of the link graph. Its state is replaced
// wholesale, never mutated, so readers always see a consistent item.
type endpoint struct {
	client *Client
	state  atomic.Pointer[hypermedia.Item]
}

// init sets up e in place; an endpoint must not be copied once created.
func (e *endpoint) init(c *Client, item hypermedia.Item) {
	e.client = c
	e.state.Store(&item)
}

func (e *endpoint) item() *hypermedia.Item { return e.state.Load() }

func (e *endpoint) replace(item hypermedia.Item) { e.state.Store(&item) }

// Name is the item's display name.
func (e *endpoint) Name() string { return e.item().Name }

// Links returns the item's links. The slice must not be modified.
func (e *endpoint) Links() []hypermedia.Link { return e.item().Links }

func (e *endpoint) follow(ctx context.Context, rel hypermedia.Relation, logContext string) ([]hypermedia.Item, error) {
	items, err := e.client.resolver.Follow(ctx, e.Links(), rel, logContext)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.Name(), err)
	}
	return items, nil
}

// Service groups features, e.g. "UnifiedDataAPI".
type Service struct {
	endpoint
}

func (s *Service) Features(ctx context.Context) ([]*Feature, error) {
	items, err := s.follow(ctx, hypermedia.RelFeaturesList, "GetFeatures Http Error")
	if err != nil {
		return nil, err
	}
	out := make([]*Feature, 0, len(items))
	for i := range items {
		f := &Feature{}
		f.init(s.client, items[i])
		out = append(out, f)
	}
	return out, nil
}

// Feature returns the first feature called name.
func (s *Service) Feature(ctx context.Context, name string) (*Feature, error) {
	features, err := s.Features(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range features {
		if f.Name() == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: feature %q", ErrNotFound, name)
}

// Feature groups resources, e.g. a sport.
type Feature struct {
	endpoint
}

func (f *Feature) Resources(ctx context.Context) ([]*Resource, error) {
	items, err := f.follow(ctx, hypermedia.RelResourcesList, "GetResources Http Error")
	if err != nil {
		return nil, err
	}
	out := make([]*Resource, 0, len(items))
	for i := range items {
		out = append(out, newResource(f, items[i]))
	}
	return out, nil
}

// Resource returns the first resource called name.
func (f *Feature) Resource(ctx context.Context, name string) (*Resource, error) {
	resources, err := f.Resources(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range resources {
		if r.Name() == name {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: resource %q", ErrNotFound, name)
}
