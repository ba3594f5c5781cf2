// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package udapi is the entry point of the SDK: it walks services, features
// and resources from the API root and streams resource updates.
package udapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ManuGH/udapi/broker"
	"github.com/ManuGH/udapi/broker/amqpbroker"
	"github.com/ManuGH/udapi/hypermedia"
	"github.com/ManuGH/udapi/internal/log"
	"github.com/ManuGH/udapi/stream"
	"github.com/rs/zerolog"
)

const (
	HeaderAuthUser = "X-Auth-User"
	HeaderAuthKey  = "X-Auth-Key"
)

// ErrNotFound is returned by the by-name lookups when nothing matches.
var ErrNotFound = errors.New("udapi: not found")

// Credentials authenticate every GET.
type Credentials struct {
	User string
	Key  string
}

// Client is safe for concurrent use.
type Client struct {
	rootURL     string
	resolver    *hypermedia.Resolver
	transport   broker.Transport
	sessionOpts []stream.Option
	logger      zerolog.Logger
}

type clientOptions struct {
	fetcher     hypermedia.Fetcher
	transport   broker.Transport
	sessionOpts []stream.Option
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

// WithFetcher replaces the default HTTP fetcher.
func WithFetcher(f hypermedia.Fetcher) ClientOption {
	return func(o *clientOptions) { o.fetcher = f }
}

// WithTransport replaces the default AMQP transport.
func WithTransport(t broker.Transport) ClientOption {
	return func(o *clientOptions) { o.transport = t }
}

// WithSessionOptions are applied to every resource's stream session.
func WithSessionOptions(opts ...stream.Option) ClientOption {
	return func(o *clientOptions) { o.sessionOpts = append(o.sessionOpts, opts...) }
}

// NewClient prepares a client for the API root at rootURL. No request is
// made until Services is called.
func NewClient(rootURL string, creds Credentials, opts ...ClientOption) *Client {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.fetcher == nil {
		o.fetcher = hypermedia.NewHTTPFetcher()
	}
	if o.transport == nil {
		o.transport = amqpbroker.New(amqpbroker.Config{})
	}

	header := http.Header{}
	header.Set(HeaderAuthUser, creds.User)
	header.Set(HeaderAuthKey, creds.Key)

	return &Client{
		rootURL:     rootURL,
		resolver:    hypermedia.NewResolver(o.fetcher, header),
		transport:   o.transport,
		sessionOpts: o.sessionOpts,
		logger:      log.WithComponent("udapi"),
	}
}

// Services fetches the root document.
func (c *Client) Services(ctx context.Context) ([]*Service, error) {
	items, err := c.resolver.Fetch(ctx, c.rootURL, "GetRoot Http Error")
	if err != nil {
		return nil, fmt.Errorf("get services: %w", err)
	}
	out := make([]*Service, 0, len(items))
	for i := range items {
		s := &Service{}
		s.init(c, items[i])
		out = append(out, s)
	}
	return out, nil
}

// Service returns the first service called name.
func (c *Client) Service(ctx context.Context, name string) (*Service, error) {
	services, err := c.Services(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range services {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: service %q", ErrNotFound, name)
}
