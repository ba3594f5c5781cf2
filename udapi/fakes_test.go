// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package udapi

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/ManuGH/udapi/broker"
	"github.com/ManuGH/udapi/hypermedia"
)

// docs serves fixed bodies by href and records the auth header of each call.
type docs struct {
	mu      sync.Mutex
	bodies  map[string]string
	headers []http.Header
	hrefs   []string
}

func (d *docs) fetcher() hypermedia.Fetcher {
	return hypermedia.FetcherFunc(func(_ context.Context, href string, h http.Header) (string, error) {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.hrefs = append(d.hrefs, href)
		d.headers = append(d.headers, h.Clone())
		body, ok := d.bodies[href]
		if !ok {
			return "", &hypermedia.TransportError{Href: href, Status: http.StatusNotFound, Err: errors.New("no document")}
		}
		return body, nil
	})
}

func (d *docs) set(href, body string) {
	d.mu.Lock()
	d.bodies[href] = body
	d.mu.Unlock()
}

type fakeConsumer struct {
	frames chan broker.Frame
}

func (c *fakeConsumer) Next(ctx context.Context) (broker.Frame, error) {
	select {
	case f := <-c.frames:
		return f, nil
	case <-ctx.Done():
		return broker.Frame{}, ctx.Err()
	}
}

func (c *fakeConsumer) SendEcho(context.Context, string) error { return nil }
func (c *fakeConsumer) Close() error                           { return nil }

type fakeTransport struct {
	mu       sync.Mutex
	opened   []broker.Descriptor
	consumer *fakeConsumer
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{consumer: &fakeConsumer{frames: make(chan broker.Frame, 16)}}
}

func (t *fakeTransport) Open(_ context.Context, d broker.Descriptor, _ broker.ConsumerOptions) (broker.Consumer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.opened = append(t.opened, d)
	return t.consumer, nil
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(ev string) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) Connected()                   { r.add("connected") }
func (r *recorder) Disconnected()                { r.add("disconnected") }
func (r *recorder) Message(payload string)       { r.add("message:" + payload) }
func (r *recorder) SynchronizationError(e error) { r.add("sync_error") }

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}
