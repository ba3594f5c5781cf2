// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package hypermedia

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ManuGH/udapi/internal/platform/httpx"
	"github.com/ManuGH/udapi/internal/resilience"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 30 * time.Second
	defaultMaxBody = 32 << 20
	maxErrorBody   = 512
)

// Fetcher performs one GET and returns the body.
type Fetcher interface {
	Get(ctx context.Context, href string, header http.Header) (string, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, href string, header http.Header) (string, error)

func (f FetcherFunc) Get(ctx context.Context, href string, header http.Header) (string, error) {
	return f(ctx, href, header)
}

// HTTPFetcher is the production Fetcher. It never retries; the optional
// limiter and breaker only delay or refuse calls.
type HTTPFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	breaker *resilience.CircuitBreaker
	maxBody int64
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithHTTPClient replaces the default client built by httpx.NewClient.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *HTTPFetcher) { f.client = c }
}

// WithRateLimit caps outgoing GETs at rps with the given burst. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) FetcherOption {
	return func(f *HTTPFetcher) {
		if rps <= 0 {
			f.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithCircuitBreaker guards every GET with cb. Pair it with
// resilience.WithFailureFilter(BreakerCounts) so 4xx answers do not trip it.
func WithCircuitBreaker(cb *resilience.CircuitBreaker) FetcherOption {
	return func(f *HTTPFetcher) { f.breaker = cb }
}

// WithMaxBodyBytes caps how much of a response body is read. Longer bodies
// fail with a TransportError.
func WithMaxBodyBytes(n int64) FetcherOption {
	return func(f *HTTPFetcher) { f.maxBody = n }
}

// NewHTTPFetcher builds a fetcher with a 30s client and a 32MB body cap
// unless options say otherwise.
func NewHTTPFetcher(opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{maxBody: defaultMaxBody}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = httpx.NewClient(defaultTimeout)
	}
	return f
}

// BreakerCounts reports which errors should trip a breaker guarding an
// HTTPFetcher: network failures and 5xx responses. A 4xx proves the upstream
// answered.
func BreakerCounts(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Status == 0 || te.Status >= 500
	}
	return !errors.Is(err, context.Canceled)
}

func (f *HTTPFetcher) Get(ctx context.Context, href string, header http.Header) (string, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", &TransportError{Href: href, Err: err}
		}
	}
	if f.breaker == nil {
		return f.do(ctx, href, header)
	}

	var body string
	err := f.breaker.Execute(func() error {
		var err error
		body, err = f.do(ctx, href, header)
		return err
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return "", &TransportError{Href: href, Err: err}
	}
	return body, err
}

func (f *HTTPFetcher) do(ctx context.Context, href string, header http.Header) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, href, nil)
	if err != nil {
		return "", &TransportError{Href: href, Err: err}
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &TransportError{Href: href, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &TransportError{
			Href:   href,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return "", &TransportError{Href: href, Status: resp.StatusCode, Err: err}
	}
	if int64(len(data)) > f.maxBody {
		return "", &TransportError{Href: href, Status: resp.StatusCode, Err: errors.New("response body too large")}
	}
	return string(data), nil
}
