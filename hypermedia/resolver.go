// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package hypermedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ManuGH/udapi/internal/log"
	"github.com/ManuGH/udapi/internal/metrics"
	"github.com/ManuGH/udapi/internal/telemetry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Resolver follows links with a fixed set of request headers.
// It does not cache and does not retry.
type Resolver struct {
	fetcher Fetcher
	header  http.Header
	tracer  trace.Tracer
	logger  zerolog.Logger
}

// NewResolver creates a resolver. header is copied and sent on every GET.
func NewResolver(f Fetcher, header http.Header) *Resolver {
	return &Resolver{
		fetcher: f,
		header:  header.Clone(),
		tracer:  telemetry.Tracer("hypermedia"),
		logger:  log.WithComponent("hypermedia"),
	}
}

// Find returns the first link with relation rel, in list order.
func (r *Resolver) Find(links []Link, rel Relation) (Link, bool) {
	return Find(links, rel)
}

// Follow fetches the item list behind rel. An absent relation yields nil, nil.
func (r *Resolver) Follow(ctx context.Context, links []Link, rel Relation, logContext string) ([]Item, error) {
	link, ok := Find(links, rel)
	if !ok {
		r.logger.Debug().Str(log.FieldRelation, string(rel)).Msg("relation not present")
		return nil, nil
	}
	body, err := r.get(ctx, rel, link.Href, logContext)
	if err != nil {
		return nil, err
	}
	return decodeItems(link.Href, body)
}

// FollowAsString fetches the raw body behind rel. An absent relation yields "", nil.
func (r *Resolver) FollowAsString(ctx context.Context, links []Link, rel Relation, logContext string) (string, error) {
	link, ok := Find(links, rel)
	if !ok {
		r.logger.Debug().Str(log.FieldRelation, string(rel)).Msg("relation not present")
		return "", nil
	}
	return r.get(ctx, rel, link.Href, logContext)
}

// Fetch GETs href directly and decodes an item list. Used for the root document.
func (r *Resolver) Fetch(ctx context.Context, href, logContext string) ([]Item, error) {
	body, err := r.get(ctx, "", href, logContext)
	if err != nil {
		return nil, err
	}
	return decodeItems(href, body)
}

func (r *Resolver) get(ctx context.Context, rel Relation, href, logContext string) (string, error) {
	label := rel.ShortName()
	ctx, span := r.tracer.Start(ctx, "hypermedia.get",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(telemetry.HopAttributes(string(rel), href, logContext)...),
	)
	defer span.End()

	start := time.Now()
	body, err := r.fetcher.Get(ctx, href, r.header)
	elapsed := time.Since(start)

	if err != nil {
		var te *TransportError
		if errors.As(err, &te) {
			// the fetcher owns te; label a copy
			cp := *te
			te = &cp
		} else {
			te = &TransportError{Href: href, Err: err}
		}
		te.LogContext = logContext
		err = te

		result := "error"
		if te.Status > 0 {
			result = fmt.Sprintf("%dxx", te.Status/100)
			span.SetAttributes(attribute.Int(telemetry.HTTPStatusKey, te.Status))
		}
		metrics.ObserveHTTPRequest(label, result, elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, result)

		r.logger.Warn().
			Err(err).
			Str(log.FieldLogContext, logContext).
			Str(log.FieldRelation, string(rel)).
			Str(log.FieldHref, href).
			Int(log.FieldStatus, te.Status).
			Msg("hypermedia GET failed")
		return "", err
	}

	metrics.ObserveHTTPRequest(label, "ok", elapsed)
	r.logger.Debug().
		Str(log.FieldRelation, string(rel)).
		Str(log.FieldHref, href).
		Dur("elapsed", elapsed).
		Msg("hypermedia GET")
	return body, nil
}

func decodeItems(href, body string) ([]Item, error) {
	var items []Item
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadResponse, href, err)
	}
	return items, nil
}
