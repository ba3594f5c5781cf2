// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"

	"github.com/ManuGH/udapi/broker"
	"github.com/ManuGH/udapi/broker/amqpbroker"
	"github.com/ManuGH/udapi/broker/natsbroker"
	"github.com/ManuGH/udapi/hypermedia"
	"github.com/ManuGH/udapi/internal/config"
	"github.com/ManuGH/udapi/internal/platform/httpx"
	"github.com/ManuGH/udapi/internal/resilience"
	"github.com/ManuGH/udapi/stream"
	"github.com/ManuGH/udapi/udapi"
)

func newFetcher(cfg config.APIConfig) *hypermedia.HTTPFetcher {
	opts := []hypermedia.FetcherOption{
		hypermedia.WithHTTPClient(httpx.NewClient(cfg.Timeout)),
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, hypermedia.WithRateLimit(cfg.RateLimit, cfg.Burst))
	}
	if cfg.BreakerThreshold > 0 {
		cb := resilience.NewCircuitBreaker("udapi_api", cfg.BreakerThreshold, cfg.BreakerReset,
			resilience.WithFailureFilter(hypermedia.BreakerCounts))
		opts = append(opts, hypermedia.WithCircuitBreaker(cb))
	}
	return hypermedia.NewHTTPFetcher(opts...)
}

func newTransport(cfg config.StreamConfig) (broker.Transport, error) {
	switch cfg.Transport {
	case config.TransportAMQP, "":
		return amqpbroker.New(amqpbroker.Config{ConnectionName: "udapi-console"}), nil
	case config.TransportNATS:
		return natsbroker.New(natsbroker.Config{Name: "udapi-console"}), nil
	default:
		return nil, fmt.Errorf("unknown stream transport %q", cfg.Transport)
	}
}

func sessionOptions(cfg config.StreamConfig) ([]stream.Option, error) {
	policy, err := stream.ParseStartPolicy(cfg.StartPolicy)
	if err != nil {
		return nil, err
	}
	return []stream.Option{
		stream.WithEchoInterval(cfg.EchoInterval),
		stream.WithEchoMaxDelay(cfg.EchoMaxDelay),
		stream.WithStartPolicy(policy),
	}, nil
}

func newClient(cfg config.Config) (*udapi.Client, error) {
	transport, err := newTransport(cfg.Stream)
	if err != nil {
		return nil, err
	}
	opts, err := sessionOptions(cfg.Stream)
	if err != nil {
		return nil, err
	}
	return udapi.NewClient(cfg.API.URL,
		udapi.Credentials{User: cfg.API.User, Key: cfg.API.Key},
		udapi.WithFetcher(newFetcher(cfg.API)),
		udapi.WithTransport(transport),
		udapi.WithSessionOptions(opts...),
	), nil
}
