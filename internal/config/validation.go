// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"
)

// Validate reports every problem in cfg at once, wrapped in ErrInvalidConfig.
func Validate(cfg Config) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if cfg.API.URL == "" {
		add("api.url is required")
	} else if u, err := url.Parse(cfg.API.URL); err != nil || u.Host == "" ||
		(u.Scheme != "http" && u.Scheme != "https") {
		add("api.url %q must be an absolute http(s) URL", cfg.API.URL)
	}
	if cfg.API.Timeout <= 0 {
		add("api.timeout must be positive, got %s", cfg.API.Timeout)
	}
	if cfg.API.RateLimit < 0 {
		add("api.rateLimit must not be negative")
	}
	if cfg.API.RateLimit > 0 && cfg.API.Burst < 1 {
		add("api.burst must be at least 1 when api.rateLimit is set")
	}
	if cfg.API.BreakerThreshold < 0 {
		add("api.breakerThreshold must not be negative")
	}
	if cfg.API.BreakerThreshold > 0 && cfg.API.BreakerReset <= 0 {
		add("api.breakerReset must be positive when the breaker is enabled")
	}

	switch cfg.Stream.Transport {
	case TransportAMQP, TransportNATS:
	default:
		add("stream.transport %q must be %q or %q", cfg.Stream.Transport, TransportAMQP, TransportNATS)
	}
	switch cfg.Stream.StartPolicy {
	case StartPolicyIgnore, StartPolicyReject:
	default:
		add("stream.startPolicy %q must be %q or %q", cfg.Stream.StartPolicy, StartPolicyIgnore, StartPolicyReject)
	}
	if cfg.Stream.EchoInterval < 0 || cfg.Stream.EchoMaxDelay < 0 {
		add("stream echo durations must not be negative")
	}

	if cfg.Status.RateLimit < 0 {
		add("status.rateLimit must not be negative")
	}

	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.Exporter != "grpc" && cfg.Telemetry.Exporter != "http" {
			add("telemetry.exporter %q must be grpc or http", cfg.Telemetry.Exporter)
		}
		if cfg.Telemetry.Endpoint == "" {
			add("telemetry.endpoint is required when telemetry is enabled")
		}
	}
	if cfg.Telemetry.Sampling < 0 || cfg.Telemetry.Sampling > 1 {
		add("telemetry.sampling must be within [0,1], got %v", cfg.Telemetry.Sampling)
	}

	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		add("log.level %q: %v", cfg.Log.Level, err)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
