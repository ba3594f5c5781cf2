// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader builds a Config from defaults, an optional YAML file and the environment.
type Loader struct {
	configPath string

	// ConsumedEnvKeys records every UDAPI_* key that was looked up, set or not.
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a loader. An empty path skips the file layer.
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath:      configPath,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Path returns the config file this loader reads, if any.
func (l *Loader) Path() string { return l.configPath }

// Load applies the layers in order and validates the result.
// Precedence: ENV > File > Defaults.
func (l *Loader) Load() (Config, error) {
	cfg := Defaults()

	if l.configPath != "" {
		if err := l.mergeFile(&cfg); err != nil {
			return Config{}, err
		}
	}
	l.mergeEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (l *Loader) mergeFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		return fmt.Errorf("read config %s: %w", l.configPath, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "not found in type") {
			return fmt.Errorf("%w: %s: %v", ErrUnknownConfigField, l.configPath, err)
		}
		return fmt.Errorf("parse config %s: %w", l.configPath, err)
	}
	return nil
}

func (l *Loader) mergeEnv(cfg *Config) {
	cfg.API.URL = l.envString("UDAPI_API_URL", cfg.API.URL)
	cfg.API.User = l.envString("UDAPI_API_USER", cfg.API.User)
	cfg.API.Key = l.envString("UDAPI_API_KEY", cfg.API.Key)
	cfg.API.Timeout = l.envDuration("UDAPI_API_TIMEOUT", cfg.API.Timeout)
	cfg.API.RateLimit = l.envFloat("UDAPI_API_RATE_LIMIT", cfg.API.RateLimit)
	cfg.API.Burst = l.envInt("UDAPI_API_BURST", cfg.API.Burst)
	cfg.API.BreakerThreshold = l.envInt("UDAPI_API_BREAKER_THRESHOLD", cfg.API.BreakerThreshold)
	cfg.API.BreakerReset = l.envDuration("UDAPI_API_BREAKER_RESET", cfg.API.BreakerReset)

	cfg.Stream.Transport = l.envString("UDAPI_STREAM_TRANSPORT", cfg.Stream.Transport)
	cfg.Stream.EchoInterval = l.envDuration("UDAPI_STREAM_ECHO_INTERVAL", cfg.Stream.EchoInterval)
	cfg.Stream.EchoMaxDelay = l.envDuration("UDAPI_STREAM_ECHO_MAX_DELAY", cfg.Stream.EchoMaxDelay)
	cfg.Stream.StartPolicy = l.envString("UDAPI_STREAM_START_POLICY", cfg.Stream.StartPolicy)

	cfg.Status.Addr = l.envString("UDAPI_STATUS_ADDR", cfg.Status.Addr)
	cfg.Status.RateLimit = l.envInt("UDAPI_STATUS_RATE_LIMIT", cfg.Status.RateLimit)

	cfg.Telemetry.Enabled = l.envBool("UDAPI_TELEMETRY_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString("UDAPI_TELEMETRY_EXPORTER", cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString("UDAPI_TELEMETRY_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.Sampling = l.envFloat("UDAPI_TELEMETRY_SAMPLING", cfg.Telemetry.Sampling)

	cfg.Log.Level = l.envString("UDAPI_LOG_LEVEL", cfg.Log.Level)

	cfg.Console.Service = l.envString("UDAPI_CONSOLE_SERVICE", cfg.Console.Service)
	cfg.Console.Feature = l.envString("UDAPI_CONSOLE_FEATURE", cfg.Console.Feature)

	cfg.SnapshotDir = l.envString("UDAPI_SNAPSHOT_DIR", cfg.SnapshotDir)
}

func (l *Loader) consume(key string) { l.ConsumedEnvKeys[key] = struct{}{} }

func (l *Loader) envString(key, def string) string {
	l.consume(key)
	return ParseString(key, def)
}

func (l *Loader) envInt(key string, def int) int {
	l.consume(key)
	return ParseInt(key, def)
}

func (l *Loader) envBool(key string, def bool) bool {
	l.consume(key)
	return ParseBool(key, def)
}

func (l *Loader) envDuration(key string, def time.Duration) time.Duration {
	l.consume(key)
	return ParseDuration(key, def)
}

func (l *Loader) envFloat(key string, def float64) float64 {
	l.consume(key)
	return ParseFloat(key, def)
}
