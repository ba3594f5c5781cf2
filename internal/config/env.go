// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/udapi/internal/log"
	"github.com/rs/zerolog"
)

// ParseString reads a string from environment variable or returns default value.
// It logs the source (environment or default) for observability.
func ParseString(key, defaultValue string) string {
	return parseStringWithLogger(log.WithComponent("config"), key, defaultValue)
}

func parseStringWithLogger(logger zerolog.Logger, key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	switch {
	case !exists:
		logDefault(logger, key, defaultValue, "using default value")
		return defaultValue
	case value == "":
		logDefault(logger, key, defaultValue, "using default value (environment variable is empty)")
		return defaultValue
	case isSensitive(key):
		// only record that it was set
		logger.Debug().
			Str("key", key).
			Str("source", "environment").
			Bool("sensitive", true).
			Msg("using environment variable")
	default:
		logger.Debug().
			Str("key", key).
			Str("value", value).
			Str("source", "environment").
			Msg("using environment variable")
	}
	return value
}

// ParseInt reads an integer from environment variable or returns default value.
// It validates the input and falls back to default on parse errors.
func ParseInt(key string, defaultValue int) int {
	return parseTyped(key, defaultValue, strconv.Atoi)
}

// ParseBool reads a boolean ("true", "1", "false", "0", ...) from the environment.
func ParseBool(key string, defaultValue bool) bool {
	return parseTyped(key, defaultValue, strconv.ParseBool)
}

// ParseDuration reads a Go duration string such as "10s" from the environment.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return parseTyped(key, defaultValue, time.ParseDuration)
}

// ParseFloat reads a float64 from the environment.
func ParseFloat(key string, defaultValue float64) float64 {
	return parseTyped(key, defaultValue, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

func parseTyped[T any](key string, defaultValue T, parse func(string) (T, error)) T {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok {
		logDefault(logger, key, defaultValue, "using default value")
		return defaultValue
	}
	if v == "" {
		logDefault(logger, key, defaultValue, "using default value (environment variable is empty)")
		return defaultValue
	}
	parsed, err := parse(strings.TrimSpace(v))
	if err != nil {
		logger.Warn().
			Err(err).
			Str("key", key).
			Str("value", v).
			Interface("default", defaultValue).
			Msg("invalid environment variable, using default")
		return defaultValue
	}
	logger.Debug().
		Str("key", key).
		Interface("value", parsed).
		Str("source", "environment").
		Msg("using environment variable")
	return parsed
}

func logDefault(logger zerolog.Logger, key string, defaultValue any, msg string) {
	if isSensitive(key) {
		logger.Debug().Str("key", key).Str("source", "default").Bool("sensitive", true).Msg(msg)
		return
	}
	logger.Debug().
		Str("key", key).
		Interface("default", defaultValue).
		Str("source", "default").
		Msg(msg)
}

func isSensitive(key string) bool {
	lower := strings.ToLower(key)
	return strings.Contains(lower, "token") ||
		strings.Contains(lower, "password") ||
		strings.HasSuffix(lower, "_key")
}
