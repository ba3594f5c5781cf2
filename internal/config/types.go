// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "time"

// Config is the full console configuration.
type Config struct {
	API         APIConfig       `yaml:"api"`
	Stream      StreamConfig    `yaml:"stream"`
	Status      StatusConfig    `yaml:"status"`
	Telemetry   TelemetryConfig `yaml:"telemetry"`
	Log         LogConfig       `yaml:"log"`
	Console     ConsoleConfig   `yaml:"console"`
	SnapshotDir string          `yaml:"snapshotDir"`
}

// APIConfig describes the hypermedia root and how it is called.
type APIConfig struct {
	URL     string        `yaml:"url"`
	User    string        `yaml:"user"`
	Key     string        `yaml:"key"`
	Timeout time.Duration `yaml:"timeout"`
	// RateLimit is requests per second across all hops. Zero disables limiting.
	RateLimit float64 `yaml:"rateLimit"`
	Burst     int     `yaml:"burst"`
	// BreakerThreshold is the number of consecutive transport failures that
	// open the circuit. Zero disables the breaker.
	BreakerThreshold int           `yaml:"breakerThreshold"`
	BreakerReset     time.Duration `yaml:"breakerReset"`
}

type StreamConfig struct {
	Transport    string        `yaml:"transport"`
	EchoInterval time.Duration `yaml:"echoInterval"`
	EchoMaxDelay time.Duration `yaml:"echoMaxDelay"`
	StartPolicy  string        `yaml:"startPolicy"`
}

type StatusConfig struct {
	Addr      string `yaml:"addr"`
	RateLimit int    `yaml:"rateLimit"`
}

type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"serviceName"`
	Exporter    string  `yaml:"exporter"`
	Endpoint    string  `yaml:"endpoint"`
	Sampling    float64 `yaml:"sampling"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// ConsoleConfig narrows what the demo console walks and streams.
// Empty values select the first service or feature found.
type ConsoleConfig struct {
	Service string `yaml:"service"`
	Feature string `yaml:"feature"`
}

const (
	TransportAMQP = "amqp"
	TransportNATS = "nats"

	StartPolicyIgnore = "ignore"
	StartPolicyReject = "reject"
)

// Defaults returns the baseline configuration before file and env overrides.
func Defaults() Config {
	return Config{
		API: APIConfig{
			Timeout:          30 * time.Second,
			Burst:            1,
			BreakerThreshold: 5,
			BreakerReset:     30 * time.Second,
		},
		Stream: StreamConfig{
			Transport:    TransportAMQP,
			EchoInterval: 10 * time.Second,
			EchoMaxDelay: 3 * time.Second,
			StartPolicy:  StartPolicyIgnore,
		},
		Status: StatusConfig{
			Addr:      ":9090",
			RateLimit: 60,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "udapi-console",
			Exporter:    "grpc",
			Endpoint:    "localhost:4317",
			Sampling:    1.0,
		},
		Log:         LogConfig{Level: "info"},
		SnapshotDir: "snapshots",
	}
}
