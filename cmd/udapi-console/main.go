// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command udapi-console walks the API, saves snapshots and streams updates
// for every resource of one feature until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ManuGH/udapi/internal/config"
	"github.com/ManuGH/udapi/internal/health"
	"github.com/ManuGH/udapi/internal/log"
	"github.com/ManuGH/udapi/internal/status"
	"github.com/ManuGH/udapi/internal/telemetry"
	"github.com/ManuGH/udapi/internal/version"
	"golang.org/x/sync/errgroup"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	log.Configure(log.Config{Level: "info", Service: "udapi-console"})
	logger := log.WithComponent("console")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader := config.NewLoader(strings.TrimSpace(*configPath))
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", loader.Path()).
			Msg("failed to load configuration")
	}
	if err := log.SetLevel(cfg.Log.Level); err != nil {
		logger.Warn().Err(err).Msg("keeping default log level")
	}

	if err := run(ctx, cfg, loader); err != nil {
		logger.Fatal().Err(err).Str("event", "console.failed").Msg("console stopped with error")
	}
	logger.Info().Str("event", "console.stopped").Msg("shutdown complete")
}

func run(ctx context.Context, cfg config.Config, loader *config.Loader) error {
	logger := log.WithComponent("console")

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version.Version,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.Sampling,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	if err := health.PerformStartupChecks(ctx, cfg.SnapshotDir); err != nil {
		return err
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	hm := health.NewManager(version.Version)
	if cfg.SnapshotDir != "" {
		hm.RegisterChecker(health.NewDirChecker("snapshot_dir", cfg.SnapshotDir))
	}

	holder := config.NewHolder(cfg, loader)
	holder.OnChange(func(next config.Config) {
		if err := log.SetLevel(next.Log.Level); err != nil {
			logger.Warn().Err(err).Msg("ignoring invalid log level")
		}
	})
	if loader.Path() != "" {
		if err := holder.Watch(ctx); err != nil {
			logger.Warn().Err(err).Msg("config hot reload disabled")
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return status.NewServer(status.Config{
			Addr:      cfg.Status.Addr,
			RateLimit: cfg.Status.RateLimit,
		}, hm).Run(gctx)
	})
	g.Go(func() error {
		return consoleRun(gctx, cfg, client, hm)
	})
	return g.Wait()
}
