// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/ManuGH/udapi/internal/config"
	"github.com/ManuGH/udapi/internal/health"
	"github.com/ManuGH/udapi/internal/log"
	"github.com/ManuGH/udapi/stream"
	"github.com/ManuGH/udapi/udapi"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// consoleRun picks a service and feature, snapshots every resource and
// streams them until ctx is done.
func consoleRun(ctx context.Context, cfg config.Config, client *udapi.Client, hm *health.Manager) error {
	logger := log.WithComponent("console")

	feature, err := pickFeature(ctx, client, cfg.Console)
	if err != nil {
		return err
	}
	resources, err := feature.Resources(ctx)
	if err != nil {
		return fmt.Errorf("list resources: %w", err)
	}
	logger.Info().
		Str("feature", feature.Name()).
		Int("resources", len(resources)).
		Msg("streaming feature")

	g, gctx := errgroup.WithContext(ctx)
	for _, res := range resources {
		g.Go(func() error {
			return follow(gctx, cfg.SnapshotDir, res, hm)
		})
	}
	return g.Wait()
}

func pickFeature(ctx context.Context, client *udapi.Client, cc config.ConsoleConfig) (*udapi.Feature, error) {
	var svc *udapi.Service
	if cc.Service != "" {
		s, err := client.Service(ctx, cc.Service)
		if err != nil {
			return nil, err
		}
		svc = s
	} else {
		services, err := client.Services(ctx)
		if err != nil {
			return nil, err
		}
		if len(services) == 0 {
			return nil, fmt.Errorf("%w: no services", udapi.ErrNotFound)
		}
		svc = services[0]
	}

	if cc.Feature != "" {
		return svc.Feature(ctx, cc.Feature)
	}
	features, err := svc.Features(ctx)
	if err != nil {
		return nil, err
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("%w: no features in %s", udapi.ErrNotFound, svc.Name())
	}
	return features[0], nil
}

// follow snapshots one resource, then streams it until ctx is done. Errors
// are logged and do not stop the other resources.
func follow(ctx context.Context, dir string, res *udapi.Resource, hm *health.Manager) error {
	logger := log.WithComponent("console").With().
		Str(log.FieldResourceID, res.ID()).
		Str(log.FieldResourceName, res.Name()).
		Logger()

	if snap, err := res.Snapshot(ctx); err != nil {
		logger.Warn().Err(err).Msg("snapshot failed")
	} else if snap != "" {
		saveSnapshot(logger, dir, res.ID(), snap)
	}

	unsubscribe := res.Subscribe(stream.ObserverFuncs{
		OnConnected:    func() { logger.Info().Msg("stream connected") },
		OnDisconnected: func() { logger.Info().Msg("stream disconnected") },
		OnMessage: func(payload string) {
			seq, err := udapi.SequenceOf(payload)
			if err != nil {
				logger.Warn().Err(err).Msg("update without sequence")
				return
			}
			logger.Info().Int("sequence", seq).Msg("update")
		},
		OnSynchronizationError: func(err error) {
			logger.Warn().Err(err).Msg("synchronization error")
		},
	})
	defer unsubscribe()

	key := res.ID()
	if key == "" {
		key = res.Name()
	}
	name := "stream_" + key
	hm.RegisterChecker(stream.NewHealthChecker(name, res.Session()))
	defer hm.Unregister(name)

	if err := res.StartStreaming(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		logger.Error().Err(err).Msg("start streaming failed")
		return nil
	}

	<-ctx.Done()
	if err := res.Close(); err != nil {
		logger.Warn().Err(err).Msg("stop streaming")
	}
	return nil
}

func saveSnapshot(logger zerolog.Logger, dir, id, snap string) {
	if fx, err := parseFixture(snap); err == nil {
		logger.Info().Msg(fx.Summary())
	}
	if dir == "" {
		return
	}
	path, err := writeSnapshot(dir, id, snap)
	if err != nil {
		logger.Warn().Err(err).Msg("save snapshot failed")
		return
	}
	logger.Debug().Str("path", path).Msg("snapshot saved")
}
