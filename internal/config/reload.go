// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"sync"
	"time"

	"github.com/ManuGH/udapi/internal/log"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const debounceDuration = 500 * time.Millisecond

// Holder keeps the live configuration and swaps it on successful reloads.
type Holder struct {
	mu      sync.RWMutex
	current Config
	loader  *Loader
	logger  zerolog.Logger

	listenersMu sync.Mutex
	listeners   []func(Config)
}

// NewHolder wraps an already validated config.
func NewHolder(initial Config, loader *Loader) *Holder {
	return &Holder{
		current: initial,
		loader:  loader,
		logger:  log.WithComponent("config"),
	}
}

// Get returns the current configuration.
func (h *Holder) Get() Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// OnChange registers fn to run after every successful reload.
func (h *Holder) OnChange(fn func(Config)) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.listeners = append(h.listeners, fn)
}

// Reload re-reads the configuration. On failure the current config stays in place.
func (h *Holder) Reload() error {
	next, err := h.loader.Load()
	if err != nil {
		return fmt.Errorf("reload config: %w", err)
	}

	h.mu.Lock()
	old := h.current
	h.current = next
	h.mu.Unlock()

	h.logChanges(old, next)
	h.logger.Info().Str("event", "config.reloaded").Msg("configuration reloaded")

	h.listenersMu.Lock()
	listeners := append([]func(Config){}, h.listeners...)
	h.listenersMu.Unlock()
	for _, fn := range listeners {
		fn(next)
	}
	return nil
}

// Watch reloads whenever the config file is written until ctx is done.
// It watches the parent directory so editors that replace the file are seen.
func (h *Holder) Watch(ctx context.Context) error {
	path := h.loader.Path()
	if path == "" {
		return fmt.Errorf("watch config: no config file")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	go h.watchLoop(ctx, watcher, filepath.Clean(path))
	return nil
}

func (h *Holder) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string) {
	defer func() { _ = watcher.Close() }()

	var (
		timerMu       sync.Mutex
		debounceTimer *time.Timer
	)
	defer func() {
		timerMu.Lock()
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			h.logger.Debug().
				Str("event", "config.file_changed").
				Str("op", event.Op.String()).
				Msg("config file changed")

			timerMu.Lock()
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDuration, func() {
				if ctx.Err() != nil {
					return
				}
				if err := h.Reload(); err != nil {
					h.logger.Error().
						Err(err).
						Str("event", "config.auto_reload_failed").
						Msg("automatic config reload failed")
				}
			})
			timerMu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().
				Err(err).
				Str("event", "config.watcher_error").
				Msg("config watcher error")
		}
	}
}

func (h *Holder) logChanges(old, next Config) {
	if old.Log.Level != next.Log.Level {
		h.logger.Info().Str("old", old.Log.Level).Str("new", next.Log.Level).Msg("config changed: log.level")
	}
	if old.API.URL != next.API.URL {
		h.logger.Info().Str("old", maskURL(old.API.URL)).Str("new", maskURL(next.API.URL)).Msg("config changed: api.url")
	}
	if old.API.RateLimit != next.API.RateLimit {
		h.logger.Info().Float64("old", old.API.RateLimit).Float64("new", next.API.RateLimit).Msg("config changed: api.rateLimit")
	}
	if old.Stream.Transport != next.Stream.Transport {
		h.logger.Warn().Str("old", old.Stream.Transport).Str("new", next.Stream.Transport).
			Msg("config changed: stream.transport (applies to sessions started after the reload)")
	}
}

// maskURL keeps the scheme and host only.
func maskURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "***redacted***"
	}
	return u.Scheme + "://" + u.Host
}
