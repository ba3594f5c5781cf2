// SPDX-License-Identifier: MIT

// Package status serves the console's operational endpoints:
// /healthz, /readyz and /metrics.
package status

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ManuGH/udapi/internal/health"
	"github.com/ManuGH/udapi/internal/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 5 * time.Second

// Config configures the status server.
type Config struct {
	Addr string
	// RateLimit is requests per minute per client IP. Zero disables limiting.
	RateLimit int
}

// NewRouter builds the status router around an existing health manager.
func NewRouter(cfg Config, hm *health.Manager, metrics http.Handler) chi.Router {
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	r := chi.NewRouter()
	r.Use(recoverer)
	if cfg.RateLimit > 0 {
		r.Use(rateLimit(cfg.RateLimit, time.Minute))
	}
	r.Get("/healthz", hm.ServeHealth)
	r.Get("/readyz", hm.ServeReady)
	r.Method(http.MethodGet, "/metrics", metrics)
	return r
}

func rateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate_limit_exceeded"}`))
		}),
	)
}

func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger := log.WithComponent("status")
				logger.Error().
					Str("event", "status.panic").
					Interface("panic", rec).
					Str("path", r.URL.Path).
					Msg("recovered from handler panic")
				w.WriteHeader(http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Server runs the status router on its own listener.
type Server struct {
	srv    *http.Server
	logger zerolog.Logger
}

func NewServer(cfg Config, hm *health.Manager) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           NewRouter(cfg, hm, nil),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: log.WithComponent("status"),
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.srv.Addr).Msg("status server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("status server: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("status server shutdown: %w", err)
	}
	return <-errCh
}
