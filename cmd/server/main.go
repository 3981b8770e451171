// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

// Command server runs the Pusaka gateway: a thin API layer in front of
// a headless WordPress CMS and a Supabase identity provider.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pusaka-id/pusaka/internal/api"
	"github.com/pusaka-id/pusaka/internal/config"
	"github.com/pusaka-id/pusaka/internal/health"
	"github.com/pusaka-id/pusaka/internal/logging"
	"github.com/pusaka-id/pusaka/internal/ratelimit"
	"github.com/pusaka-id/pusaka/internal/supabase"
	"github.com/pusaka-id/pusaka/internal/wordpress"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logging.Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Int("port", cfg.Server.Port).
		Msg("starting pusaka gateway")

	content := wordpress.NewClient(cfg.WordPress)
	identity := supabase.NewClient(cfg.Supabase)

	var limiterOpts []ratelimit.Option
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("per-identity rate limiting is disabled")
		limiterOpts = append(limiterOpts, ratelimit.Disabled())
	}
	limiter := ratelimit.NewLimiter(limiterOpts...)
	defer limiter.Stop()

	monitor := health.NewMonitor()

	handler := api.NewHandler(cfg, content, identity, limiter, monitor)
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-stop:
		logging.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	logging.Info().Msg("shutdown complete")
	return nil
}
