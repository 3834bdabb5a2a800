// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sitegen/internal/ai"
	"sitegen/internal/cache"
	"sitegen/internal/config"
	"sitegen/internal/database"
	"sitegen/internal/generator"
	"sitegen/internal/handlers"
	"sitegen/internal/middleware"
	"sitegen/internal/router"
	"sitegen/internal/storage"
	"sitegen/internal/store"
	"sitegen/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

// setup loads configuration and installs the default logger.
func setup(logOut *os.File) (*config.Config, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	logger, closeLog, err := newLogger(logOut, cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, closeLog, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, closeLog, err := setup(os.Stdout)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.Info("configuration loaded", cfg.LogFields()...)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: cfg.OTELServiceName,
		Endpoint:    cfg.OTELEndpoint,
		SampleRate:  cfg.OTELSampleRate,
		Enabled:     cfg.OTELEnabled,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			slog.Warn("tracer shutdown", "error", err)
		}
	}()

	// Connect to PostgreSQL and run pending migrations.
	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	// Valkey preview cache (optional).
	var pages *cache.PageCache
	if cfg.ValkeyEnabled() {
		client, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			return fmt.Errorf("connect valkey: %w", err)
		}
		defer client.Close()
		pages = cache.NewPageCache(client, cfg.PreviewCacheTTL)
	} else {
		slog.Warn("valkey not configured, preview cache disabled")
	}

	// S3-compatible storage for published sites (optional).
	var publisher handlers.Publisher
	s3c, err := storage.New(storage.Options{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	if s3c != nil {
		publisher = s3c
		slog.Info("s3 storage configured", "endpoint", cfg.S3Endpoint, "bucket", s3c.Bucket())
	} else {
		slog.Warn("s3 storage not configured, publishing disabled")
	}

	registry := ai.NewRegistry(cfg.ProviderConfigs())
	slog.Info("ai providers initialized", "available", registry.Available())
	gen := generator.FromRegistry(registry, cfg.PrimaryProvider, cfg.SecondaryProvider)
	for _, st := range gen.Stages() {
		slog.Info("generation stage", "stage", st.Name, "provider", st.ProviderName(), "prompt_style", st.Style.String())
	}

	var moderator handlers.PromptChecker
	if cfg.ModerationEnabled {
		if registry.HasModerator() {
			moderator = registry
		} else {
			slog.Warn("moderation enabled but no OpenAI or Mistral key configured")
		}
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).TrustProxies(cfg.TrustedProxyHops)
		defer limiter.Stop()
	}

	api := handlers.NewAPI(store.NewProjectStore(db), gen, moderator, pages, publisher)
	r := router.New(api, router.Options{
		CORSOrigins:     cfg.CORSOrigins,
		GenerateLimiter: limiter,
	})

	// WriteTimeout covers a full chain: primary, secondary and response.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      180 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	slog.Info("shutdown signal received")

	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
