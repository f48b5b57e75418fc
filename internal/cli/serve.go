package cli

import (
	"context"
	"fmt"
	"time"

	"infiniteats/internal/ai"
	"infiniteats/internal/config"
	"infiniteats/internal/errors"
	"infiniteats/internal/observability"
	"infiniteats/internal/server"
	"infiniteats/internal/session"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web optimizer and JSON API",
	Long: `Start an HTTP server with the browser workflow (upload, score, rewrite,
edit, export) and a JSON API.

API endpoints:
- GET  /api/roles: Role catalog
- POST /api/analyze: Score a resume
- POST /api/optimize: Score and rewrite a resume
- GET  /health: Model availability and session count
- GET  /stats: Rate limiting and session statistics

TLS: use --tls-mode server with --cert-file and --key-file.`,
	RunE: runServe,
}

func init() {
	addServeFlags(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	cmd.Flags().String("host", "", "Host to bind to (default from config)")
	cmd.Flags().String("tls-mode", "", "TLS mode: disabled or server (overrides config)")
	cmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	cmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")
}

// applyServeFlags copies explicitly set flags over the loaded config.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	set := func(name string, dst *string) {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}
	set("port", &cfg.Server.Port)
	set("host", &cfg.Server.Host)
	set("tls-mode", &cfg.Server.TLS.Mode)
	set("cert-file", &cfg.Server.TLS.CertFile)
	set("key-file", &cfg.Server.TLS.KeyFile)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	applyServeFlags(cmd, cfg)
	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	om, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, Version), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer shutdownObservability(om, logger)

	service, err := ai.NewService(ctx, cfg, om, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	store := session.NewStore(cfg.Session.IdleTimeout, cfg.Session.MaxSessions, logger)
	if err := om.RegisterSessionGauge(func() int64 { return int64(store.Len()) }); err != nil {
		logger.LogError(err, "Failed to register session gauge")
	}

	if cfg.Prompts.Watch {
		if watcher := config.NewPromptWatcher(cfg, logger); watcher != nil {
			if err := watcher.Start(); err != nil {
				return fmt.Errorf("failed to start prompt watcher: %w", err)
			}
			defer func() { _ = watcher.Stop() }()
		}
	}

	srv := server.NewServer(cfg, server.NewServerConfig(cfg, Version), service, store, om, logger)
	return srv.Start(ctx)
}

func shutdownObservability(om *observability.ObservabilityManager, logger *errors.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := om.Shutdown(ctx); err != nil {
		logger.LogError(err, "Failed to shutdown observability")
	}
}
