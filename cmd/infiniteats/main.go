package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"infiniteats/internal/cli"
	"infiniteats/internal/config"
	"infiniteats/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := errors.New(cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := config.ApplyVaultSecrets(cfg, logger); err != nil {
		logger.LogError(err, "Failed to load secrets from Vault")
		os.Exit(1)
	}

	logger.Debug("Starting infiniteats",
		"version", cli.Version,
		"log_level", cfg.App.LogLevel,
		"model", cfg.AI.Model)

	if err := cli.Execute(ctx, cfg, logger); err != nil {
		logger.LogError(err, "Application execution failed")
		os.Exit(1)
	}
}

// loadConfig reads INFINITEATS_CONFIG when set, otherwise searches the
// standard locations.
func loadConfig() (*config.Config, error) {
	if path := os.Getenv("INFINITEATS_CONFIG"); path != "" {
		return config.LoadConfigFile(path)
	}
	return config.LoadConfig()
}
