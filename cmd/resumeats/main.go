package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"resumeats/internal/cli"
	"resumeats/internal/config"
	"resumeats/internal/errors"
)

func main() {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration (.env, config file, environment, Vault)
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logging
	logger, err := errors.New(cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Vault secrets override file and environment values
	if err := config.ApplyVaultSecrets(ctx, cfg, logger); err != nil {
		logger.LogError(err, "Failed to load secrets from Vault")
		stop()
		os.Exit(1)
	}

	logger.Debug("Starting resumeats",
		"version", cli.Version,
		"log_level", cfg.App.LogLevel,
		"storage_backend", cfg.Storage.Backend,
		"ai_enabled", cfg.AIAvailable())

	if err := cli.Execute(ctx, cfg, logger); err != nil {
		logger.LogError(err, "Application execution failed")
		stop()
		os.Exit(1)
	}
}
