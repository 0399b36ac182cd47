package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/elostealo/internal/api"
	"github.com/mcoot/elostealo/internal/config"
	"github.com/mcoot/elostealo/internal/factory"
	"github.com/mcoot/elostealo/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logging.New("info", "json")
		fallback.Fatal().Err(err).Msg("invalid configuration")
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Create application factory
	app, err := factory.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create application")
	}

	go app.Registry.Run(ctx)

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.HTTPHost
	serverConfig.Port = cfg.HTTPPort
	server := api.NewServer(app.Router(), serverConfig, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info().
		Str("addr", server.Addr()).
		Str("storage", cfg.StorageType).
		Int("handicaps", app.Catalog.Len()).
		Msg("server started")

	exitCode := 0
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("server error")
			exitCode = 1
		}
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
			exitCode = 1
		}
	}

	if err := app.Close(context.Background()); err != nil {
		logger.Error().Err(err).Msg("failed to release resources")
		exitCode = 1
	}

	logger.Info().Msg("server stopped")
	os.Exit(exitCode)
}
