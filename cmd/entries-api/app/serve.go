package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	entriesapp "github.com/stacklok/entries-server/internal/app"
	"github.com/stacklok/entries-server/internal/config"
	"github.com/stacklok/entries-server/internal/telemetry"
)

const (
	defaultGracefulTimeout   = 30 * time.Second
	telemetryShutdownTimeout = 10 * time.Second
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the entries API server",
		Long: `Start the entries API server.

The server requires a configuration file (--config) that specifies:
- the sites and collections, and the blueprints directory
- the storage backend (memory or database) and the search index
- authentication, authorization policies and asset containers`,
		RunE: runServe,
	}

	cmd.Flags().String("address", ":8080", "Address to listen on")
	cmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")
	cmd.Flags().Duration("graceful-timeout", defaultGracefulTimeout, "Time allowed for in-flight requests on shutdown")

	for _, name := range []string{"address", "config", "graceful-timeout"} {
		if err := viper.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			slog.Error("Failed to bind flag", "flag", name, "error", err)
		}
	}
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.AutomaticEnv()

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	configPath := viper.GetString("config")
	if configPath == "" {
		return fmt.Errorf("--config is required")
	}

	cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.Info("Loaded configuration",
		"path", configPath,
		"storage", cfg.Storage.GetType(),
		"search", cfg.Search.GetType(),
		"collections", len(cfg.Collections))

	tel, err := telemetry.New(ctx, telemetry.WithTelemetryConfig(cfg.Telemetry))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shutdown telemetry", "error", err)
		}
	}()

	opts := []entriesapp.EntriesAppOptions{
		entriesapp.WithConfig(cfg),
		entriesapp.WithAddress(viper.GetString("address")),
	}
	if cfg.Telemetry != nil && cfg.Telemetry.Enabled {
		opts = append(opts,
			entriesapp.WithTracerProvider(tel.TracerProvider()),
			entriesapp.WithMeterProvider(tel.MeterProvider()),
		)
		if h := tel.MetricsHandler(); h != nil {
			opts = append(opts, entriesapp.WithMetricsHandler(h))
		}
	}

	app, err := entriesapp.NewEntriesApp(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			_ = app.Stop(time.Second)
			return err
		}
		return nil
	case sig := <-quit:
		slog.Info("Received signal", "signal", sig.String())
	}

	return app.Stop(viper.GetDuration("graceful-timeout"))
}
