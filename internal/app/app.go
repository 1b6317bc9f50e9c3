// Package app provides application lifecycle management for the entries server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/stacklok/entries-server/internal/config"
)

// EntriesApp encapsulates all components needed to run the entries API server
// It provides lifecycle management and graceful shutdown capabilities
type EntriesApp struct {
	config     *config.Config
	components *AppComponents
	httpServer *http.Server

	// Lifecycle management
	ctx        context.Context
	cancelFunc context.CancelFunc
}

// Start starts the HTTP server.
// This method blocks until the HTTP server stops or encounters an error
func (app *EntriesApp) Start() error {
	slog.Info("Server listening", "address", app.httpServer.Addr)
	if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

// Stop gracefully shuts down the HTTP server with the given timeout and
// releases the storage resources
func (app *EntriesApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := app.httpServer.Shutdown(shutdownCtx)

	// Storage is released after in-flight requests finished
	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server shutdown complete")
	return nil
}

// GetConfig returns the application configuration
func (app *EntriesApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server (useful for testing to get the actual port)
func (app *EntriesApp) GetHTTPServer() *http.Server {
	return app.httpServer
}

// Components returns the assembled application components
func (app *EntriesApp) Components() *AppComponents {
	return app.components
}
