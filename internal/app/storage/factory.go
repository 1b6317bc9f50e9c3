// Package storage creates the persistence components of the entry service
// as a family, so that stores, working copies and the search index always
// share compatible backends.
package storage

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/entries-server/internal/config"
	"github.com/stacklok/entries-server/internal/service/factory"
)

//go:generate mockgen -destination=mocks/mock_factory.go -package=mocks -source=factory.go Factory

// Factory creates storage-dependent components as a family and manages the
// lifecycle of the resources behind them (connection pools, clients).
type Factory interface {
	// CreateStores returns the stores backing the entry service. The search
	// index is ready for queries when CreateStores returns.
	CreateStores(ctx context.Context) (*factory.Stores, error)

	// Cleanup releases the resources held by this factory. It is safe to
	// call more than once.
	Cleanup()
}

// Option configures a storage factory
type Option func(*factoryOptions)

type factoryOptions struct {
	tracer trace.Tracer
}

// WithTracer sets the OpenTelemetry tracer passed to the stores.
// If not set, store tracing is disabled.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *factoryOptions) {
		o.tracer = tracer
	}
}

// NewStorageFactory creates a storage factory based on the configured storage type.
func NewStorageFactory(ctx context.Context, cfg *config.Config, opts ...Option) (Factory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	o := &factoryOptions{}
	for _, opt := range opts {
		opt(o)
	}

	switch cfg.Storage.GetType() {
	case config.StorageTypeDatabase:
		return NewDatabaseFactory(ctx, cfg, o)
	case config.StorageTypeMemory:
		return NewMemoryFactory(cfg, o), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Storage.GetType())
	}
}
