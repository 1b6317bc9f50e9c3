package storage

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/go-redis/redis/v8"

	"github.com/stacklok/entries-server/internal/config"
	"github.com/stacklok/entries-server/internal/search"
	"github.com/stacklok/entries-server/internal/service"
	"github.com/stacklok/entries-server/internal/service/factory"
	"github.com/stacklok/entries-server/internal/service/inmemory"
)

// MemoryFactory keeps all state in process memory. Working copies may
// still live in Redis when it is configured.
type MemoryFactory struct {
	config *config.Config
	opts   *factoryOptions
	store  *inmemory.Store
	index  *search.MemoryIndex
	redis  *goredis.Client
	seeded bool

	workingCopies service.WorkingCopyStore
}

var _ Factory = (*MemoryFactory)(nil)

// NewMemoryFactory creates a memory-backed storage factory
func NewMemoryFactory(cfg *config.Config, o *factoryOptions) *MemoryFactory {
	if o == nil {
		o = &factoryOptions{}
	}
	slog.Info("Creating memory-backed storage factory")
	return &MemoryFactory{
		config: cfg,
		opts:   o,
		store:  inmemory.New(),
		index:  search.NewMemoryIndex(),
	}
}

// CreateStores returns the memory stores, loading the seed file first when
// one is configured.
func (m *MemoryFactory) CreateStores(ctx context.Context) (*factory.Stores, error) {
	if m.config.Storage.SeedFile != "" && !m.seeded {
		count, err := ImportFile(ctx, m.config, &factory.Stores{
			Entries:    m.store,
			Structures: m.store,
			Search:     m.index,
		}, m.config.Storage.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("failed to seed memory storage: %w", err)
		}
		slog.Info("Seeded memory storage", "file", m.config.Storage.SeedFile, "entries", count)
		m.seeded = true
	}

	stores := &factory.Stores{
		Entries:       m.store,
		Structures:    m.store,
		WorkingCopies: m.store,
		Revisions:     m.store,
		Search:        m.index,
	}

	if m.config.Redis != nil {
		if m.redis == nil {
			wc, client, err := redisWorkingCopies(ctx, m.config.Redis, m.opts)
			if err != nil {
				return nil, err
			}
			m.redis = client
			m.workingCopies = wc
		}
		stores.WorkingCopies = m.workingCopies
	}
	return stores, nil
}

// Cleanup closes the Redis client, if any
func (m *MemoryFactory) Cleanup() {
	if m.redis != nil {
		if err := m.redis.Close(); err != nil {
			slog.Warn("Failed to close redis client", "error", err)
		}
		m.redis = nil
	}
}

