package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	goredis "github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/stacklok/entries-server/database"
	"github.com/stacklok/entries-server/internal/app/storage/auth"
	"github.com/stacklok/entries-server/internal/config"
	"github.com/stacklok/entries-server/internal/search"
	"github.com/stacklok/entries-server/internal/service"
	"github.com/stacklok/entries-server/internal/service/factory"
	dbstore "github.com/stacklok/entries-server/internal/service/db"
)

// DatabaseFactory creates PostgreSQL-backed stores. The search index is the
// database full-text index unless memory search is configured, in which case
// it is rebuilt from the stored entries.
type DatabaseFactory struct {
	config *config.Config
	opts   *factoryOptions
	pool   *pgxpool.Pool
	redis  *goredis.Client
	stores *factory.Stores
}

var _ Factory = (*DatabaseFactory)(nil)

// NewDatabaseFactory creates a new database-backed storage factory.
// It runs pending migrations when configured and opens the connection pool.
func NewDatabaseFactory(ctx context.Context, cfg *config.Config, o *factoryOptions) (*DatabaseFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Database == nil {
		return nil, fmt.Errorf("database configuration is required for database storage type")
	}
	if o == nil {
		o = &factoryOptions{}
	}

	slog.Info("Creating database-backed storage factory",
		"host", cfg.Database.Host,
		"database", cfg.Database.Database)

	if cfg.Database.MigrateOnStart {
		if err := runMigrations(ctx, cfg.Database); err != nil {
			return nil, err
		}
	}

	pool, err := buildDatabaseConnectionPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}

	return &DatabaseFactory{
		config: cfg,
		opts:   o,
		pool:   pool,
	}, nil
}

// CreateStores returns the PostgreSQL stores. Calling it again returns the
// same stores.
func (d *DatabaseFactory) CreateStores(ctx context.Context) (*factory.Stores, error) {
	if d.stores != nil {
		return d.stores, nil
	}

	opts := []dbstore.Option{dbstore.WithConnectionPool(d.pool)}
	if d.opts.tracer != nil {
		opts = append(opts, dbstore.WithTracer(d.opts.tracer))
		slog.Debug("Database store tracing enabled")
	}

	store, err := dbstore.New(opts...)
	if err != nil {
		return nil, err
	}
	if err := waitReachable(ctx, "database", store.Ping); err != nil {
		return nil, fmt.Errorf("database is not reachable: %w", err)
	}

	stores := &factory.Stores{
		Entries:       store,
		Structures:    store,
		WorkingCopies: store,
		Revisions:     store,
	}

	switch d.config.Search.GetType() {
	case config.SearchTypeDatabase:
		index, err := dbstore.NewSearchIndex(opts...)
		if err != nil {
			return nil, err
		}
		stores.Search = index
	default:
		index := search.NewMemoryIndex()
		count, err := rebuildIndex(ctx, d.config, store, index)
		if err != nil {
			return nil, fmt.Errorf("failed to build search index: %w", err)
		}
		slog.Info("Built memory search index from database", "entries", count)
		stores.Search = index
	}
	if err := stores.Search.EnsureExists(ctx); err != nil {
		return nil, fmt.Errorf("search index is not ready: %w", err)
	}

	if d.config.Redis != nil {
		wc, client, err := redisWorkingCopies(ctx, d.config.Redis, d.opts)
		if err != nil {
			return nil, err
		}
		d.redis = client
		stores.WorkingCopies = wc
	}

	d.stores = stores
	return stores, nil
}

// Cleanup closes the Redis client and the connection pool
func (d *DatabaseFactory) Cleanup() {
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			slog.Warn("Failed to close redis client", "error", err)
		}
		d.redis = nil
	}
	if d.pool != nil {
		slog.Info("Closing database connection pool")
		d.pool.Close()
		d.pool = nil
	}
}

func runMigrations(ctx context.Context, cfg *config.DatabaseConfig) error {
	connStr, err := auth.MigrationConnectionString(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to build migration connection string: %w", err)
	}
	slog.Info("Applying database migrations")
	if err := database.MigrateUp(connStr); err != nil {
		return err
	}
	return nil
}

// buildDatabaseConnectionPool creates a connection pool with the configured
// limits and, when configured, per-connection dynamic credentials.
func buildDatabaseConnectionPool(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	connStr, err := cfg.GetConnectionString()
	if err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database connection string: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	}
	lifetime, err := cfg.GetConnMaxLifetime()
	if err != nil {
		return nil, fmt.Errorf("failed to parse connMaxLifetime: %w", err)
	}
	if lifetime > 0 {
		poolConfig.MaxConnLifetime = lifetime
	}

	beforeConnect, err := auth.NewBeforeConnect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure dynamic authentication: %w", err)
	}
	if beforeConnect != nil {
		poolConfig.BeforeConnect = beforeConnect
		slog.Info("Database dynamic authentication enabled")
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	slog.Info("Database connection pool created successfully")
	return pool, nil
}

// rebuildIndexWorkers bounds how many collections are indexed concurrently
const rebuildIndexWorkers = 4

// rebuildIndex inserts every entry of the searchable collections into index
func rebuildIndex(
	ctx context.Context,
	cfg *config.Config,
	entries service.EntryStore,
	index service.SearchIndex,
) (int, error) {
	var count atomic.Int64
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(rebuildIndexWorkers)
	for _, c := range cfg.Collections {
		if !c.Searchable {
			continue
		}
		handle := c.Handle
		g.Go(func() error {
			query := service.NewEntryQuery(handle)
			query.PerPage = service.MaxPerPage
			for {
				page, err := entries.QueryEntries(gCtx, query)
				if err != nil {
					return fmt.Errorf("collection %s: %w", handle, err)
				}
				for _, e := range page.Entries {
					if err := index.Insert(gCtx, e); err != nil {
						return fmt.Errorf("collection %s: %w", handle, err)
					}
					count.Add(1)
				}
				if query.Page >= page.LastPage() {
					return nil
				}
				query.Page++
			}
		})
	}
	err := g.Wait()
	return int(count.Load()), err
}
