// Package database provides PostgreSQL implementations of the entry,
// structure, working copy and revision stores and of the search index.
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/entries-server/internal/otel"
	"github.com/stacklok/entries-server/internal/service"
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// options holds configuration options for the database store
type options struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

// Option is a functional option for configuring the database store
type Option func(*options) error

// WithConnectionPool sets the pgx pool. The caller is responsible for closing
// the pool when it is done.
func WithConnectionPool(pool *pgxpool.Pool) Option {
	return func(o *options) error {
		if pool == nil {
			return fmt.Errorf("pgx pool is required")
		}
		o.pool = pool
		return nil
	}
}

// WithTracer sets the OpenTelemetry tracer for the database store.
// If not set, tracing will be disabled (no-op).
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

// Store persists entries, structure trees, working copies and revisions in
// PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

var (
	_ service.EntryStore       = (*Store)(nil)
	_ service.StructureStore   = (*Store)(nil)
	_ service.WorkingCopyStore = (*Store)(nil)
	_ service.RevisionStore    = (*Store)(nil)
)

// New creates a new database-backed store with the given options
func New(opts ...Option) (*Store, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Store{pool: o.pool, tracer: o.tracer}, nil
}

func applyOptions(opts []Option) (*options, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.pool == nil {
		return nil, fmt.Errorf("pgx pool is required")
	}
	return o, nil
}

// Ping implements EntryStore.Ping
func (s *Store) Ping(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "", "Ping")
	defer span.End()

	if err := s.pool.Ping(ctx); err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a unique constraint violation on
// the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}

// isForeignKeyViolation reports whether err is a foreign key violation.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
