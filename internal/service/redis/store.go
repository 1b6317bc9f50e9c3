// Package redis provides a Redis-backed working copy store.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5/middleware"
	goredis "github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/entries-server/internal/otel"
	"github.com/stacklok/entries-server/internal/service"
)

const (
	// ServiceTracerName is the name used for the Redis store tracer
	ServiceTracerName = "github.com/stacklok/entries-server/service/redis"

	defaultKeyPrefix = "entries:"
)

// options holds configuration options for the Redis store
type options struct {
	client    goredis.UniversalClient
	tracer    trace.Tracer
	keyPrefix string
}

// Option is a functional option for configuring the Redis store
type Option func(*options) error

// WithClient sets the Redis client. The caller is responsible for closing it.
func WithClient(client goredis.UniversalClient) Option {
	return func(o *options) error {
		if client == nil {
			return fmt.Errorf("redis client is required")
		}
		o.client = client
		return nil
	}
}

// WithTracer sets the OpenTelemetry tracer for the store.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

// WithKeyPrefix sets the prefix of every key written by the store.
func WithKeyPrefix(prefix string) Option {
	return func(o *options) error {
		if prefix == "" {
			return fmt.Errorf("key prefix cannot be empty")
		}
		o.keyPrefix = prefix
		return nil
	}
}

// WorkingCopyStore keeps one JSON encoded working copy per entry key.
type WorkingCopyStore struct {
	client    goredis.UniversalClient
	tracer    trace.Tracer
	keyPrefix string
}

var _ service.WorkingCopyStore = (*WorkingCopyStore)(nil)

// New creates a Redis working copy store
func New(opts ...Option) (*WorkingCopyStore, error) {
	o := &options{keyPrefix: defaultKeyPrefix}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &WorkingCopyStore{client: o.client, tracer: o.tracer, keyPrefix: o.keyPrefix}, nil
}

// Ping checks that Redis is reachable
func (s *WorkingCopyStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

// FindWorkingCopy implements WorkingCopyStore.FindWorkingCopy
func (s *WorkingCopyStore) FindWorkingCopy(ctx context.Context, entryID string) (*service.WorkingCopy, error) {
	ctx, span := s.startSpan(ctx, "redisStore.FindWorkingCopy", entryID)
	defer span.End()

	raw, err := s.client.Get(ctx, s.key(entryID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("%w: %s", service.ErrWorkingCopyNotFound, entryID)
	}
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to load working copy: %w", err)
	}

	var wc service.WorkingCopy
	if err := json.Unmarshal(raw, &wc); err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to decode working copy of %s: %w", entryID, err)
	}
	if wc.Data == nil {
		wc.Data = map[string]any{}
	}
	return &wc, nil
}

// SaveWorkingCopy implements WorkingCopyStore.SaveWorkingCopy
func (s *WorkingCopyStore) SaveWorkingCopy(ctx context.Context, wc *service.WorkingCopy) error {
	ctx, span := s.startSpan(ctx, "redisStore.SaveWorkingCopy", wc.EntryID)
	defer span.End()

	raw, err := json.Marshal(wc)
	if err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to encode working copy: %w", err)
	}
	if err := s.client.Set(ctx, s.key(wc.EntryID), raw, 0).Err(); err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to save working copy: %w", err)
	}

	slog.DebugContext(ctx, "Working copy saved",
		"entry_id", wc.EntryID,
		"request_id", middleware.GetReqID(ctx))
	return nil
}

// DeleteWorkingCopy implements WorkingCopyStore.DeleteWorkingCopy
func (s *WorkingCopyStore) DeleteWorkingCopy(ctx context.Context, entryID string) error {
	ctx, span := s.startSpan(ctx, "redisStore.DeleteWorkingCopy", entryID)
	defer span.End()

	if err := s.client.Del(ctx, s.key(entryID)).Err(); err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to delete working copy: %w", err)
	}
	return nil
}

func (s *WorkingCopyStore) key(entryID string) string {
	return s.keyPrefix + "working-copy:" + entryID
}

func (s *WorkingCopyStore) startSpan(ctx context.Context, name, entryID string) (context.Context, trace.Span) {
	return otel.StartSpan(ctx, s.tracer, name,
		trace.WithAttributes(
			otel.AttrEntryID.String(entryID),
			attrDBSystemRedis,
		))
}
