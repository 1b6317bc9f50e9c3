package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/entries-server/internal/otel"
	"github.com/stacklok/entries-server/internal/service"
)

const revisionSelectColumns = `id, entry_id, action, message, user_id, attributes, created_at`

// CreateRevision implements RevisionStore.CreateRevision
func (s *Store) CreateRevision(ctx context.Context, revision *service.Revision) error {
	ctx, span := s.startSpan(ctx, tableRevisions, "CreateRevision",
		trace.WithAttributes(otel.AttrEntryID.String(revision.EntryID)))
	defer span.End()

	if revision.ID == "" {
		err := fmt.Errorf("revision id is required")
		otel.RecordError(span, err)
		return err
	}

	attrs := revision.Attributes
	if attrs.Data == nil {
		attrs.Data = map[string]any{}
	}
	raw, err := json.Marshal(attrs)
	if err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to encode revision attributes: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO revisions (id, entry_id, action, message, user_id, attributes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7)`,
		revision.ID, revision.EntryID, string(revision.Action), revision.Message, revision.UserID,
		raw, revision.CreatedAt)
	if isForeignKeyViolation(err) {
		err = fmt.Errorf("%w: %s", service.ErrEntryNotFound, revision.EntryID)
	}
	if err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to create revision: %w", err)
	}
	return nil
}

// ListRevisions implements RevisionStore.ListRevisions
func (s *Store) ListRevisions(ctx context.Context, entryID string) ([]*service.Revision, error) {
	ctx, span := s.startSpan(ctx, tableRevisions, "ListRevisions",
		trace.WithAttributes(otel.AttrEntryID.String(entryID)))
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT `+revisionSelectColumns+` FROM revisions WHERE entry_id = $1 ORDER BY seq DESC`, entryID)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to list revisions: %w", err)
	}
	defer rows.Close()

	out := make([]*service.Revision, 0)
	for rows.Next() {
		r, err := scanRevision(rows)
		if err != nil {
			otel.RecordError(span, err)
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to read revisions: %w", err)
	}

	span.SetAttributes(otel.AttrResultCount.Int(len(out)))
	return out, nil
}

// FindRevision implements RevisionStore.FindRevision
func (s *Store) FindRevision(ctx context.Context, entryID, revisionID string) (*service.Revision, error) {
	ctx, span := s.startSpan(ctx, tableRevisions, "FindRevision",
		trace.WithAttributes(otel.AttrEntryID.String(entryID)))
	defer span.End()

	row := s.pool.QueryRow(ctx,
		`SELECT `+revisionSelectColumns+` FROM revisions WHERE entry_id = $1 AND id = $2`, entryID, revisionID)
	r, err := scanRevision(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", service.ErrRevisionNotFound, revisionID)
	}
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	return r, nil
}

func scanRevision(row pgx.Row) (*service.Revision, error) {
	var (
		r      service.Revision
		action string
		raw    []byte
	)
	if err := row.Scan(&r.ID, &r.EntryID, &action, &r.Message, &r.UserID, &raw, &r.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan revision: %w", err)
	}
	r.Action = service.RevisionAction(action)
	if err := json.Unmarshal(raw, &r.Attributes); err != nil {
		return nil, fmt.Errorf("failed to decode revision %s: %w", r.ID, err)
	}
	if r.Attributes.Data == nil {
		r.Attributes.Data = map[string]any{}
	}
	return &r, nil
}
