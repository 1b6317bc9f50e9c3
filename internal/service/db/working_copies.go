package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/entries-server/internal/otel"
	"github.com/stacklok/entries-server/internal/service"
)

// FindWorkingCopy implements WorkingCopyStore.FindWorkingCopy
func (s *Store) FindWorkingCopy(ctx context.Context, entryID string) (*service.WorkingCopy, error) {
	ctx, span := s.startSpan(ctx, tableWorkingCopies, "FindWorkingCopy",
		trace.WithAttributes(otel.AttrEntryID.String(entryID)))
	defer span.End()

	var (
		wc   service.WorkingCopy
		data []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT entry_id, slug, published, date, data, user_id, updated_at
		FROM working_copies WHERE entry_id = $1`, entryID).
		Scan(&wc.EntryID, &wc.Slug, &wc.Published, &wc.Date, &data, &wc.UserID, &wc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", service.ErrWorkingCopyNotFound, entryID)
	}
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to load working copy: %w", err)
	}
	if wc.Data, err = unmarshalData(data); err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to decode working copy of %s: %w", entryID, err)
	}
	return &wc, nil
}

// SaveWorkingCopy implements WorkingCopyStore.SaveWorkingCopy. The entry
// must exist.
func (s *Store) SaveWorkingCopy(ctx context.Context, wc *service.WorkingCopy) error {
	ctx, span := s.startSpan(ctx, tableWorkingCopies, "SaveWorkingCopy",
		trace.WithAttributes(otel.AttrEntryID.String(wc.EntryID)))
	defer span.End()

	data, err := marshalData(wc.Data)
	if err != nil {
		otel.RecordError(span, err)
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO working_copies (entry_id, slug, published, date, data, user_id, updated_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7)
		ON CONFLICT (entry_id) DO UPDATE SET
			slug = EXCLUDED.slug,
			published = EXCLUDED.published,
			date = EXCLUDED.date,
			data = EXCLUDED.data,
			user_id = EXCLUDED.user_id,
			updated_at = EXCLUDED.updated_at`,
		wc.EntryID, wc.Slug, wc.Published, wc.Date, data, wc.UserID, wc.UpdatedAt)
	if isForeignKeyViolation(err) {
		err = fmt.Errorf("%w: %s", service.ErrEntryNotFound, wc.EntryID)
	}
	if err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to save working copy: %w", err)
	}
	return nil
}

// DeleteWorkingCopy implements WorkingCopyStore.DeleteWorkingCopy
func (s *Store) DeleteWorkingCopy(ctx context.Context, entryID string) error {
	ctx, span := s.startSpan(ctx, tableWorkingCopies, "DeleteWorkingCopy",
		trace.WithAttributes(otel.AttrEntryID.String(entryID)))
	defer span.End()

	if _, err := s.pool.Exec(ctx, `DELETE FROM working_copies WHERE entry_id = $1`, entryID); err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to delete working copy: %w", err)
	}
	return nil
}
