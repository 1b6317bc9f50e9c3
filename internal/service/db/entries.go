package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/entries-server/internal/otel"
	"github.com/stacklok/entries-server/internal/service"
)

const entrySlugConstraint = "entries_slug_key"

// FindEntry implements EntryStore.FindEntry
func (s *Store) FindEntry(ctx context.Context, id string) (*service.Entry, error) {
	ctx, span := s.startSpan(ctx, tableEntries, "FindEntry",
		trace.WithAttributes(otel.AttrEntryID.String(id)))
	defer span.End()

	row := s.pool.QueryRow(ctx, `SELECT `+entrySelectColumns+` FROM entries WHERE id = $1`, id)
	e, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("%w: %s", service.ErrEntryNotFound, id)
	}
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	return e, nil
}

// SaveEntry implements EntryStore.SaveEntry. A slug already used in the
// collection and locale violates the entries_slug_key constraint.
func (s *Store) SaveEntry(ctx context.Context, entry *service.Entry) error {
	ctx, span := s.startSpan(ctx, tableEntries, "SaveEntry",
		trace.WithAttributes(
			otel.AttrEntryID.String(entry.ID),
			otel.AttrCollection.String(entry.Collection),
			otel.AttrSite.String(entry.Locale),
		))
	defer span.End()

	if entry.ID == "" {
		err := fmt.Errorf("entry id is required")
		otel.RecordError(span, err)
		return err
	}

	data, err := marshalData(entry.Data)
	if err != nil {
		otel.RecordError(span, err)
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO entries (id, collection, locale, slug, published, blueprint, data, date,
			origin_id, author, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			collection = EXCLUDED.collection,
			locale = EXCLUDED.locale,
			slug = EXCLUDED.slug,
			published = EXCLUDED.published,
			blueprint = EXCLUDED.blueprint,
			data = EXCLUDED.data,
			date = EXCLUDED.date,
			origin_id = EXCLUDED.origin_id,
			author = EXCLUDED.author,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at`,
		entry.ID, entry.Collection, entry.Locale, entry.Slug, entry.Published, entry.Blueprint, data,
		entry.Date, entry.OriginID, entry.Author, entry.UpdatedBy, entry.CreatedAt, entry.UpdatedAt,
	)
	if isUniqueViolation(err, entrySlugConstraint) {
		err = fmt.Errorf("slug %q already exists in %s/%s", entry.Slug, entry.Collection, entry.Locale)
	}
	if err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to save entry: %w", err)
	}
	return nil
}

// DeleteEntry implements EntryStore.DeleteEntry. Working copies and revisions
// are removed by cascade.
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	ctx, span := s.startSpan(ctx, tableEntries, "DeleteEntry",
		trace.WithAttributes(otel.AttrEntryID.String(id)))
	defer span.End()

	tag, err := s.pool.Exec(ctx, `DELETE FROM entries WHERE id = $1`, id)
	if err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err := fmt.Errorf("%w: %s", service.ErrEntryNotFound, id)
		otel.RecordError(span, err)
		return err
	}
	return nil
}

// QueryEntries implements EntryStore.QueryEntries
func (s *Store) QueryEntries(ctx context.Context, query *service.EntryQuery) (*service.EntryPage, error) {
	ctx, span := s.startSpan(ctx, tableEntries, "QueryEntries",
		trace.WithAttributes(
			otel.AttrCollection.String(query.Collection),
			otel.AttrSite.String(query.Site),
			otel.AttrPage.Int(query.Page),
			otel.AttrPageSize.Int(query.PerPage),
		))
	defer span.End()

	page := &service.EntryPage{Page: max(query.Page, 1), PerPage: query.PerPage}
	if page.PerPage <= 0 {
		page.PerPage = service.DefaultPerPage
	}

	b := &queryBuilder{}
	where, err := b.where(query)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM entries WHERE `+where, b.args...).Scan(&page.Total); err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}

	order := b.orderBy(query)
	limit := b.arg(page.PerPage)
	offset := b.arg((page.Page - 1) * page.PerPage)
	sql := `SELECT ` + entrySelectColumns + ` FROM entries WHERE ` + where +
		` ORDER BY ` + order + ` LIMIT ` + limit + ` OFFSET ` + offset

	slog.DebugContext(ctx, "QueryEntries query",
		"collection", query.Collection,
		"site", query.Site,
		"conditions", len(query.Conditions),
		"page", page.Page,
		"request_id", middleware.GetReqID(ctx))

	entries, err := s.queryEntries(ctx, s.pool, sql, b.args...)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	page.Entries = entries

	span.SetAttributes(otel.AttrResultCount.Int(len(entries)))
	return page, nil
}

// SlugExists implements EntryStore.SlugExists
func (s *Store) SlugExists(ctx context.Context, collection, locale, slug, exceptID string) (bool, error) {
	ctx, span := s.startSpan(ctx, tableEntries, "SlugExists",
		trace.WithAttributes(otel.AttrCollection.String(collection), otel.AttrSite.String(locale)))
	defer span.End()

	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM entries
			WHERE collection = $1 AND locale = $2 AND slug = $3 AND id <> $4
		)`, collection, locale, slug, exceptID).Scan(&exists)
	if err != nil {
		otel.RecordError(span, err)
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

// Localizations implements EntryStore.Localizations
func (s *Store) Localizations(ctx context.Context, originID string) ([]*service.Entry, error) {
	ctx, span := s.startSpan(ctx, tableEntries, "Localizations",
		trace.WithAttributes(otel.AttrEntryID.String(originID)))
	defer span.End()

	// UNION drops duplicate rows, which ends the recursion on cycles.
	entries, err := s.queryEntries(ctx, s.pool, `
		WITH RECURSIVE family AS (
			SELECT `+entrySelectColumns+` FROM entries WHERE origin_id = $1 AND id <> $1
			UNION
			SELECT e.id, e.collection, e.locale, e.slug, e.published, e.blueprint, e.data, e.date,
				e.origin_id, e.author, e.updated_by, e.created_at, e.updated_at
			FROM entries e JOIN family f ON e.origin_id = f.id
			WHERE e.id <> $1
		)
		SELECT `+entrySelectColumns+` FROM family ORDER BY locale, id`, originID)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	return entries, nil
}

func (*Store) queryEntries(ctx context.Context, q querier, sql string, args ...any) ([]*service.Entry, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*service.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}
	return entries, nil
}

func scanEntry(row pgx.Row) (*service.Entry, error) {
	var (
		e    service.Entry
		data []byte
	)
	err := row.Scan(&e.ID, &e.Collection, &e.Locale, &e.Slug, &e.Published, &e.Blueprint, &data, &e.Date,
		&e.OriginID, &e.Author, &e.UpdatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan entry: %w", err)
	}
	if e.Data, err = unmarshalData(data); err != nil {
		return nil, fmt.Errorf("failed to decode data of entry %s: %w", e.ID, err)
	}
	return &e, nil
}

func marshalData(data map[string]any) ([]byte, error) {
	if data == nil {
		data = map[string]any{}
	}
	out, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode data: %w", err)
	}
	return out, nil
}

func unmarshalData(raw []byte) (map[string]any, error) {
	data := map[string]any{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}
