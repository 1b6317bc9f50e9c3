package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/entries-server/internal/otel"
	"github.com/stacklok/entries-server/internal/search"
	"github.com/stacklok/entries-server/internal/service"
)

// SearchIndex is a PostgreSQL full-text index over entry titles, slugs and
// string data. Queries match any of their words.
type SearchIndex struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

var _ service.SearchIndex = (*SearchIndex)(nil)

// NewSearchIndex creates a full-text index on the pool given by the options
func NewSearchIndex(opts ...Option) (*SearchIndex, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &SearchIndex{pool: o.pool, tracer: o.tracer}, nil
}

// EnsureExists checks that the search table has been migrated
func (idx *SearchIndex) EnsureExists(ctx context.Context) error {
	ctx, span := idx.startSpan(ctx, "EnsureExists")
	defer span.End()

	var name *string
	if err := idx.pool.QueryRow(ctx, `SELECT to_regclass('entry_search')::text`).Scan(&name); err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to check search index: %w", err)
	}
	if name == nil {
		err := fmt.Errorf("search index table does not exist, run the migrations")
		otel.RecordError(span, err)
		return err
	}
	return nil
}

// Insert indexes the entry, replacing a previous version
func (idx *SearchIndex) Insert(ctx context.Context, e *service.Entry) error {
	ctx, span := idx.startSpan(ctx, "Insert",
		trace.WithAttributes(otel.AttrEntryID.String(e.ID)))
	defer span.End()

	_, err := idx.pool.Exec(ctx, `
		INSERT INTO entry_search (entry_id, collection, locale, title, document)
		VALUES ($1, $2, $3, $4, to_tsvector('simple', $5))
		ON CONFLICT (entry_id) DO UPDATE SET
			collection = EXCLUDED.collection,
			locale = EXCLUDED.locale,
			title = EXCLUDED.title,
			document = EXCLUDED.document`,
		e.ID, e.Collection, e.Locale, strings.ToLower(e.Title()), documentText(e))
	if err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to index entry: %w", err)
	}
	return nil
}

// Delete removes the entry from the index
func (idx *SearchIndex) Delete(ctx context.Context, id string) error {
	ctx, span := idx.startSpan(ctx, "Delete",
		trace.WithAttributes(otel.AttrEntryID.String(id)))
	defer span.End()

	if _, err := idx.pool.Exec(ctx, `DELETE FROM entry_search WHERE entry_id = $1`, id); err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to remove entry from index: %w", err)
	}
	return nil
}

// Search returns the ids of matching entries ranked by relevance, then title
func (idx *SearchIndex) Search(ctx context.Context, term, collection, site string) ([]string, error) {
	ctx, span := idx.startSpan(ctx, "Search",
		trace.WithAttributes(
			otel.AttrCollection.String(collection),
			otel.AttrSite.String(site)))
	defer span.End()

	terms := search.Tokenize(term)
	if len(terms) == 0 {
		return []string{}, nil
	}

	rows, err := idx.pool.Query(ctx, `
		SELECT entry_id FROM entry_search, to_tsquery('simple', $1) AS q
		WHERE document @@ q
			AND ($2 = '' OR collection = $2)
			AND ($3 = '' OR locale = $3)
		ORDER BY ts_rank(document, q) DESC, title, entry_id`,
		tsQuery(terms), collection, site)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to search entries: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			otel.RecordError(span, err)
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to read search results: %w", err)
	}

	span.SetAttributes(otel.AttrResultCount.Int(len(ids)))
	return ids, nil
}

// documentText joins the words indexed for an entry.
func documentText(e *service.Entry) string {
	parts := []string{e.Slug}
	for _, v := range e.Data {
		if s, ok := v.(string); ok {
			parts = append(parts, s)
		}
	}
	return strings.Join(search.Tokenize(strings.Join(parts, " ")), " ")
}

// tsQuery ORs the terms. Tokenized terms hold only letters and digits, so
// they need no quoting.
func tsQuery(terms []string) string {
	return strings.Join(terms, " | ")
}
