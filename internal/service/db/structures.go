package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/entries-server/internal/otel"
	"github.com/stacklok/entries-server/internal/structure"
)

// FindTree implements StructureStore.FindTree
func (s *Store) FindTree(ctx context.Context, collection, locale string) (*structure.Tree, error) {
	ctx, span := s.startSpan(ctx, tableStructures, "FindTree",
		trace.WithAttributes(otel.AttrCollection.String(collection), otel.AttrSite.String(locale)))
	defer span.End()

	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT tree FROM structures WHERE collection = $1 AND locale = $2`,
		collection, locale).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return structure.New(collection, locale, 0), nil
	}
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to load structure: %w", err)
	}

	tree := structure.New(collection, locale, 0)
	if err := json.Unmarshal(raw, &tree.Root); err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to decode structure of %s/%s: %w", collection, locale, err)
	}
	return tree, nil
}

// SaveTree implements StructureStore.SaveTree
func (s *Store) SaveTree(ctx context.Context, tree *structure.Tree) error {
	ctx, span := s.startSpan(ctx, tableStructures, "SaveTree",
		trace.WithAttributes(otel.AttrCollection.String(tree.Collection), otel.AttrSite.String(tree.Locale)))
	defer span.End()

	nodes := tree.Root
	if nodes == nil {
		nodes = []*structure.Node{}
	}
	raw, err := json.Marshal(nodes)
	if err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to encode structure: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO structures (collection, locale, tree, updated_at)
		VALUES ($1, $2, $3::jsonb, NOW())
		ON CONFLICT (collection, locale) DO UPDATE SET tree = EXCLUDED.tree, updated_at = NOW()`,
		tree.Collection, tree.Locale, raw)
	if err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to save structure: %w", err)
	}
	return nil
}
