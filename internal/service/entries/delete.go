package entries

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/stacklok/entries-server/internal/otel"
	"github.com/stacklok/entries-server/internal/service"
)

// DeleteEntry removes an entry together with its structure nodes, working
// copy and search document. Its direct localizations are attached to the
// deleted entry's own origin.
func (s *entryService) DeleteEntry(
	ctx context.Context,
	user *service.ActingUser,
	opts ...service.Option[service.DeleteEntryOptions],
) (err error) {
	ctx, span := s.startSpan(ctx, "entryService.DeleteEntry")
	defer span.End()
	start := time.Now()

	options := &service.DeleteEntryOptions{}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			otel.RecordError(span, err)
			return err
		}
	}
	span.SetAttributes(otel.AttrEntryID.String(options.EntryID))

	var collection string
	defer func() { s.observe(ctx, "delete", collection, start, err) }()

	e, c, err := s.entryWithCollection(ctx, options.EntryID)
	if err != nil {
		otel.RecordError(span, err)
		return err
	}
	collection = c.Handle
	userAttributes(span, user, c)

	if err := s.gate.Authorize(ctx, user, service.ActionDelete, c, e); err != nil {
		otel.RecordError(span, err)
		return err
	}

	localizations, err := s.entries.Localizations(ctx, e.ID)
	if err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to load localizations: %w", err)
	}

	if err := s.entries.DeleteEntry(ctx, e.ID); err != nil {
		otel.RecordError(span, err)
		return err
	}

	for _, l := range localizations {
		if l.OriginID != e.ID {
			continue
		}
		l.OriginID = e.OriginID
		if err := s.entries.SaveEntry(ctx, l); err != nil {
			otel.RecordError(span, err)
			return fmt.Errorf("failed to detach localization %s: %w", l.ID, err)
		}
	}

	if c.Structured {
		for _, site := range c.Sites {
			tree, err := s.tree(ctx, c, site)
			if err != nil {
				otel.RecordError(span, err)
				return err
			}
			if !tree.Remove(e.ID) {
				continue
			}
			if err := s.structures.SaveTree(ctx, tree); err != nil {
				otel.RecordError(span, err)
				return fmt.Errorf("failed to save structure: %w", err)
			}
		}
	}

	if err := s.workingCopies.DeleteWorkingCopy(ctx, e.ID); err != nil &&
		!errors.Is(err, service.ErrWorkingCopyNotFound) {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to delete working copy: %w", err)
	}

	if s.searchable(c) {
		if err := s.search.Delete(ctx, e.ID); err != nil {
			slog.WarnContext(ctx, "Failed to remove entry from search index",
				"entry", e.ID,
				"error", err,
				"request_id", middleware.GetReqID(ctx))
		}
	}

	slog.InfoContext(ctx, "Entry deleted",
		"entry", e.ID,
		"collection", c.Handle,
		"user", user.ID,
		"request_id", middleware.GetReqID(ctx))

	return nil
}
