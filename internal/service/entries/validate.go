package entries

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stacklok/entries-server/internal/schema"
	"github.com/stacklok/entries-server/internal/service"
	"github.com/stacklok/entries-server/internal/structure"
)

// uniqueRule renders a unique_entry_value rule scoped to the collection and
// locale, excluding one entry
func uniqueRule(collection, exceptID, locale string) string {
	return fmt.Sprintf("%s:%s,%s,%s", schema.UniqueEntryValueRule, collection, exceptID, locale)
}

// valueTaken implements schema.UniqueValueChecker against the entry store.
// Its params are the collection, the id to exclude and the locale.
func (s *entryService) valueTaken(ctx context.Context, field string, value any, params []string) (bool, error) {
	param := func(i int) string {
		if i < len(params) {
			return strings.TrimSpace(params[i])
		}
		return ""
	}
	collection, exceptID, locale := param(0), param(1), param(2)

	if field == "slug" {
		slug, _ := value.(string)
		return s.entries.SlugExists(ctx, collection, locale, strings.ToLower(strings.TrimSpace(slug)), exceptID)
	}

	query := service.NewEntryQuery(collection).Where(field, service.OpEquals, value)
	query.Site = locale
	query.PerPage = service.MaxPerPage
	page, err := s.entries.QueryEntries(ctx, query)
	if err != nil {
		return false, err
	}
	for _, e := range page.Entries {
		if e.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

// ensureSlugFree fails with a slug validation error when another entry of
// the collection and locale already uses e's slug
func (s *entryService) ensureSlugFree(ctx context.Context, e *service.Entry) error {
	taken, err := s.entries.SlugExists(ctx, e.Collection, e.Locale, e.Slug, e.ID)
	if err != nil {
		return fmt.Errorf("failed to check slug: %w", err)
	}
	if taken {
		return schema.NewValidationError("slug", "The slug has already been taken.")
	}
	return nil
}

// treeError reports a rejected structure change as a parent field error
func treeError(err error) error {
	return schema.NewValidationError("parent", treeMessage(err))
}

func treeMessage(err error) string {
	switch {
	case errors.Is(err, structure.ErrParentNotFound):
		return "The selected parent does not exist."
	case errors.Is(err, structure.ErrInvalidMove):
		return "An entry cannot be its own parent."
	case errors.Is(err, structure.ErrMaxDepth):
		return "The parent is too deeply nested."
	default:
		return err.Error()
	}
}
