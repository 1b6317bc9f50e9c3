package entries

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/stacklok/entries-server/internal/dates"
	"github.com/stacklok/entries-server/internal/otel"
	"github.com/stacklok/entries-server/internal/schema"
	"github.com/stacklok/entries-server/internal/service"
)

// ListEntries returns a page of entry summaries for a collection
func (s *entryService) ListEntries(
	ctx context.Context,
	user *service.ActingUser,
	opts ...service.Option[service.ListEntriesOptions],
) (listing *service.EntryListing, err error) {
	ctx, span := s.startSpan(ctx, "entryService.ListEntries")
	defer span.End()
	start := time.Now()

	options := &service.ListEntriesOptions{
		Page:    1,
		PerPage: service.DefaultPerPage,
	}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			otel.RecordError(span, err)
			return nil, err
		}
	}
	defer func() { s.observe(ctx, "list", options.Collection, start, err) }()

	span.SetAttributes(
		otel.AttrPage.Int(options.Page),
		otel.AttrPageSize.Int(options.PerPage),
		otel.AttrHasSearch.Bool(options.Search != ""),
	)

	c, err := s.collection(options.Collection)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	userAttributes(span, user, c)

	if err := s.gate.Authorize(ctx, user, service.ActionView, c, nil); err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	if options.Site != "" && !c.HasSite(options.Site) {
		err := fmt.Errorf("%w: %s is not enabled for %s", service.ErrSiteNotFound, options.Site, c.Handle)
		otel.RecordError(span, err)
		return nil, err
	}

	query, err := s.indexQuery(ctx, c, options)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	if err := s.applyFilters(query, options.Filters); err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	sortField, sortDirection := options.SortField, options.SortDirection
	if sortField == "" && options.Search == "" {
		sortField, sortDirection = c.DefaultSort()
	}
	if sortField != "" {
		query.OrderBy(sortField, sortDirection)
	}

	slog.DebugContext(ctx, "ListEntries query",
		"collection", c.Handle,
		"site", options.Site,
		"search", options.Search,
		"filters", len(options.Filters),
		"sort", sortField,
		"page", options.Page,
		"per_page", options.PerPage,
		"request_id", middleware.GetReqID(ctx))

	page, err := s.entries.QueryEntries(ctx, query)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	if options.Search == "" && len(options.Filters) == 0 && options.Site == "" {
		s.metrics.RecordEntriesTotal(ctx, c.Handle, int64(page.Total))
	}

	columns := s.columns(ctx, c, user)
	rows := make([]*service.EntrySummary, 0, len(page.Entries))
	for _, e := range page.Entries {
		rows = append(rows, s.summarize(ctx, user, c, e, columns))
	}

	span.SetAttributes(otel.AttrResultCount.Int(len(rows)))

	return &service.EntryListing{
		Data: rows,
		Meta: service.ListingMeta{
			Filters:       s.filterSummaries(c),
			SortColumn:    sortField,
			SortDirection: sortDirection,
			Columns:       columns,
			Total:         page.Total,
			Page:          page.Page,
			PerPage:       page.PerPage,
			LastPage:      page.LastPage(),
		},
	}, nil
}

// indexQuery starts the listing query. A search term goes to the collection's
// index when it has one and becomes a title match otherwise.
func (s *entryService) indexQuery(
	ctx context.Context,
	c *service.Collection,
	options *service.ListEntriesOptions,
) (*service.EntryQuery, error) {
	query := service.NewEntryQuery(c.Handle)
	query.Site = options.Site
	query.Page = options.Page
	query.PerPage = options.PerPage

	if options.Search == "" {
		return query, nil
	}

	if !s.searchable(c) {
		query.Where("title", service.OpLike, "%"+options.Search+"%")
		return query, nil
	}

	if err := s.search.EnsureExists(ctx); err != nil {
		return nil, fmt.Errorf("failed to prepare search index: %w", err)
	}
	ids, err := s.search.Search(ctx, options.Search, c.Handle, options.Site)
	if err != nil {
		return nil, fmt.Errorf("failed to search entries: %w", err)
	}
	query.IDs = append(make([]string, 0, len(ids)), ids...)
	return query, nil
}

// applyFilters resolves each filter by handle and applies it in order
func (s *entryService) applyFilters(query *service.EntryQuery, filters []service.FilterRequest) error {
	for _, f := range filters {
		scope, err := s.scopes.Find(f.Handle)
		if err != nil {
			return schema.NewValidationError("filters", fmt.Sprintf("The filter %s does not exist.", f.Handle))
		}
		if err := scope.Apply(query, f.Values); err != nil {
			return schema.NewValidationError("filters", fmt.Sprintf("The %s filter is invalid: %s.", f.Handle, err))
		}
	}
	return nil
}

func (s *entryService) filterSummaries(c *service.Collection) []service.FilterSummary {
	scopes := s.scopes.ForCollection(c)
	out := make([]service.FilterSummary, 0, len(scopes))
	for _, scope := range scopes {
		out = append(out, service.FilterSummary{Handle: scope.Handle(), Title: scope.Title()})
	}
	return out
}

// columns derives the listing columns from the collection's default
// blueprint and the user's column preference
func (s *entryService) columns(
	ctx context.Context,
	c *service.Collection,
	user *service.ActingUser,
) []service.Column {
	bp, err := s.blueprints.Default(c.Handle, c.Blueprints)
	if err != nil {
		if !errors.Is(err, service.ErrBlueprintNotFound) {
			slog.WarnContext(ctx, "Failed to resolve listing blueprint",
				"collection", c.Handle,
				"error", err,
				"request_id", middleware.GetReqID(ctx))
		}
		bp = &schema.Blueprint{Handle: c.Handle}
	}
	bp = bp.EnsureEntryFields(c.Dated, c.Structured)

	columns := make([]service.Column, 0)
	for _, f := range bp.AllFields() {
		state := f.ListableState()
		if state == schema.ListableFalse {
			continue
		}
		columns = append(columns, service.Column{
			Field:    f.Handle,
			Label:    f.DisplayName(),
			Visible:  state == schema.ListableTrue,
			Sortable: f.IsSortable(),
		})
	}

	preferred := toStrings(user.Preference("collections." + c.Handle + ".columns"))
	if len(preferred) == 0 {
		return columns
	}

	ordered := make([]service.Column, 0, len(columns))
	for _, field := range preferred {
		if i := slices.IndexFunc(columns, func(col service.Column) bool { return col.Field == field }); i >= 0 {
			col := columns[i]
			col.Visible = true
			ordered = append(ordered, col)
		}
	}
	for _, col := range columns {
		if !slices.Contains(preferred, col.Field) {
			col.Visible = false
			ordered = append(ordered, col)
		}
	}
	return ordered
}

// summarize builds a listing row
func (s *entryService) summarize(
	ctx context.Context,
	user *service.ActingUser,
	c *service.Collection,
	e *service.Entry,
	columns []service.Column,
) *service.EntrySummary {
	row := &service.EntrySummary{
		ID:        e.ID,
		Title:     e.Title(),
		Slug:      e.Slug,
		Locale:    e.Locale,
		Published: e.Published,
		Status:    e.Status(c.Dated, s.now()),
		Viewable:  s.gate.Allows(ctx, user, service.ActionView, c, e),
		Editable:  s.gate.Allows(ctx, user, service.ActionEdit, c, e),
		EditURL:   s.urls.edit(c, e),
		Permalink: s.urls.permalink(c, e),
		Actions:   make([]service.EntryAction, 0, 2),
		Values:    map[string]any{},
	}
	if c.Dated {
		row.Date = dates.Display(e.Date)
	}

	if s.gate.Allows(ctx, user, service.ActionPublish, c, e) {
		if e.Published {
			row.Actions = append(row.Actions, service.EntryAction{Handle: "unpublish", Title: "Unpublish"})
		} else {
			row.Actions = append(row.Actions, service.EntryAction{Handle: "publish", Title: "Publish"})
		}
	}
	if s.gate.Allows(ctx, user, service.ActionDelete, c, e) {
		row.Actions = append(row.Actions, service.EntryAction{Handle: "delete", Title: "Delete", Dangerous: true})
	}

	for _, col := range columns {
		if !col.Visible {
			continue
		}
		switch col.Field {
		case "title":
			row.Values[col.Field] = e.Title()
		case "date":
			row.Values[col.Field] = row.Date
		default:
			row.Values[col.Field] = e.Value(col.Field)
		}
	}
	return row
}

// toStrings accepts a list of strings in any of its decoded forms
func toStrings(v any) []string {
	switch l := v.(type) {
	case string:
		if l == "" {
			return nil
		}
		return []string{l}
	case []string:
		return l
	case []any:
		out := make([]string, 0, len(l))
		for _, item := range l {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
