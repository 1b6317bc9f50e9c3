package entries

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/stacklok/entries-server/internal/dates"
	"github.com/stacklok/entries-server/internal/otel"
	"github.com/stacklok/entries-server/internal/schema"
	"github.com/stacklok/entries-server/internal/service"
)

// CreateEntryForm returns the view model used to create an entry
func (s *entryService) CreateEntryForm(
	ctx context.Context,
	user *service.ActingUser,
	opts ...service.Option[service.CreateFormOptions],
) (view *service.CreateView, err error) {
	ctx, span := s.startSpan(ctx, "entryService.CreateEntryForm")
	defer span.End()
	start := time.Now()

	options := &service.CreateFormOptions{}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			otel.RecordError(span, err)
			return nil, err
		}
	}
	defer func() { s.observe(ctx, "create", options.Collection, start, err) }()

	c, err := s.collection(options.Collection)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	userAttributes(span, user, c)

	site, err := s.site(c, options.Site)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(otel.AttrSite.String(site))

	if err := s.gate.Authorize(ctx, user, service.ActionCreate, c, nil); err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	bp, err := s.resolveBlueprint(c, options.Blueprint)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(otel.AttrBlueprint.String(bp.Handle))

	values := map[string]any{}
	if c.Structured && options.Parent != "" {
		values["parent"] = options.Parent
	}
	fields := schema.NewFields(bp, s.fieldtypes).AddValues(values).PreProcess()

	prepared := fields.Values()
	prepared["title"] = nil
	prepared["slug"] = nil
	prepared["published"] = c.DefaultPublished

	localizations := make([]service.Localization, 0, len(c.Sites))
	for _, handle := range c.Sites {
		l := service.Localization{
			Handle: handle,
			Name:   handle,
			Active: handle == site,
			URL:    s.urls.create(c, handle),
		}
		if found, err := s.catalog.FindSite(handle); err == nil {
			l.Name = found.Name
		}
		localizations = append(localizations, l)
	}

	return &service.CreateView{
		Title:            "Create Entry",
		Actions:          service.EditActions{Save: s.urls.store(c, site)},
		Values:           prepared,
		Meta:             fields.Meta(),
		Collection:       s.urls.summary(c),
		Blueprint:        bp.ToPublishArray(),
		Published:        c.DefaultPublished,
		Locale:           site,
		Localizations:    localizations,
		RevisionsEnabled: c.Revisions,
		Breadcrumbs:      s.urls.breadcrumbs(c),
	}, nil
}

// StoreEntry validates and creates a new entry
func (s *entryService) StoreEntry(
	ctx context.Context,
	user *service.ActingUser,
	opts ...service.Option[service.StoreEntryOptions],
) (result *service.StoreResult, err error) {
	ctx, span := s.startSpan(ctx, "entryService.StoreEntry")
	defer span.End()
	start := time.Now()

	options := &service.StoreEntryOptions{}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			otel.RecordError(span, err)
			return nil, err
		}
	}
	defer func() { s.observe(ctx, "store", options.Collection, start, err) }()

	c, err := s.collection(options.Collection)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	userAttributes(span, user, c)

	site, err := s.site(c, options.Site)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(otel.AttrSite.String(site))

	if err := s.gate.Authorize(ctx, user, service.ActionStore, c, nil); err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	blueprintHandle := options.Blueprint
	if blueprintHandle == "" {
		blueprintHandle = stringOf(options.Values["blueprint"])
	}
	bp, err := s.resolveBlueprint(c, blueprintHandle)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(otel.AttrBlueprint.String(bp.Handle))

	fields := schema.NewFields(bp, s.fieldtypes).AddValues(options.Values)
	rules := map[string][]string{
		"title": {"required"},
		"slug":  {"required", uniqueRule(c.Handle, "", site)},
	}
	if err := fields.Validate(ctx, rules, schema.WithUniqueChecker(s.valueTaken)); err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	values := fields.Process().Values()
	parent := firstString(values["parent"])
	slug := stringOf(values["slug"])
	for _, key := range []string{"parent", "slug", "blueprint", "date", "published"} {
		delete(values, key)
	}
	for key, value := range values {
		if value == nil {
			delete(values, key)
		}
	}

	now := s.now()
	published := c.DefaultPublished
	if v, ok := options.Values["published"]; ok {
		published = toBool(v)
	}
	entry := &service.Entry{
		ID:         s.newID(),
		Collection: c.Handle,
		Locale:     site,
		Slug:       slug,
		Published:  published,
		Blueprint:  bp.Handle,
		Data:       values,
		Author:     user.ID,
		UpdatedBy:  user.ID,
		UpdatedAt:  now,
		CreatedAt:  now,
	}
	if c.Dated {
		if date := stringOf(options.Values["date"]); date != "" {
			entry.Date = service.NormalizeDate(date)
		} else {
			entry.Date = dates.Token(now)
		}
	}
	span.SetAttributes(otel.AttrEntryID.String(entry.ID))

	tree, err := s.tree(ctx, c, site)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	if tree != nil {
		if err := tree.AppendTo(parent, entry.ID); err != nil {
			otel.RecordError(span, err)
			return nil, treeError(err)
		}
	}

	if err := s.entries.SaveEntry(ctx, entry); err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	if c.Revisions {
		revision := s.newRevision(entry, service.RevisionActionRevision, options.Message, user)
		if err := s.revisions.CreateRevision(ctx, revision); err != nil {
			otel.RecordError(span, err)
			return nil, fmt.Errorf("failed to record revision: %w", err)
		}
	}

	if tree != nil {
		if err := s.structures.SaveTree(ctx, tree); err != nil {
			otel.RecordError(span, err)
			return nil, fmt.Errorf("failed to save structure: %w", err)
		}
	}

	s.reindex(ctx, c, entry)

	slog.InfoContext(ctx, "Entry created",
		"entry", entry.ID,
		"collection", c.Handle,
		"site", site,
		"user", user.ID,
		"request_id", middleware.GetReqID(ctx))

	return &service.StoreResult{
		Entry:    entry.ToPayload(),
		Redirect: s.urls.edit(c, entry),
	}, nil
}
