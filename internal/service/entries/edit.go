package entries

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/stacklok/entries-server/internal/assets"
	"github.com/stacklok/entries-server/internal/dates"
	"github.com/stacklok/entries-server/internal/otel"
	"github.com/stacklok/entries-server/internal/schema"
	"github.com/stacklok/entries-server/internal/service"
	"github.com/stacklok/entries-server/internal/structure"
)

// PrepareEditView returns the edit view model of an entry
func (s *entryService) PrepareEditView(
	ctx context.Context,
	user *service.ActingUser,
	opts ...service.Option[service.EditViewOptions],
) (view *service.EditView, err error) {
	ctx, span := s.startSpan(ctx, "entryService.PrepareEditView")
	defer span.End()
	start := time.Now()

	options := &service.EditViewOptions{}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			otel.RecordError(span, err)
			return nil, err
		}
	}
	defer func() { s.observe(ctx, "edit", options.Collection, start, err) }()
	span.SetAttributes(otel.AttrEntryID.String(options.EntryID))

	c, err := s.collection(options.Collection)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	userAttributes(span, user, c)

	e, err := s.entryIn(ctx, c, options.EntryID)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	if c.Structured && !options.ViaStructure {
		return &service.EditView{Redirect: s.urls.edit(c, e)}, nil
	}

	if err := s.gate.Authorize(ctx, user, service.ActionView, c, e); err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	working, hasWorkingCopy, err := s.workingState(ctx, e)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	bp, err := s.blueprintFor(c, working)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(otel.AttrBlueprint.String(bp.Handle))

	tree, err := s.tree(ctx, c, working.Locale)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	values, meta := s.extractFromFields(c, working, bp, tree)

	view = &service.EditView{
		Title:            working.Title(),
		Reference:        reference(working),
		Editing:          true,
		Actions:          s.urls.actions(c, working),
		Values:           maps.Clone(values),
		Meta:             meta,
		Collection:       s.urls.summary(c),
		Blueprint:        bp.ToPublishArray(),
		ReadOnly:         !s.gate.Allows(ctx, user, service.ActionEdit, c, working),
		Locale:           working.Locale,
		LocalizedFields:  slices.Sorted(maps.Keys(working.Data)),
		IsRoot:           !working.HasOrigin(),
		HasOrigin:        working.HasOrigin(),
		Permalink:        s.urls.permalink(c, working),
		HasWorkingCopy:   hasWorkingCopy,
		PreloadedAssets:  assets.Preload(ctx, s.assets, assets.ExtractIDs(values)),
		RevisionsEnabled: c.Revisions,
		Breadcrumbs:      s.urls.breadcrumbs(c),
	}
	view.Values["id"] = working.ID

	if working.HasOrigin() {
		origin, err := s.entries.FindEntry(ctx, working.OriginID)
		if err != nil {
			otel.RecordError(span, err)
			return nil, fmt.Errorf("failed to load origin entry: %w", err)
		}
		originTree := tree
		if origin.Locale != working.Locale {
			if originTree, err = s.tree(ctx, c, origin.Locale); err != nil {
				otel.RecordError(span, err)
				return nil, err
			}
		}
		view.OriginValues, view.OriginMeta = s.extractFromFields(c, origin, bp, originTree)
	}

	if view.Localizations, err = s.localizations(ctx, c, working); err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	return view, nil
}

// blueprintFor resolves the blueprint of an entry, falling back to the
// collection default, with the entry fields ensured
func (s *entryService) blueprintFor(c *service.Collection, e *service.Entry) (*schema.Blueprint, error) {
	if e.Blueprint != "" {
		bp, err := s.blueprints.Find(c.Handle, e.Blueprint)
		if err == nil {
			return bp.EnsureEntryFields(c.Dated, c.Structured), nil
		}
		if !errors.Is(err, service.ErrBlueprintNotFound) {
			return nil, err
		}
	}
	return s.resolveBlueprint(c, "")
}

// resolveBlueprint returns the named blueprint or the collection default.
// A collection without a usable blueprint is a configuration error.
func (s *entryService) resolveBlueprint(c *service.Collection, handle string) (*schema.Blueprint, error) {
	var (
		bp  *schema.Blueprint
		err error
	)
	if handle != "" {
		bp, err = s.blueprints.Find(c.Handle, handle)
	} else {
		bp, err = s.blueprints.Default(c.Handle, c.Blueprints)
	}
	if errors.Is(err, service.ErrBlueprintNotFound) {
		return nil, fmt.Errorf("%w: A valid blueprint is required.", service.ErrConfiguration)
	}
	if err != nil {
		return nil, err
	}
	return bp.EnsureEntryFields(c.Dated, c.Structured), nil
}

// tree loads the structure tree of a structured collection. Other
// collections have no tree.
func (s *entryService) tree(ctx context.Context, c *service.Collection, locale string) (*structure.Tree, error) {
	if !c.Structured {
		return nil, nil
	}
	tree, err := s.structures.FindTree(ctx, c.Handle, locale)
	if err != nil {
		return nil, fmt.Errorf("failed to load structure: %w", err)
	}
	tree.MaxDepth = c.MaxDepth
	return tree, nil
}

// extractFromFields prepares the entry values and field meta for editing
func (s *entryService) extractFromFields(
	c *service.Collection,
	e *service.Entry,
	bp *schema.Blueprint,
	tree *structure.Tree,
) (map[string]any, map[string]any) {
	values := maps.Clone(e.Data)
	if values == nil {
		values = map[string]any{}
	}
	if tree != nil {
		parent := []string{}
		if p := tree.Parent(e.ID); p != "" {
			parent = append(parent, p)
		}
		values["parent"] = parent
	}
	return s.preparedValues(c, e, bp, values)
}

func (s *entryService) preparedValues(
	c *service.Collection,
	e *service.Entry,
	bp *schema.Blueprint,
	values map[string]any,
) (map[string]any, map[string]any) {
	fields := schema.NewFields(bp, s.fieldtypes).AddValues(values).PreProcess()

	out := fields.Values()
	out["title"] = e.Title()
	out["slug"] = e.Slug
	out["published"] = e.Published
	if c.Dated {
		out["date"] = dates.Display(e.Date)
	}
	return out, fields.Meta()
}

// localizations describes the entry family in every site of the collection
func (s *entryService) localizations(
	ctx context.Context,
	c *service.Collection,
	e *service.Entry,
) ([]service.Localization, error) {
	family, err := s.family(ctx, e)
	if err != nil {
		return nil, err
	}

	out := make([]service.Localization, 0, len(c.Sites))
	for _, handle := range c.Sites {
		l := service.Localization{
			Handle: handle,
			Name:   handle,
			Active: handle == e.Locale,
		}
		if site, err := s.catalog.FindSite(handle); err == nil {
			l.Name = site.Name
		}
		i := slices.IndexFunc(family, func(m *service.Entry) bool { return m.Locale == handle })
		if i >= 0 {
			member := family[i]
			if handle == e.Locale {
				member = e
			}
			l.Exists = true
			l.Root = !member.HasOrigin()
			l.Origin = e.HasOrigin() && member.ID == e.OriginID
			l.Published = member.Published
			l.URL = s.urls.edit(c, member)
		}
		out = append(out, l)
	}
	return out, nil
}

// family returns the root of the entry's localization tree followed by
// every localization descending from it
func (s *entryService) family(ctx context.Context, e *service.Entry) ([]*service.Entry, error) {
	root := e
	seen := map[string]bool{e.ID: true}
	for root.HasOrigin() && !seen[root.OriginID] {
		seen[root.OriginID] = true
		origin, err := s.entries.FindEntry(ctx, root.OriginID)
		if errors.Is(err, service.ErrEntryNotFound) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load origin entry: %w", err)
		}
		root = origin
	}

	descendants, err := s.entries.Localizations(ctx, root.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load localizations: %w", err)
	}
	return append([]*service.Entry{root}, descendants...), nil
}
