package entries

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/stacklok/entries-server/internal/otel"
	"github.com/stacklok/entries-server/internal/schema"
	"github.com/stacklok/entries-server/internal/service"
)

// UpdateEntry validates and saves submitted values for an existing entry.
// Collections with revisions keep edits to published entries in a working
// copy; everything else is written to the entry directly.
func (s *entryService) UpdateEntry(
	ctx context.Context,
	user *service.ActingUser,
	opts ...service.Option[service.UpdateEntryOptions],
) (payload service.EntryPayload, err error) {
	ctx, span := s.startSpan(ctx, "entryService.UpdateEntry")
	defer span.End()
	start := time.Now()

	options := &service.UpdateEntryOptions{}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			otel.RecordError(span, err)
			return nil, err
		}
	}
	defer func() { s.observe(ctx, "update", options.Collection, start, err) }()
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

	if err := s.gate.Authorize(ctx, user, service.ActionUpdate, c, e); err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	working, _, err := s.workingState(ctx, e)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	bp, err := s.blueprintFor(c, working)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	submitted := maps.Clone(options.Values)
	delete(submitted, "id")

	fields := schema.NewFields(bp, s.fieldtypes).AddValues(submitted)
	rules := map[string][]string{
		"title": {"required", "min:3"},
		"slug":  {"required", "alpha_dash", uniqueRule(c.Handle, working.ID, working.Locale)},
	}
	if err := fields.Validate(ctx, rules, schema.WithUniqueChecker(s.valueTaken)); err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	values := fields.Process().Values()
	parent := firstString(values["parent"])
	slug := stringOf(values["slug"])
	for _, key := range []string{"parent", "slug", "date", "published"} {
		delete(values, key)
	}

	if working.HasOrigin() {
		working.Data = localizedData(working.Data, values, fields, options.LocalizedFields)
	} else {
		mergeSubmitted(working.Data, values, fields)
	}

	working.Slug = slug
	if c.Dated {
		if date := stringOf(submitted["date"]); date != "" {
			working.Date = service.NormalizeDate(date)
		}
	}

	tree, err := s.tree(ctx, c, working.Locale)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	moved := false
	if tree != nil && parent != "" {
		if err := tree.Move(working.ID, parent); err != nil {
			otel.RecordError(span, err)
			return nil, treeError(err)
		}
		moved = true
	}

	now := s.now()
	switch updateModeFor(c.Revisions, working.Published) {
	case updateWorkingCopy:
		wc := service.NewWorkingCopy(working)
		wc.UserID = user.ID
		wc.UpdatedAt = now
		if err := s.workingCopies.SaveWorkingCopy(ctx, wc); err != nil {
			otel.RecordError(span, err)
			return nil, fmt.Errorf("failed to save working copy: %w", err)
		}
	case updateEntrySubmittedPublished:
		if published, ok := submitted["published"]; ok {
			working.Published = toBool(published)
		}
		fallthrough
	case updateEntryKeepPublished:
		working.UpdatedBy = user.ID
		working.UpdatedAt = now
		if err := s.entries.SaveEntry(ctx, working); err != nil {
			otel.RecordError(span, err)
			return nil, fmt.Errorf("failed to save entry: %w", err)
		}
	}

	if moved {
		if err := s.structures.SaveTree(ctx, tree); err != nil {
			otel.RecordError(span, err)
			return nil, fmt.Errorf("failed to save structure: %w", err)
		}
	}

	fresh, err := s.entries.FindEntry(ctx, working.ID)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to reload entry: %w", err)
	}
	s.reindex(ctx, c, fresh)

	slog.InfoContext(ctx, "Entry updated",
		"entry", fresh.ID,
		"collection", c.Handle,
		"user", user.ID,
		"working_copy", c.Revisions && working.Published,
		"request_id", middleware.GetReqID(ctx))

	return fresh.ToPayload(), nil
}

// mergeSubmitted writes the submitted values into data. An explicit empty
// value removes the key.
func mergeSubmitted(data, values map[string]any, fields *schema.Fields) {
	for key, value := range values {
		if !fields.Submitted(key) {
			continue
		}
		if value == nil {
			delete(data, key)
			continue
		}
		data[key] = value
	}
}

// localizedData keeps only the localized keys of a localization. Keys that
// were not submitted keep their current value.
func localizedData(current, values map[string]any, fields *schema.Fields, localized []string) map[string]any {
	data := map[string]any{}
	for _, key := range localized {
		value, ok := values[key]
		if !ok {
			continue
		}
		if !fields.Submitted(key) {
			value = current[key]
		}
		if value != nil {
			data[key] = value
		}
	}
	return data
}

func firstString(v any) string {
	if l := toStrings(v); len(l) > 0 {
		return l[0]
	}
	return ""
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

func toBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "1", "true", "on", "yes":
			return true
		}
	case float64:
		return b != 0
	case int:
		return b != 0
	}
	return false
}

// updateMode is where UpdateEntry writes an accepted change
type updateMode int

const (
	// updateWorkingCopy leaves the live entry alone and upserts its working copy
	updateWorkingCopy updateMode = iota
	// updateEntryKeepPublished saves the entry, ignoring a submitted published flag
	updateEntryKeepPublished
	// updateEntrySubmittedPublished saves the entry with the submitted published flag
	updateEntrySubmittedPublished
)

// updateModes is indexed by [revisions enabled][entry published]
var updateModes = [2][2]updateMode{
	{updateEntrySubmittedPublished, updateEntrySubmittedPublished},
	{updateEntryKeepPublished, updateWorkingCopy},
}

func updateModeFor(revisions, published bool) updateMode {
	return updateModes[boolIndex(revisions)][boolIndex(published)]
}

func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}
