package filtering

import (
	"fmt"
	"slices"
	"strings"

	"github.com/stacklok/entries-server/internal/service"
)

// statusScope filters on the published flag.
type statusScope struct{}

func (statusScope) Handle() string { return "status" }
func (statusScope) Title() string  { return "Status" }

func (statusScope) Apply(q *service.EntryQuery, values map[string]any) error {
	switch status, _ := values["status"].(string); status {
	case service.StatusPublished:
		q.Where("published", service.OpEquals, true)
	case service.StatusDraft:
		q.Where("published", service.OpEquals, false)
	default:
		return fmt.Errorf("invalid status: %q", status)
	}
	return nil
}

// siteScope filters on the entry locale. It is only offered for multi-site
// collections.
type siteScope struct{}

func (siteScope) Handle() string { return "site" }
func (siteScope) Title() string  { return "Site" }

func (siteScope) AppliesTo(c *service.Collection) bool {
	return len(c.Sites) > 1
}

func (siteScope) Apply(q *service.EntryQuery, values map[string]any) error {
	site, _ := values["site"].(string)
	if site == "" {
		return fmt.Errorf("site is required")
	}
	q.Where("locale", service.OpEquals, site)
	return nil
}

// blueprintScope filters on the entry blueprint.
type blueprintScope struct{}

func (blueprintScope) Handle() string { return "blueprint" }
func (blueprintScope) Title() string  { return "Blueprint" }

func (blueprintScope) AppliesTo(c *service.Collection) bool {
	return len(c.Blueprints) > 1
}

func (blueprintScope) Apply(q *service.EntryQuery, values map[string]any) error {
	bp, _ := values["blueprint"].(string)
	if bp == "" {
		return fmt.Errorf("blueprint is required")
	}
	q.Where("blueprint", service.OpEquals, bp)
	return nil
}

// fieldsScope applies a comparison per field. Fields are applied in handle
// order so the resulting query is deterministic.
type fieldsScope struct{}

func (fieldsScope) Handle() string { return "fields" }
func (fieldsScope) Title() string  { return "Fields" }

func (fieldsScope) Apply(q *service.EntryQuery, values map[string]any) error {
	if len(values) == 0 {
		return fmt.Errorf("at least one field is required")
	}
	fields := make([]string, 0, len(values))
	for field := range values {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	for _, field := range fields {
		spec, ok := values[field].(map[string]any)
		if !ok {
			q.Where(field, service.OpEquals, values[field])
			continue
		}
		opName, _ := spec["operator"].(string)
		op, err := service.ParseOperator(opName)
		if err != nil {
			return fmt.Errorf("field %s: %w", field, err)
		}
		value := spec["value"]
		if op == service.OpLike {
			if s, ok := value.(string); ok && !strings.ContainsAny(s, "%_") {
				value = "%" + s + "%"
			}
		}
		q.Where(field, op, value)
	}
	return nil
}

// tagsScope requires a list field to contain every given tag.
type tagsScope struct{}

func (tagsScope) Handle() string { return "tags" }
func (tagsScope) Title() string  { return "Tags" }

func (tagsScope) Apply(q *service.EntryQuery, values map[string]any) error {
	field, _ := values["field"].(string)
	if field == "" {
		field = "tags"
	}
	tags := stringList(values["tags"])
	if len(tags) == 0 {
		return fmt.Errorf("at least one tag is required")
	}
	for _, tag := range tags {
		q.Where(field, service.OpContains, tag)
	}
	return nil
}

func stringList(v any) []string {
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
