// Package schema implements the blueprint-driven field system: blueprints
// describe the fields of an entry, fieldtypes transform values between their
// stored and editable forms, and validation applies the blueprint's rules.
package schema

import (
	"errors"
	"strings"
)

var (
	// ErrBlueprintNotFound is returned when a blueprint does not exist for a collection
	ErrBlueprintNotFound = errors.New("blueprint not found")
)

const (
	// ListableTrue shows the field as a visible listing column
	ListableTrue = "true"
	// ListableHidden makes the field an available, initially hidden column
	ListableHidden = "hidden"
	// ListableFalse keeps the field out of listings entirely
	ListableFalse = "false"
)

// FieldDef is a single field of a blueprint.
type FieldDef struct {
	Handle       string         `json:"handle"`
	Type         string         `json:"type"`
	Display      string         `json:"display,omitempty"`
	Instructions string         `json:"instructions,omitempty"`
	Validate     []string       `json:"validate,omitempty"`
	Localizable  bool           `json:"localizable,omitempty"`
	Listable     string         `json:"listable,omitempty"`
	Sortable     *bool          `json:"sortable,omitempty"`
	Default      any            `json:"default,omitempty"`
	Config       map[string]any `json:"config,omitempty"`
}

// DisplayName returns the configured display name or a title-cased handle.
func (f FieldDef) DisplayName() string {
	if f.Display != "" {
		return f.Display
	}
	words := strings.Fields(strings.ReplaceAll(f.Handle, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ListableState returns the normalized listable setting, defaulting to hidden.
func (f FieldDef) ListableState() string {
	switch strings.ToLower(f.Listable) {
	case ListableTrue:
		return ListableTrue
	case ListableFalse:
		return ListableFalse
	default:
		return ListableHidden
	}
}

// IsSortable reports whether listings may be sorted by this field.
func (f FieldDef) IsSortable() bool {
	return f.Sortable == nil || *f.Sortable
}

// ConfigInt returns an integer config value, or 0 when unset.
func (f FieldDef) ConfigInt(key string) int {
	switch v := f.Config[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// ConfigBool returns a boolean config value.
func (f FieldDef) ConfigBool(key string) bool {
	b, _ := f.Config[key].(bool)
	return b
}

// Section groups fields for display.
type Section struct {
	Handle  string     `json:"handle,omitempty"`
	Display string     `json:"display,omitempty"`
	Fields  []FieldDef `json:"fields"`
}

// Blueprint is the field definition set of an entry.
type Blueprint struct {
	Handle   string    `json:"handle"`
	Title    string    `json:"title,omitempty"`
	Hidden   bool      `json:"hidden,omitempty"`
	Sections []Section `json:"sections"`
}

// AllFields returns every field in section order.
func (b *Blueprint) AllFields() []FieldDef {
	var fields []FieldDef
	for _, s := range b.Sections {
		fields = append(fields, s.Fields...)
	}
	return fields
}

// Field looks up a field by handle.
func (b *Blueprint) Field(handle string) (FieldDef, bool) {
	for _, s := range b.Sections {
		for _, f := range s.Fields {
			if f.Handle == handle {
				return f, true
			}
		}
	}
	return FieldDef{}, false
}

// HasField reports whether the blueprint defines the given field.
func (b *Blueprint) HasField(handle string) bool {
	_, ok := b.Field(handle)
	return ok
}

// Clone returns a deep enough copy to add fields without touching the original.
func (b *Blueprint) Clone() *Blueprint {
	c := *b
	c.Sections = make([]Section, len(b.Sections))
	for i, s := range b.Sections {
		c.Sections[i] = Section{
			Handle:  s.Handle,
			Display: s.Display,
			Fields:  append([]FieldDef(nil), s.Fields...),
		}
	}
	return &c
}

// ensureField adds the field to the named section unless the blueprint
// already defines it. The section is created when missing.
func (b *Blueprint) ensureField(def FieldDef, section string, prepend bool) {
	if b.HasField(def.Handle) {
		return
	}
	for i := range b.Sections {
		if b.Sections[i].Handle == section || (section == "" && i == 0) {
			if prepend {
				b.Sections[i].Fields = append([]FieldDef{def}, b.Sections[i].Fields...)
			} else {
				b.Sections[i].Fields = append(b.Sections[i].Fields, def)
			}
			return
		}
	}
	b.Sections = append(b.Sections, Section{Handle: section, Display: section, Fields: []FieldDef{def}})
}

// EnsureEntryFields returns a copy of the blueprint that is guaranteed to
// carry the fields every entry needs: title and slug always, date for dated
// collections and parent for structured ones.
func (b *Blueprint) EnsureEntryFields(dated, structured bool) *Blueprint {
	c := b.Clone()
	c.ensureField(FieldDef{
		Handle:   "title",
		Type:     "text",
		Display:  "Title",
		Validate: []string{"required"},
		Listable: ListableTrue,
	}, "", true)
	c.ensureField(FieldDef{
		Handle:      "slug",
		Type:        "slug",
		Display:     "Slug",
		Localizable: true,
		Listable:    ListableHidden,
	}, "sidebar", false)
	if dated {
		c.ensureField(FieldDef{
			Handle:   "date",
			Type:     "date",
			Display:  "Date",
			Listable: ListableHidden,
		}, "sidebar", false)
	}
	if structured {
		c.ensureField(FieldDef{
			Handle:   "parent",
			Type:     "entries",
			Display:  "Parent",
			Listable: ListableFalse,
			Config:   map[string]any{"max_items": 1},
		}, "sidebar", false)
	}
	return c
}

// ToPublishArray renders the blueprint for the editing UI.
func (b *Blueprint) ToPublishArray() map[string]any {
	sections := make([]map[string]any, 0, len(b.Sections))
	for _, s := range b.Sections {
		fields := make([]map[string]any, 0, len(s.Fields))
		for _, f := range s.Fields {
			field := map[string]any{
				"handle":      f.Handle,
				"type":        f.Type,
				"display":     f.DisplayName(),
				"localizable": f.Localizable,
				"required":    hasRule(f.Validate, "required"),
			}
			if f.Instructions != "" {
				field["instructions"] = f.Instructions
			}
			for k, v := range f.Config {
				if _, taken := field[k]; !taken {
					field[k] = v
				}
			}
			fields = append(fields, field)
		}
		sections = append(sections, map[string]any{
			"handle":  s.Handle,
			"display": s.Display,
			"fields":  fields,
		})
	}
	return map[string]any{
		"handle":   b.Handle,
		"title":    b.Title,
		"sections": sections,
	}
}

func hasRule(rules []string, name string) bool {
	for _, r := range splitRules(rules) {
		if ruleName(r) == name {
			return true
		}
	}
	return false
}
