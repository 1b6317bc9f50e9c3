package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/stacklok/entries-server/internal/dates"
)

// Fieldtype transforms the values of one kind of field. PreProcess prepares a
// stored value for editing and Process turns an edited value back into its
// stored form.
type Fieldtype interface {
	Handle() string
	PreProcess(value any, field FieldDef) any
	Process(value any, field FieldDef) any
	Meta(value any, field FieldDef) any
	Rules(field FieldDef) []string
}

// Registry resolves fieldtypes by handle.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Fieldtype
}

// NewRegistry creates a registry holding the given fieldtypes.
func NewRegistry(types ...Fieldtype) *Registry {
	r := &Registry{types: make(map[string]Fieldtype, len(types))}
	for _, ft := range types {
		r.Register(ft)
	}
	return r
}

// DefaultRegistry returns a registry with all built-in fieldtypes.
func DefaultRegistry() *Registry {
	return NewRegistry(
		plainFieldtype{handle: "text"},
		plainFieldtype{handle: "textarea"},
		plainFieldtype{handle: "select"},
		markdownFieldtype{},
		slugFieldtype{},
		toggleFieldtype{},
		integerFieldtype{},
		dateFieldtype{},
		tagsFieldtype{},
		relationshipFieldtype{handle: "assets", maxKey: "max_files"},
		relationshipFieldtype{handle: "entries", maxKey: "max_items"},
	)
}

// Register adds or replaces a fieldtype.
func (r *Registry) Register(ft Fieldtype) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[ft.Handle()] = ft
}

// Find returns the fieldtype for the handle. Unknown handles resolve to a
// pass-through fieldtype so that values are never dropped.
func (r *Registry) Find(handle string) Fieldtype {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ft, ok := r.types[handle]; ok {
		return ft
	}
	return plainFieldtype{handle: handle}
}

// plainFieldtype stores values exactly as submitted.
type plainFieldtype struct {
	handle string
}

func (p plainFieldtype) Handle() string                 { return p.handle }
func (plainFieldtype) PreProcess(v any, _ FieldDef) any { return v }
func (plainFieldtype) Process(v any, _ FieldDef) any    { return v }
func (plainFieldtype) Meta(_ any, _ FieldDef) any       { return nil }
func (plainFieldtype) Rules(_ FieldDef) []string        { return nil }

type markdownFieldtype struct{ plainFieldtype }

func (markdownFieldtype) Handle() string { return "markdown" }

func (markdownFieldtype) Process(v any, _ FieldDef) any {
	if s, ok := v.(string); ok {
		return strings.ReplaceAll(s, "\r\n", "\n")
	}
	return v
}

type slugFieldtype struct{ plainFieldtype }

func (slugFieldtype) Handle() string { return "slug" }

func (slugFieldtype) Process(v any, _ FieldDef) any {
	if s, ok := v.(string); ok {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return v
}

type toggleFieldtype struct{ plainFieldtype }

func (toggleFieldtype) Handle() string { return "toggle" }

func (toggleFieldtype) PreProcess(v any, _ FieldDef) any { return toBool(v) }
func (toggleFieldtype) Process(v any, _ FieldDef) any    { return toBool(v) }

func toBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "1", "true", "on", "yes":
			return true
		}
	case int:
		return b != 0
	case float64:
		return b != 0
	}
	return false
}

type integerFieldtype struct{ plainFieldtype }

func (integerFieldtype) Handle() string { return "integer" }

func (integerFieldtype) Process(v any, _ FieldDef) any {
	switch n := v.(type) {
	case nil:
		return nil
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if n == math.Trunc(n) {
			return int(n)
		}
		return n
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return nil
		}
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
	}
	return v
}

func (integerFieldtype) Rules(_ FieldDef) []string { return []string{"integer"} }

type dateFieldtype struct{ plainFieldtype }

func (dateFieldtype) Handle() string { return "date" }

func (dateFieldtype) PreProcess(v any, _ FieldDef) any {
	if s, ok := v.(string); ok && s != "" {
		return dates.Display(s)
	}
	return v
}

func (dateFieldtype) Process(v any, _ FieldDef) any {
	if s, ok := v.(string); ok && s != "" {
		return dates.Normalize(s)
	}
	return v
}

type tagsFieldtype struct{ plainFieldtype }

func (tagsFieldtype) Handle() string { return "tags" }

func (tagsFieldtype) PreProcess(v any, _ FieldDef) any {
	if v == nil {
		return []string{}
	}
	return toStringList(v)
}

func (tagsFieldtype) Process(v any, _ FieldDef) any {
	tags := toStringList(v)
	if len(tags) == 0 {
		return nil
	}
	return tags
}

// relationshipFieldtype holds references to other items by id. With a
// maximum of one item the stored value is a single id, otherwise a list.
type relationshipFieldtype struct {
	handle string
	maxKey string
}

func (r relationshipFieldtype) Handle() string { return r.handle }

func (relationshipFieldtype) PreProcess(v any, _ FieldDef) any {
	if v == nil {
		return []string{}
	}
	return toStringList(v)
}

func (r relationshipFieldtype) Process(v any, field FieldDef) any {
	ids := toStringList(v)
	if len(ids) == 0 {
		return nil
	}
	if field.ConfigInt(r.maxKey) == 1 {
		return ids[0]
	}
	return ids
}

func (relationshipFieldtype) Meta(v any, _ FieldDef) any {
	return map[string]any{"ids": toStringList(v)}
}

func (relationshipFieldtype) Rules(_ FieldDef) []string { return nil }

// toStringList accepts a comma separated string, a single value or a list.
func toStringList(v any) []string {
	var out []string
	switch l := v.(type) {
	case nil:
		return nil
	case string:
		for _, part := range strings.Split(l, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	case []string:
		for _, s := range l {
			if s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range l {
			if item == nil {
				continue
			}
			if s := fmt.Sprint(item); s != "" {
				out = append(out, s)
			}
		}
	default:
		out = append(out, fmt.Sprint(l))
	}
	return out
}
