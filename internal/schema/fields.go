package schema

import "maps"

// Fields binds a blueprint to a set of values and runs them through the
// blueprint's fieldtypes. Every transform returns a new Fields value.
type Fields struct {
	blueprint *Blueprint
	registry  *Registry
	values    map[string]any
	submitted map[string]bool
}

// NewFields creates an empty value set for the blueprint.
func NewFields(blueprint *Blueprint, registry *Registry) *Fields {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Fields{
		blueprint: blueprint,
		registry:  registry,
		values:    map[string]any{},
		submitted: map[string]bool{},
	}
}

// Blueprint returns the underlying blueprint.
func (f *Fields) Blueprint() *Blueprint {
	return f.blueprint
}

func (f *Fields) clone() *Fields {
	return &Fields{
		blueprint: f.blueprint,
		registry:  f.registry,
		values:    maps.Clone(f.values),
		submitted: maps.Clone(f.submitted),
	}
}

// AddValues merges values for the blueprint's fields. Keys the blueprint does
// not define are ignored.
func (f *Fields) AddValues(values map[string]any) *Fields {
	c := f.clone()
	for _, field := range f.blueprint.AllFields() {
		if v, ok := values[field.Handle]; ok {
			c.values[field.Handle] = v
			c.submitted[field.Handle] = true
		}
	}
	return c
}

// Submitted reports whether a value was added for the field.
func (f *Fields) Submitted(handle string) bool {
	return f.submitted[handle]
}

// PreProcess prepares values for editing. Fields without a value start from
// their default.
func (f *Fields) PreProcess() *Fields {
	c := f.clone()
	for _, field := range f.blueprint.AllFields() {
		v := f.values[field.Handle]
		if v == nil {
			v = field.Default
		}
		c.values[field.Handle] = f.registry.Find(field.Type).PreProcess(v, field)
	}
	return c
}

// Process turns edited values into their stored form.
func (f *Fields) Process() *Fields {
	c := f.clone()
	for _, field := range f.blueprint.AllFields() {
		c.values[field.Handle] = f.registry.Find(field.Type).Process(f.values[field.Handle], field)
	}
	return c
}

// Values returns a value for every blueprint field, nil when unset.
func (f *Fields) Values() map[string]any {
	out := make(map[string]any, len(f.values))
	for _, field := range f.blueprint.AllFields() {
		out[field.Handle] = f.values[field.Handle]
	}
	return out
}

// Meta returns the fieldtype metadata for every field.
func (f *Fields) Meta() map[string]any {
	out := map[string]any{}
	for _, field := range f.blueprint.AllFields() {
		out[field.Handle] = f.registry.Find(field.Type).Meta(f.values[field.Handle], field)
	}
	return out
}
