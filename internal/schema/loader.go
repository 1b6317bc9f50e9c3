package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

const (
	// FormatYAML is the format of .yaml and .yml blueprint files
	FormatYAML = "yaml"
	// FormatTOML is the format of .toml blueprint files
	FormatTOML = "toml"

	blueprintSchemaURL = "https://stacklok.dev/schemas/entries/blueprint.schema.json"
)

//go:embed blueprint.schema.json
var blueprintSchemaJSON []byte

var compileBlueprintSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(blueprintSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse blueprint schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(blueprintSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add blueprint schema: %w", err)
	}
	return c.Compile(blueprintSchemaURL)
})

// ParseBlueprint decodes a YAML or TOML blueprint document and validates it
// against the embedded JSON schema. An empty handle in the document is
// replaced with the given handle.
func ParseBlueprint(handle string, data []byte, format string) (*Blueprint, error) {
	raw := map[string]any{}
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML blueprint: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse TOML blueprint: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported blueprint format: %s", format)
	}

	if _, ok := raw["handle"]; !ok {
		raw["handle"] = handle
	}

	doc, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode blueprint: %w", err)
	}

	sch, err := compileBlueprintSchema()
	if err != nil {
		return nil, err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to decode blueprint: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return nil, fmt.Errorf("invalid blueprint %s: %w", handle, err)
	}

	normalizeListable(raw)
	doc, err = json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode blueprint: %w", err)
	}

	var bp Blueprint
	if err := json.Unmarshal(doc, &bp); err != nil {
		return nil, fmt.Errorf("failed to decode blueprint: %w", err)
	}
	return &bp, nil
}

// normalizeListable turns boolean listable settings into their string form.
func normalizeListable(raw map[string]any) {
	sections, _ := raw["sections"].([]any)
	for _, s := range sections {
		section, _ := s.(map[string]any)
		fields, _ := section["fields"].([]any)
		for _, f := range fields {
			field, _ := f.(map[string]any)
			if b, ok := field["listable"].(bool); ok {
				if b {
					field["listable"] = ListableTrue
				} else {
					field["listable"] = ListableFalse
				}
			}
		}
	}
}

// Repository holds blueprints per collection.
type Repository struct {
	mu         sync.RWMutex
	blueprints map[string]map[string]*Blueprint
}

// NewRepository creates an empty repository.
func NewRepository() *Repository {
	return &Repository{blueprints: map[string]map[string]*Blueprint{}}
}

// LoadDir loads blueprints laid out as {dir}/{collection}/{handle}.{yaml,yml,toml}.
func LoadDir(dir string) (*Repository, error) {
	repo := NewRepository()
	collections, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read blueprints directory: %w", err)
	}

	for _, c := range collections {
		if !c.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(dir, c.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read blueprints of %s: %w", c.Name(), err)
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			ext := filepath.Ext(f.Name())
			var format string
			switch strings.ToLower(ext) {
			case ".yaml", ".yml":
				format = FormatYAML
			case ".toml":
				format = FormatTOML
			default:
				continue
			}

			path := filepath.Join(dir, c.Name(), f.Name())
			data, err := os.ReadFile(filepath.Clean(path))
			if err != nil {
				return nil, fmt.Errorf("failed to read blueprint %s: %w", path, err)
			}
			bp, err := ParseBlueprint(strings.TrimSuffix(f.Name(), ext), data, format)
			if err != nil {
				return nil, fmt.Errorf("failed to load blueprint %s: %w", path, err)
			}
			repo.Add(c.Name(), bp)
			slog.Debug("Loaded blueprint", "collection", c.Name(), "blueprint", bp.Handle)
		}
	}
	return repo, nil
}

// Add registers a blueprint for a collection, replacing one with the same handle.
func (r *Repository) Add(collection string, bp *Blueprint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.blueprints[collection] == nil {
		r.blueprints[collection] = map[string]*Blueprint{}
	}
	r.blueprints[collection][bp.Handle] = bp
}

// Find returns the blueprint with the handle for the collection.
func (r *Repository) Find(collection, handle string) (*Blueprint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if bp, ok := r.blueprints[collection][handle]; ok {
		return bp, nil
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrBlueprintNotFound, collection, handle)
}

// Default returns the first of the preferred handles that exists. Without
// preferences, it falls back to the first visible blueprint by handle.
func (r *Repository) Default(collection string, preferred []string) (*Blueprint, error) {
	for _, handle := range preferred {
		if bp, err := r.Find(collection, handle); err == nil {
			return bp, nil
		}
	}
	if len(preferred) > 0 {
		return nil, fmt.Errorf("%w: none of %v for %s", ErrBlueprintNotFound, preferred, collection)
	}

	for _, bp := range r.List(collection) {
		if !bp.Hidden {
			return bp, nil
		}
	}
	return nil, fmt.Errorf("%w: %s has no blueprints", ErrBlueprintNotFound, collection)
}

// List returns the collection's blueprints sorted by handle.
func (r *Repository) List(collection string) []*Blueprint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handles := make([]string, 0, len(r.blueprints[collection]))
	for h := range r.blueprints[collection] {
		handles = append(handles, h)
	}
	sort.Strings(handles)
	out := make([]*Blueprint, 0, len(handles))
	for _, h := range handles {
		out = append(out, r.blueprints[collection][h])
	}
	return out
}

// Collections returns the collection handles that have blueprints.
func (r *Repository) Collections() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.blueprints))
	for c := range r.blueprints {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}
