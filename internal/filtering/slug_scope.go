package filtering

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/stacklok/entries-server/internal/service"
)

// validatePattern checks a glob pattern the way both the memory and the
// database backends will interpret it.
func validatePattern(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("empty pattern")
	}
	// filepath.Match catches malformed character classes
	if _, err := filepath.Match(pattern, "test"); err != nil {
		return err
	}
	if _, err := glob.Compile(pattern); err != nil {
		return fmt.Errorf("invalid glob pattern: %v", err)
	}
	return nil
}

// slugScope restricts entries by slug glob patterns.
//
// Logic:
// 1. Every exclude pattern adds a condition that the slug must not match
// 2. A single include pattern adds a condition that the slug must match it
// 3. Several include patterns are combined into one glob alternation
type slugScope struct{}

func (slugScope) Handle() string { return "slug" }
func (slugScope) Title() string  { return "Slug" }

func (slugScope) Apply(q *service.EntryQuery, values map[string]any) error {
	include := stringList(values["include"])
	if p, ok := values["pattern"].(string); ok && p != "" {
		include = append(include, p)
	}
	exclude := stringList(values["exclude"])
	if len(include) == 0 && len(exclude) == 0 {
		return fmt.Errorf("slug scope requires include or exclude patterns")
	}

	for _, pattern := range append(append([]string{}, include...), exclude...) {
		if err := validatePattern(pattern); err != nil {
			return fmt.Errorf("invalid slug pattern '%s': %w", pattern, err)
		}
	}

	switch len(include) {
	case 0:
	case 1:
		q.Where("slug", service.OpGlob, include[0])
	default:
		q.Where("slug", service.OpGlob, "{"+strings.Join(include, ",")+"}")
	}
	for _, pattern := range exclude {
		q.Where("slug", service.OpNotGlob, pattern)
	}
	return nil
}
