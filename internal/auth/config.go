package auth

import (
	"fmt"
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultPublicPaths bypass authentication regardless of configuration
var DefaultPublicPaths = []string{"/health", "/readiness", "/version"}

// PublicPathMatcher decides which request paths skip authentication.
// Plain entries match on segment boundaries, so /docs covers /docs/index.html
// but not /docsearch. Entries containing glob metacharacters are compiled
// with '/' as separator, so /api/v1/collections/*/blueprint only matches a
// single handle.
type PublicPathMatcher struct {
	prefixes []string
	patterns []glob.Glob
	all      bool
}

// NewPublicPathMatcher compiles the given entries.
func NewPublicPathMatcher(paths ...string) (*PublicPathMatcher, error) {
	m := &PublicPathMatcher{}
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.ContainsAny(p, "*?[{") {
			g, err := glob.Compile(normalize(p), '/')
			if err != nil {
				return nil, fmt.Errorf("invalid public path pattern %q: %w", p, err)
			}
			m.patterns = append(m.patterns, g)
			continue
		}
		clean := normalize(p)
		if clean == "/" {
			m.all = true
		}
		m.prefixes = append(m.prefixes, clean)
	}
	return m, nil
}

// Match reports whether requestPath is public. Paths carrying encoded
// separators or dots never match; the rest are cleaned before comparison so
// /health/../api is treated as /api.
func (m *PublicPathMatcher) Match(requestPath string) bool {
	if m == nil {
		return false
	}
	lower := strings.ToLower(requestPath)
	if strings.Contains(lower, "%2f") || strings.Contains(lower, "%2e") {
		return false
	}
	if m.all {
		return true
	}

	clean := normalize(requestPath)
	for _, prefix := range m.prefixes {
		if clean == prefix || strings.HasPrefix(clean, prefix+"/") {
			return true
		}
	}
	for _, g := range m.patterns {
		if g.Match(clean) {
			return true
		}
	}
	return false
}

func normalize(p string) string {
	return path.Clean("/" + p)
}
