package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicPathMatcher_Match(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		paths []string
		path  string
		want  bool
	}{
		{"exact prefix", []string{"/health"}, "/health", true},
		{"nested under prefix", []string{"/docs"}, "/docs/api/v1", true},
		{"trailing slash", []string{"/health"}, "/health/", true},
		{"no match", []string{"/health"}, "/api/v1/collections", false},
		{"empty matcher", nil, "/health", false},
		{"blank entries ignored", []string{"", "  "}, "/", false},
		{"prefix respects segment boundary", []string{"/health"}, "/healthcheck", false},
		{"case sensitive", []string{"/health"}, "/Health", false},
		{"traversal out of prefix", []string{"/health"}, "/health/../api/v1/collections", false},
		{"traversal inside prefix", []string{"/docs"}, "/docs/v1/../v2", true},
		{"double slash", []string{"/health"}, "//health", true},
		{"encoded separator", []string{"/docs"}, "/docs/..%2f..%2fapi", false},
		{"encoded dot", []string{"/docs"}, "/docs/%2E%2E/api", false},
		{"root makes everything public", []string{"/"}, "/api/v1/collections/pages/entries", true},
		{"configured without leading slash", []string{"docs"}, "/docs/index.html", true},
		{"glob single segment", []string{"/api/v1/collections/*/blueprint"}, "/api/v1/collections/pages/blueprint", true},
		{"glob does not cross segments", []string{"/api/v1/collections/*/blueprint"}, "/api/v1/collections/a/b/blueprint", false},
		{"glob super wildcard", []string{"/assets/**"}, "/assets/img/logo.png", true},
		{"glob alternatives", []string{"/{health,version}"}, "/version", true},
		{"glob after traversal", []string{"/assets/**"}, "/assets/../api/v1/collections", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, err := NewPublicPathMatcher(tt.paths...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Match(tt.path), "path=%q, paths=%v", tt.path, tt.paths)
		})
	}
}

func TestNewPublicPathMatcher_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := NewPublicPathMatcher("/docs/[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid public path pattern")
}

func TestPublicPathMatcher_Nil(t *testing.T) {
	t.Parallel()

	var m *PublicPathMatcher
	assert.False(t, m.Match("/health"))
}
