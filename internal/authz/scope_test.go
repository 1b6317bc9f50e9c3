package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stacklok/entries-server/internal/config"
)

func TestExtractScopes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		claims map[string]any
		want   []string
	}{
		{
			name:   "scope claim as space-separated string",
			claims: map[string]any{"scope": "cms:read cms:write"},
			want:   []string{"cms:read", "cms:write"},
		},
		{
			name:   "scope claim with multiple spaces between scopes",
			claims: map[string]any{"scope": "cms:read   cms:write"},
			want:   []string{"cms:read", "cms:write"},
		},
		{
			name:   "scp claim as array of strings",
			claims: map[string]any{"scp": []any{"cms:read", 42, "cms:write"}},
			want:   []string{"cms:read", "cms:write"},
		},
		{
			name:   "scope claim takes precedence over scp",
			claims: map[string]any{"scope": "cms:read", "scp": []any{"cms:admin"}},
			want:   []string{"cms:read"},
		},
		{
			name:   "empty scope string falls back to scp",
			claims: map[string]any{"scope": "", "scp": []any{"cms:admin"}},
			want:   []string{"cms:admin"},
		},
		{
			name:   "no scope claims",
			claims: map[string]any{"sub": "user"},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExtractScopes(tt.claims))
		})
	}
}

func TestMapScopesToPermissions(t *testing.T) {
	t.Parallel()

	mapping := []config.ScopeMappingEntry{
		{Scope: "cms:read", Permissions: []string{"view blog entries", "view pages entries"}},
		{Scope: "cms:write", Permissions: []string{"edit blog entries", "view blog entries"}},
	}

	tests := []struct {
		name   string
		scopes []string
		want   []string
	}{
		{
			name:   "single scope",
			scopes: []string{"cms:read"},
			want:   []string{"view blog entries", "view pages entries"},
		},
		{
			name:   "overlapping scopes are deduplicated",
			scopes: []string{"cms:write", "cms:read"},
			want:   []string{"edit blog entries", "view blog entries", "view pages entries"},
		},
		{
			name:   "unknown scope",
			scopes: []string{"other"},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MapScopesToPermissions(tt.scopes, mapping))
		})
	}
}

func TestMergePermissions(t *testing.T) {
	t.Parallel()

	have := []string{"view blog entries"}
	merged := MergePermissions(have, []string{"edit blog entries", "view blog entries"})
	assert.Equal(t, []string{"edit blog entries", "view blog entries"}, merged)
	assert.Equal(t, []string{"view blog entries"}, have, "input must not be modified")
}

func TestPermission(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "edit blog entries", Permission("update", "blog"))
	assert.Equal(t, "create blog entries", Permission("store", "blog"))
	assert.Equal(t, "delete pages entries", Permission("delete", "pages"))
	assert.Equal(t, "edit other authors blog entries", OtherAuthorsPermission("blog"))
	assert.Len(t, CollectionPermissions("blog"), 6)
}
