package authz

import (
	"slices"
	"strings"

	"github.com/stacklok/entries-server/internal/config"
)

// ExtractScopes extracts OAuth scopes from JWT claims.
// Handles both "scope" (space-separated string per RFC 6749) and
// "scp" (string array, common in Azure AD/Auth0) claim formats.
func ExtractScopes(claims map[string]any) []string {
	if scopeStr, ok := claims["scope"].(string); ok && scopeStr != "" {
		return strings.Fields(scopeStr)
	}

	if scpArr, ok := claims["scp"].([]any); ok {
		scopes := make([]string, 0, len(scpArr))
		for _, s := range scpArr {
			if str, ok := s.(string); ok {
				scopes = append(scopes, str)
			}
		}
		return scopes
	}

	return nil
}

// MapScopesToPermissions maps OAuth scopes to permissions using the
// configured scope mapping. The result is sorted and free of duplicates.
func MapScopesToPermissions(scopes []string, mapping []config.ScopeMappingEntry) []string {
	permissions := make([]string, 0)
	for _, entry := range mapping {
		if slices.Contains(scopes, entry.Scope) {
			permissions = append(permissions, entry.Permissions...)
		}
	}
	slices.Sort(permissions)
	return slices.Compact(permissions)
}

// MergePermissions returns the union of both permission lists, sorted.
func MergePermissions(have, granted []string) []string {
	merged := append(slices.Clone(have), granted...)
	slices.Sort(merged)
	return slices.Compact(merged)
}
