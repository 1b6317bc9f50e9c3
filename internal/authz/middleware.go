package authz

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/stacklok/entries-server/internal/auth"
	"github.com/stacklok/entries-server/internal/config"
)

// ForbiddenResponse is the JSON body returned when authorization is denied.
type ForbiddenResponse struct {
	Error   string           `json:"error"`
	Message string           `json:"message"`
	Details *ForbiddenDetail `json:"details,omitempty"`
}

// ForbiddenDetail provides additional context for authorization denials,
// helping callers understand why access was denied and what is required.
type ForbiddenDetail struct {
	RequiredAction     string   `json:"required_action"`
	RequiredPermission string   `json:"required_permission,omitempty"`
	UserScopes         []string `json:"user_scopes,omitempty"`
	Hint               string   `json:"hint,omitempty"`
}

// ScopeMiddleware grants the acting user the permissions mapped from the
// OAuth scopes of their token. It requires the auth middleware to have
// stored the user and claims in the context. Requests without claims
// (anonymous mode, public paths) pass through unchanged.
func ScopeMiddleware(scopeMapping []config.ScopeMappingEntry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(scopeMapping) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			claims, hasClaims := auth.ClaimsFromContext(r.Context())
			if !ok || !hasClaims {
				next.ServeHTTP(w, r)
				return
			}

			scopes := ExtractScopes(claims)
			granted := MapScopesToPermissions(scopes, scopeMapping)
			if len(granted) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			merged := *user
			merged.Permissions = MergePermissions(user.Permissions, granted)

			slog.DebugContext(r.Context(), "Granted permissions from scopes",
				"subject", user.ID,
				"scopes", scopes,
				"permissions", granted,
			)

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), &merged)))
		})
	}
}

// NewForbiddenResponse builds the 403 body for a denial, with a hint
// naming the scopes that would grant the required permission.
func NewForbiddenResponse(denied *DeniedError, userScopes []string, scopeMapping []config.ScopeMappingEntry) ForbiddenResponse {
	return ForbiddenResponse{
		Error:   "forbidden",
		Message: "This action is unauthorized.",
		Details: &ForbiddenDetail{
			RequiredAction:     string(denied.Action),
			RequiredPermission: denied.Permission,
			UserScopes:         userScopes,
			Hint:               buildHint(denied.Permission, scopeMapping),
		},
	}
}

// WriteForbidden writes a 403 Forbidden JSON response for a denial.
func WriteForbidden(w http.ResponseWriter, r *http.Request, denied *DeniedError, scopeMapping []config.ScopeMappingEntry) {
	var scopes []string
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		scopes = ExtractScopes(claims)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	if err := json.NewEncoder(w).Encode(NewForbiddenResponse(denied, scopes, scopeMapping)); err != nil {
		slog.ErrorContext(r.Context(), "Failed to encode forbidden response", "error", err)
	}
}

// buildHint examines the scope mapping to find which scopes grant the
// required permission and returns a human-readable hint string.
func buildHint(permission string, scopeMapping []config.ScopeMappingEntry) string {
	var matchingScopes []string

	for _, entry := range scopeMapping {
		if slices.Contains(entry.Permissions, permission) {
			matchingScopes = append(matchingScopes, entry.Scope)
		}
	}

	if len(matchingScopes) == 0 {
		return "No configured scopes grant the required permission."
	}

	return "This operation requires one of the following scopes: " + strings.Join(matchingScopes, ", ")
}
