// Package auth provides authentication middleware for the entries API server.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/stacklok/entries-server/internal/service"
)

// RFC 6750 Section 3 error codes
const (
	// errorCodeInvalidRequest indicates the request is missing a required parameter,
	// includes an unsupported parameter or parameter value, or is otherwise malformed.
	errorCodeInvalidRequest = "invalid_request"

	// errorCodeInvalidToken indicates the access token provided is expired, revoked,
	// malformed, or invalid for other reasons.
	errorCodeInvalidToken = "invalid_token"
)

// defaultRealm is the default protection space identifier
const defaultRealm = "entries"

var (
	errMissingAuthorization = errors.New("authorization header is missing")
	errNotBearer            = errors.New("authorization header is not a bearer token")
	errEmptyToken           = errors.New("bearer token is empty")
)

// bearerMiddleware authenticates requests with a bearer token.
type bearerMiddleware struct {
	validator tokenValidatorInterface
	realm     string
}

func newBearerMiddleware(validator tokenValidatorInterface, realm string) *bearerMiddleware {
	if realm == "" {
		realm = defaultRealm
	}
	return &bearerMiddleware{validator: validator, realm: realm}
}

// Middleware returns an HTTP middleware function that performs authentication.
// The acting user and the token claims are stored in the request context.
func (m *bearerMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token, err := extractBearerToken(r)
		if err != nil {
			slog.WarnContext(ctx, "Token extraction failed",
				"error", err,
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path)
			m.writeError(w, http.StatusUnauthorized, errorCodeInvalidRequest, "missing or malformed authorization header")
			return
		}

		claims, err := m.validator.ValidateToken(ctx, token)
		if err != nil {
			slog.WarnContext(ctx, "Token validation failed",
				"error", err,
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path)
			m.writeError(w, http.StatusUnauthorized, errorCodeInvalidToken, "token validation failed")
			return
		}

		user, err := UserFromClaims(claims)
		if err != nil {
			slog.WarnContext(ctx, "Token claims rejected",
				"error", err,
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path)
			m.writeError(w, http.StatusUnauthorized, errorCodeInvalidToken, "token claims are invalid")
			return
		}

		slog.DebugContext(ctx, "Authentication successful",
			"subject", user.ID,
			"remote_addr", r.RemoteAddr,
			"path", r.URL.Path)

		ctx = WithClaims(WithUser(ctx, user), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractBearerToken reads the token from the Authorization header.
func extractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errMissingAuthorization
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", errNotBearer
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errEmptyToken
	}
	return token, nil
}

// sanitizeHeaderValue removes characters that could enable header injection attacks.
// This includes newlines, carriage returns, and unescaped quotes.
func sanitizeHeaderValue(s string) string {
	if !strings.ContainsAny(s, "\r\n\"") {
		return s
	}
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	// Escape quotes for use in quoted-string (RFC 7230)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

// writeError writes a JSON error response with RFC 6750 compliant WWW-Authenticate header.
// The errCode parameter should be one of the RFC 6750 error codes (invalid_request, invalid_token).
func (m *bearerMiddleware) writeError(w http.ResponseWriter, status int, errCode, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Bearer realm="%s", error="%s", error_description="%s"`,
		sanitizeHeaderValue(m.realm), errCode, sanitizeHeaderValue(description)))
	w.WriteHeader(status)

	resp := struct {
		Error string `json:"error"`
	}{
		Error: description,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}

// anonymousMiddleware attaches the anonymous user to every request.
func anonymousMiddleware(user *service.ActingUser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WrapWithPublicPaths wraps an auth middleware so requests matched by public
// bypass it and go straight to the next handler.
func WrapWithPublicPaths(
	authMw func(http.Handler) http.Handler,
	public *PublicPathMatcher,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		authWrappedNext := authMw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if public.Match(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			authWrappedNext.ServeHTTP(w, r)
		})
	}
}
