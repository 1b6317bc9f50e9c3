package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stacklok/entries-server/internal/service"
)

type contextKey struct{ name string }

var (
	userContextKey   = &contextKey{"user"}
	claimsContextKey = &contextKey{"claims"}
)

// WithUser stores the acting user in the context.
func WithUser(ctx context.Context, user *service.ActingUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the acting user stored by the auth middleware.
func UserFromContext(ctx context.Context) (*service.ActingUser, bool) {
	user, ok := ctx.Value(userContextKey).(*service.ActingUser)
	return user, ok && user != nil
}

// WithClaims stores validated token claims in the context.
func WithClaims(ctx context.Context, claims jwt.MapClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext returns the validated token claims, if any.
func ClaimsFromContext(ctx context.Context) (jwt.MapClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(jwt.MapClaims)
	return claims, ok
}
