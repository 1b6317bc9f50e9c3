package auth

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/stacklok/entries-server/internal/config"
)

// validatorFactory creates token validators from configuration.
type validatorFactory func(cfg *config.JWTConfig) (tokenValidatorInterface, error)

// DefaultValidatorFactory builds the golang-jwt based validator.
var DefaultValidatorFactory validatorFactory = func(cfg *config.JWTConfig) (tokenValidatorInterface, error) {
	return newJWTValidator(cfg)
}

// NewAuthMiddleware creates authentication middleware based on config.
// Public paths (the defaults plus the configured ones) bypass it.
func NewAuthMiddleware(cfg *config.AuthConfig, factory validatorFactory) (func(http.Handler) http.Handler, error) {
	if cfg == nil {
		cfg = &config.AuthConfig{}
	}

	var mw func(http.Handler) http.Handler
	switch cfg.Mode {
	case config.AuthModeAnonymous, "":
		user := cfg.AnonymousUser.ActingUser()
		slog.Info("auth: anonymous mode", "user", user.ID, "super", user.Super)
		mw = anonymousMiddleware(user)
	case config.AuthModeJWT:
		validator, err := factory(cfg.JWT)
		if err != nil {
			return nil, fmt.Errorf("failed to create token validator: %w", err)
		}
		var realm string
		if cfg.JWT != nil {
			realm = cfg.JWT.Realm
		}
		slog.Info("auth: jwt mode", "issuer", issuerOf(cfg.JWT))
		mw = newBearerMiddleware(validator, realm).Middleware
	default:
		return nil, fmt.Errorf("unsupported auth mode: %s", cfg.Mode)
	}

	public, err := NewPublicPathMatcher(append(append([]string{}, DefaultPublicPaths...), cfg.PublicPaths...)...)
	if err != nil {
		return nil, err
	}
	return WrapWithPublicPaths(mw, public), nil
}

func issuerOf(cfg *config.JWTConfig) string {
	if cfg == nil {
		return ""
	}
	return cfg.Issuer
}
