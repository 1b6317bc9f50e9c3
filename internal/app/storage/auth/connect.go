package auth

import (
	"context"
	"fmt"
	"net/url"

	"github.com/stacklok/entries-server/internal/app/storage/auth/aws"
	"github.com/stacklok/entries-server/internal/config"
)

// MigrationConnectionString returns a connection string with the password
// embedded, so that connections opened outside the pool (migrations) can
// authenticate. With dynamic authentication a token is signed and used as
// the password.
func MigrationConnectionString(ctx context.Context, cfg *config.DatabaseConfig, opts ...aws.Option) (string, error) {
	if cfg == nil {
		return "", fmt.Errorf("database configuration is required")
	}

	connStr, err := cfg.GetConnectionString()
	if err != nil {
		return "", err
	}
	if !Enabled(cfg) {
		return connStr, nil
	}

	src, err := aws.NewTokenSource(ctx, cfg, opts...)
	if err != nil {
		return "", err
	}
	token, err := src.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to resolve auth token for migrations: %w", err)
	}

	u, err := url.Parse(connStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse connection string: %w", err)
	}
	u.User = url.UserPassword(cfg.User, token)
	return u.String(), nil
}
