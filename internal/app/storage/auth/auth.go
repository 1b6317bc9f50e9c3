// Package auth provides dynamic database authentication.
package auth

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/stacklok/entries-server/internal/app/storage/auth/aws"
	"github.com/stacklok/entries-server/internal/config"
)

// BeforeConnectFunc sets credentials on a connection before it is opened
type BeforeConnectFunc func(ctx context.Context, connConfig *pgx.ConnConfig) error

// Enabled reports whether the database uses dynamic authentication
func Enabled(cfg *config.DatabaseConfig) bool {
	return cfg != nil && cfg.DynamicAuth != nil && cfg.DynamicAuth.AWSRDSIAM != nil
}

// NewBeforeConnect returns a pool hook that sets a fresh token as the
// password of each new connection. It returns nil when dynamic
// authentication is not configured.
func NewBeforeConnect(ctx context.Context, cfg *config.DatabaseConfig, opts ...aws.Option) (BeforeConnectFunc, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration is required")
	}
	if !Enabled(cfg) {
		return nil, nil
	}

	src, err := aws.NewTokenSource(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, connConfig *pgx.ConnConfig) error {
		token, err := src.Token(ctx)
		if err != nil {
			return err
		}
		connConfig.Password = token
		return nil
	}, nil
}
