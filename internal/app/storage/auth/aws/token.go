// Package aws issues AWS RDS IAM authentication tokens for database connections.
package aws

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	"github.com/aws/aws-sdk-go-v2/feature/rds/auth"

	"github.com/stacklok/entries-server/internal/config"
)

const (
	imdsTimeout = 2 * time.Second

	// tokenTTL is shorter than the 15 minutes RDS accepts a token for
	tokenTTL = 10 * time.Minute
)

// RegionDetector resolves the region of the running workload
type RegionDetector func(ctx context.Context) (string, error)

// TokenBuilder signs a token for endpoint, region and user
type TokenBuilder func(ctx context.Context, endpoint, region, user string) (string, error)

// TokenSource hands out RDS IAM tokens, reusing a token until it is close
// to expiry.
type TokenSource struct {
	endpoint string
	region   string
	user     string
	build    TokenBuilder
	now      func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

// Option configures a TokenSource
type Option func(*sourceOptions)

type sourceOptions struct {
	detect RegionDetector
	build  TokenBuilder
	now    func() time.Time
}

// WithRegionDetector replaces the IMDS region lookup
func WithRegionDetector(detect RegionDetector) Option {
	return func(o *sourceOptions) {
		o.detect = detect
	}
}

// WithTokenBuilder replaces the SDK token signer
func WithTokenBuilder(build TokenBuilder) Option {
	return func(o *sourceOptions) {
		o.build = build
	}
}

// WithClock sets the time source used for token expiry
func WithClock(now func() time.Time) Option {
	return func(o *sourceOptions) {
		o.now = now
	}
}

// NewTokenSource creates a token source for the database. When no region is
// configured it is detected from the instance metadata service.
func NewTokenSource(ctx context.Context, cfg *config.DatabaseConfig, opts ...Option) (*TokenSource, error) {
	if cfg == nil || cfg.DynamicAuth == nil || cfg.DynamicAuth.AWSRDSIAM == nil {
		return nil, fmt.Errorf("AWS RDS IAM authentication is not configured")
	}

	o := &sourceOptions{
		detect: detectRegion,
		build:  buildToken,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	region := cfg.DynamicAuth.AWSRDSIAM.Region
	if region == "" {
		detected, err := o.detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to detect AWS region: %w", err)
		}
		region = detected
	}

	return &TokenSource{
		endpoint: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		region:   region,
		user:     cfg.User,
		build:    o.build,
		now:      o.now,
	}, nil
}

// Region returns the region tokens are signed for
func (s *TokenSource) Region() string {
	return s.region
}

// Token returns a valid token, signing a new one when the cached one expired
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.token != "" && now.Before(s.expires) {
		return s.token, nil
	}

	token, err := s.build(ctx, s.endpoint, s.region, s.user)
	if err != nil {
		return "", fmt.Errorf("failed to build authentication token: %w", err)
	}
	s.token = token
	s.expires = now.Add(tokenTTL)
	return token, nil
}

func detectRegion(ctx context.Context) (string, error) {
	client := imds.New(imds.Options{
		HTTPClient: &http.Client{Timeout: imdsTimeout},
	})
	out, err := client.GetRegion(ctx, &imds.GetRegionInput{})
	if err != nil {
		return "", fmt.Errorf("failed to get region from IMDS: %w", err)
	}
	return out.Region, nil
}

func buildToken(ctx context.Context, endpoint, region, user string) (string, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return "", fmt.Errorf("failed to load AWS config: %w", err)
	}
	return auth.BuildAuthToken(ctx, endpoint, region, user, awssdk.NewCredentialsCache(awsCfg.Credentials))
}
