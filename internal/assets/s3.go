package assets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sony/gobreaker"

	"github.com/stacklok/entries-server/internal/service"
)

// HeadObjectAPI is the part of the S3 client the container needs.
type HeadObjectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Container serves assets from a bucket prefix. Lookups go through a
// circuit breaker so an unavailable bucket does not stall every edit view.
type S3Container struct {
	client  HeadObjectAPI
	bucket  string
	prefix  string
	baseURL string
	breaker *gobreaker.CircuitBreaker
}

// S3Option configures an S3Container.
type S3Option func(*gobreaker.Settings)

// WithBreakerTimeout sets how long the breaker stays open before probing again.
func WithBreakerTimeout(d time.Duration) S3Option {
	return func(s *gobreaker.Settings) {
		s.Timeout = d
	}
}

// WithBreakerThreshold sets the consecutive failures that open the breaker.
func WithBreakerThreshold(n uint32) S3Option {
	return func(s *gobreaker.Settings) {
		s.ReadyToTrip = func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= n
		}
	}
}

// NewS3Container creates a container over bucket/prefix.
func NewS3Container(client HeadObjectAPI, bucket, prefix, baseURL string, opts ...S3Option) (*S3Container, error) {
	if client == nil {
		return nil, fmt.Errorf("s3 client is required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	settings := gobreaker.Settings{
		Name:        "assets-s3-" + bucket,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, service.ErrAssetNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Info("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
	for _, opt := range opts {
		opt(&settings)
	}

	return &S3Container{
		client:  client,
		bucket:  bucket,
		prefix:  strings.Trim(prefix, "/"),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		breaker: gobreaker.NewCircuitBreaker(settings),
	}, nil
}

// Stat looks up the object metadata with HeadObject.
func (c *S3Container) Stat(ctx context.Context, p string) (*service.Asset, error) {
	key := strings.TrimPrefix(path.Join(c.prefix, path.Clean("/"+p)), "/")

	res, err := c.breaker.Execute(func() (interface{}, error) {
		out, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			var notFound *types.NotFound
			var noSuchKey *types.NoSuchKey
			if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
				return nil, fmt.Errorf("%w: %s", service.ErrAssetNotFound, p)
			}
			return nil, fmt.Errorf("failed to head object %s: %w", key, err)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	out := res.(*s3.HeadObjectOutput)
	asset := &service.Asset{
		URL:      c.baseURL + "/" + (&url.URL{Path: p}).EscapedPath(),
		Size:     aws.ToInt64(out.ContentLength),
		MimeType: aws.ToString(out.ContentType),
	}
	if out.LastModified != nil {
		asset.LastModified = out.LastModified.UTC()
	}
	return asset, nil
}

// State returns the breaker state.
func (c *S3Container) State() gobreaker.State {
	return c.breaker.State()
}
