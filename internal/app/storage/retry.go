package storage

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// connectRetryWindow bounds how long startup waits for a backing service.
var connectRetryWindow = 30 * time.Second

// waitReachable calls ping until it succeeds or the retry window elapses.
func waitReachable(ctx context.Context, name string, ping func(context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 5 * time.Second

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		if err := ping(ctx); err != nil {
			if ctx.Err() != nil {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, err
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(connectRetryWindow),
		backoff.WithNotify(func(err error, next time.Duration) {
			slog.WarnContext(ctx, "Backing service not reachable, retrying",
				"service", name, "error", err, "retry_in", next)
		}),
	)
	return err
}
