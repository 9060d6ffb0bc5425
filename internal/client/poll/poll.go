// Package poll waits for long running backend jobs by fetching on a fixed interval.
package poll

import (
	"context"
	"time"

	appErr "ojclient/pkg/errors"
	"ojclient/pkg/utils/logger"

	"go.uber.org/zap"
)

// DefaultInterval is the delay between two fetches.
const DefaultInterval = 500 * time.Millisecond

type options struct {
	interval    time.Duration
	maxAttempts int
}

// Option configures Until.
type Option func(*options)

// WithInterval sets the delay between fetches.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithMaxAttempts bounds the number of fetches; zero means unbounded.
func WithMaxAttempts(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxAttempts = n
		}
	}
}

// Until fetches now and then every interval until fetch returns a non-nil value, which
// ends the poll at once. A fetch error or ctx ending aborts the poll.
func Until[T any](ctx context.Context, fetch func(ctx context.Context) (*T, error), opts ...Option) (*T, error) {
	o := options{interval: DefaultInterval}
	for _, opt := range opts {
		opt(&o)
	}

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if v != nil {
			logger.Debug(ctx, "poll finished", zap.Int("attempts", attempt))
			return v, nil
		}
		if o.maxAttempts > 0 && attempt >= o.maxAttempts {
			return nil, appErr.Newf(appErr.PollExhausted, "no result after %d attempts", attempt).
				WithDetail("attempts", attempt)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
