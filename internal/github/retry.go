package github

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-github/v57/github"
)

// maxRateLimitWait caps how long a single rate-limit response can make us wait
const maxRateLimitWait = time.Hour

// withRetry runs op, retrying only when GitHub reports a primary or secondary rate limit.
// Any other error is returned immediately.
func (c *Client) withRetry(ctx context.Context, op func() error) error {
	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}

		wait, limited := rateLimitWait(err)
		if !limited {
			return backoff.Permanent(err) // Non-retryable - stop immediately
		}

		slog.Warn("GitHub rate limit hit, backing off", "wait", wait, "error", err)
		if wait > 0 {
			if sleepErr := sleepContext(ctx, wait); sleepErr != nil {
				return backoff.Permanent(sleepErr)
			}
		}
		return err
	}, backoff.WithContext(c.newBackOff(), ctx))
}

// rateLimitWait reports whether err is a rate-limit error and how long GitHub asked us to wait
func rateLimitWait(err error) (time.Duration, bool) {
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return clampWait(abuseErr.GetRetryAfter()), true
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return clampWait(time.Until(rateErr.Rate.Reset.Time)), true
	}

	return 0, false
}

func clampWait(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if d > maxRateLimitWait {
		return maxRateLimitWait
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
