package ai

import (
	"context"
	"log/slog"
	"time"
)

// Retryer retries a generation call when the provider signals a rate limit.
// Attempt n (counting from zero) that fails with a rate-limit error waits
// BaseDelay * 2^n before the next try. Any other error, or running out of
// attempts, propagates immediately with no further wait.
type Retryer struct {
	Attempts  int
	BaseDelay time.Duration

	// Sleep waits for d or until ctx is done. Overridable in tests.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryer returns the default policy: 3 attempts, 1s base delay.
func NewRetryer() Retryer {
	return Retryer{Attempts: 3, BaseDelay: time.Second}
}

// Do invokes fn under the retry policy and returns its result.
func (r Retryer) Do(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	attempts := r.Attempts
	if attempts <= 0 {
		attempts = 3
	}
	base := r.BaseDelay
	if base <= 0 {
		base = time.Second
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !IsRateLimit(err) || attempt == attempts-1 {
			return "", err
		}
		wait := base << uint(attempt)
		slog.Warn("quota exceeded, retrying", "attempt", attempt, "wait", wait.String())
		if err := sleep(ctx, wait); err != nil {
			return "", err
		}
	}
	return "", lastErr
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
