package fetch

import (
	"context"
	"math/rand"
	"time"
)

// RetryPolicy controls how transient fetch failures are retried.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// Backoff is the delay before the first retry. Each further retry
	// doubles it.
	Backoff time.Duration

	// MaxBackoff caps the delay between retries.
	MaxBackoff time.Duration

	// Jitter is the fraction of the backoff randomized in both
	// directions. Zero produces deterministic delays, which tests
	// rely on.
	Jitter float64
}

// DefaultRetryPolicy returns the retry defaults used by the engine.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 4,
		Backoff:     time.Second,
		MaxBackoff:  30 * time.Second,
		Jitter:      0.25,
	}
}

// backoffFor computes the delay after the given failed attempt,
// counting from one. Jitter prevents synchronized retries when many
// fetches fail at once against the same host.
func (p RetryPolicy) backoffFor(attempt int) time.Duration {
	multiplier := 1.0
	for i := 1; i < attempt; i++ {
		multiplier *= 2
	}

	backoff := time.Duration(float64(p.Backoff) * multiplier)
	if p.MaxBackoff > 0 && backoff > p.MaxBackoff {
		backoff = p.MaxBackoff
	}

	if p.Jitter > 0 {
		jitter := float64(backoff) * p.Jitter * (rand.Float64()*2 - 1)
		backoff += time.Duration(jitter)
	}

	return backoff
}

// SleepFunc waits for the given duration or until the context is done,
// whichever comes first. Tests substitute a recording implementation so
// retry timing can be asserted without real delays.
type SleepFunc func(ctx context.Context, d time.Duration) error

// defaultSleep waits with a timer while honoring cancellation.
func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
