package docdex

import (
	"context"
	"time"
)

// RetryPolicy retries an operation with fixed backoff delays. One policy
// is shared by the fetcher, the embedder, and the store client; they
// differ only in their delays and in how errors classify as transient.
type RetryPolicy struct {
	// Delays between attempts. len(Delays)+1 total attempts.
	Delays []time.Duration

	// Classify reports whether an error is worth retrying.
	// Defaults to IsTransient.
	Classify func(error) bool
}

// DefaultRetryDelays returns the backoff delays used across the pipeline:
// 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// Do runs fn, retrying transient failures with the policy's delays.
// It returns the first permanent error, the last transient error once
// attempts are exhausted, or the context error if canceled while waiting.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	classify := p.Classify
	if classify == nil {
		classify = IsTransient
	}
	maxAttempts := len(p.Delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !classify(err) || attempt >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Delays[attempt]):
		}
	}

	return lastErr
}
