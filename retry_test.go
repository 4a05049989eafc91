package docdex_test

import (
	"context"
	"testing"
	"time"

	"github.com/docdex/docdex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicy_Do(t *testing.T) {
	t.Parallel()

	delays := []time.Duration{time.Millisecond, time.Millisecond}

	t.Run("succeeds first attempt", func(t *testing.T) {
		t.Parallel()
		calls := 0
		err := docdex.RetryPolicy{Delays: delays}.Do(context.Background(), func(ctx context.Context) error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries transient errors", func(t *testing.T) {
		t.Parallel()
		calls := 0
		err := docdex.RetryPolicy{Delays: delays}.Do(context.Background(), func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return docdex.Errorf(docdex.EUNAVAILABLE, "HTTP 503")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent error fails immediately", func(t *testing.T) {
		t.Parallel()
		calls := 0
		err := docdex.RetryPolicy{Delays: delays}.Do(context.Background(), func(ctx context.Context) error {
			calls++
			return docdex.Errorf(docdex.ENOTFOUND, "HTTP 404")
		})
		assert.Equal(t, docdex.ENOTFOUND, docdex.ErrorCode(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		t.Parallel()
		calls := 0
		err := docdex.RetryPolicy{Delays: delays}.Do(context.Background(), func(ctx context.Context) error {
			calls++
			return docdex.Errorf(docdex.EUNAVAILABLE, "HTTP 503")
		})
		assert.Equal(t, docdex.EUNAVAILABLE, docdex.ErrorCode(err))
		assert.Equal(t, len(delays)+1, calls)
	})

	t.Run("returns context error while waiting", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		err := docdex.RetryPolicy{Delays: []time.Duration{time.Minute}}.Do(ctx, func(ctx context.Context) error {
			cancel()
			return docdex.Errorf(docdex.EUNAVAILABLE, "HTTP 503")
		})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("custom classifier", func(t *testing.T) {
		t.Parallel()
		calls := 0
		policy := docdex.RetryPolicy{
			Delays:   delays,
			Classify: func(error) bool { return false },
		}
		err := policy.Do(context.Background(), func(ctx context.Context) error {
			calls++
			return docdex.Errorf(docdex.EUNAVAILABLE, "HTTP 503")
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}
