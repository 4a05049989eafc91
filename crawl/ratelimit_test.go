package crawl_test

import (
	"context"
	"testing"
	"time"

	"github.com/docdex/docdex/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainLimiter_FirstRequestImmediate(t *testing.T) {
	t.Parallel()

	limiter := crawl.NewDomainLimiter(1.0)

	start := time.Now()
	err := limiter.Wait(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestDomainLimiter_SpacesRequestsWithinHost(t *testing.T) {
	t.Parallel()

	limiter := crawl.NewDomainLimiter(20.0) // 50ms between requests

	ctx := context.Background()
	require.NoError(t, limiter.Wait(ctx, "example.com"))

	start := time.Now()
	require.NoError(t, limiter.Wait(ctx, "example.com"))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestDomainLimiter_HostsAreIndependent(t *testing.T) {
	t.Parallel()

	limiter := crawl.NewDomainLimiter(1.0)

	ctx := context.Background()
	require.NoError(t, limiter.Wait(ctx, "a.example.com"))

	start := time.Now()
	require.NoError(t, limiter.Wait(ctx, "b.example.com"))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestDomainLimiter_ContextCancellation(t *testing.T) {
	t.Parallel()

	limiter := crawl.NewDomainLimiter(0.1) // 10s between requests

	ctx := context.Background()
	require.NoError(t, limiter.Wait(ctx, "example.com"))

	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.Error(t, limiter.Wait(ctx, "example.com"))
}
