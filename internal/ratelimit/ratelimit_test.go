package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleRateLimiterFirstCallIsImmediate(t *testing.T) {
	limiter := NewSimpleRateLimiter(time.Second, 2*time.Second)

	start := time.Now()
	err := limiter.Wait(context.Background())

	require.NoError(t, err)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestSimpleRateLimiterEnforcesGap(t *testing.T) {
	limiter := NewSimpleRateLimiter(50*time.Millisecond, 50*time.Millisecond)

	require.NoError(t, limiter.Wait(context.Background()))

	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background()))

	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestSimpleRateLimiterHonorsContext(t *testing.T) {
	limiter := NewSimpleRateLimiter(time.Minute, time.Minute)

	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSetDelayChangesGap(t *testing.T) {
	limiter := NewSimpleRateLimiter(time.Minute, time.Minute)
	limiter.SetDelay(10*time.Millisecond, 10*time.Millisecond)

	require.NoError(t, limiter.Wait(context.Background()))

	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background()))

	assert.Less(t, time.Since(start), 100*time.Millisecond)
}
