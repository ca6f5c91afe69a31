package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/mitti-app/backend-regi/internal/ratelimit"
)

func TestAllowCountsDownAndBlocks(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l := ratelimit.Limiter{Client: client, Prefix: "rl:calc"}
	ctx := context.Background()

	first, err := l.Allow(ctx, "10.0.0.9", time.Minute, 2)
	require.NoError(t, err)
	require.True(t, first.Allowed)
	require.Equal(t, 1, first.Remaining)

	second, err := l.Allow(ctx, "10.0.0.9", time.Minute, 2)
	require.NoError(t, err)
	require.True(t, second.Allowed)
	require.Equal(t, 0, second.Remaining)

	third, err := l.Allow(ctx, "10.0.0.9", time.Minute, 2)
	require.NoError(t, err)
	require.False(t, third.Allowed)
	require.Equal(t, 0, third.Remaining)
	require.False(t, third.ResetAt.IsZero())

	// Another caller keeps its own window.
	other, err := l.Allow(ctx, "10.0.0.10", time.Minute, 2)
	require.NoError(t, err)
	require.True(t, other.Allowed)
}

func TestAllowUnconfiguredAdmits(t *testing.T) {
	var l ratelimit.Limiter
	d, err := l.Allow(context.Background(), "anyone", time.Minute, 5)
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 5, d.Remaining)
}
