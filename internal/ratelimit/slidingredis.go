package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Limiter throttles calculation requests with a sliding window kept in a
// Redis sorted set per caller. Each request becomes a member scored by
// its arrival time; members older than the window are dropped before the
// set is counted, so the limit follows the caller's real request rate
// instead of resetting on a fixed boundary.
type Limiter struct {
	Client *redis.Client
	Prefix string
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Allow records one request under key and reports whether it fits inside
// the window. An unconfigured limiter admits everything.
func (l Limiter) Allow(ctx context.Context, key string, window time.Duration, max int) (Decision, error) {
	resetAt := time.Now().Add(window)
	if l.Client == nil || max <= 0 || window <= 0 {
		return Decision{Allowed: true, Remaining: max, ResetAt: resetAt}, nil
	}

	now := time.Now()
	bucket := l.bucket(key)
	oldest := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	var count *redis.IntCmd
	_, err := l.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, bucket, "0", oldest)
		pipe.ZAdd(ctx, bucket, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
		count = pipe.ZCard(ctx, bucket)
		pipe.Expire(ctx, bucket, window)
		return nil
	})
	if err != nil {
		return Decision{ResetAt: resetAt}, err
	}

	seen := int(count.Val())
	d := Decision{
		Allowed:   seen <= max,
		Remaining: max - seen,
		ResetAt:   resetAt,
	}
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	return d, nil
}

func (l Limiter) bucket(key string) string {
	prefix := l.Prefix
	if prefix == "" {
		prefix = "rl"
	}
	return prefix + ":" + key
}
