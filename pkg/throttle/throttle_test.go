package throttle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (c *mapCounter) Increment(_ context.Context, key string, _ time.Duration) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = map[string]int64{}
	}
	c.counts[key]++
	return c.counts[key], nil
}

func (c *mapCounter) Get(_ context.Context, key string) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[key], nil
}

func TestParseRate(t *testing.T) {
	cases := map[string]Rate{
		"2/min":     {Requests: 2, Period: time.Minute},
		"100/day":   {Requests: 100, Period: 24 * time.Hour},
		"5/s":       {Requests: 5, Period: time.Second},
		" 10/Hour ": {Requests: 10, Period: time.Hour},
		"":          {},
		"none":      {},
	}
	for raw, want := range cases {
		got, err := ParseRate(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"abc", "0/min", "-1/min", "3/week", "3/"} {
		_, err := ParseRate(raw)
		assert.Error(t, err, raw)
	}
}

func at(hour, min, sec, ms int) time.Time {
	return time.Date(2030, 1, 1, hour, min, sec, ms*int(time.Millisecond), time.UTC)
}

func TestLimiterBlocksAfterQuotaWithinWindow(t *testing.T) {
	limiter := NewLimiter(&mapCounter{})
	rate := Rate{Requests: 2, Period: time.Minute}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, err := limiter.Allow(ctx, "anon", "10.0.0.1", rate, at(10, 0, 15, 0))
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}

	d, err := limiter.Allow(ctx, "anon", "10.0.0.1", rate, at(10, 0, 16, 0))
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, int64(3), d.Current)
	assert.Equal(t, int64(0), d.Previous)
	// next window, once three counted requests weigh no more than one
	assert.Equal(t, 84*time.Second, d.RetryAfter)
	assert.Equal(t, 84, d.RetryAfterSeconds())

	other, err := limiter.Allow(ctx, "anon", "10.0.0.2", rate, at(10, 0, 16, 0))
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestLimiterWindowEdgeDoesNotResetQuota(t *testing.T) {
	limiter := NewLimiter(&mapCounter{})
	rate := Rate{Requests: 2, Period: time.Minute}
	ctx := context.Background()

	steps := []struct {
		at      time.Time
		allowed bool
	}{
		{at(10, 0, 59, 0), true},
		{at(10, 0, 59, 500), true},
		{at(10, 1, 1, 0), false},
		{at(10, 1, 2, 0), false},
	}

	var last Decision
	for _, step := range steps {
		d, err := limiter.Allow(ctx, "user", "u1", rate, step.at)
		require.NoError(t, err)
		assert.Equal(t, step.allowed, d.Allowed, step.at.Format(time.StampMilli))
		last = d
	}

	assert.Equal(t, int64(2), last.Previous)
	assert.Equal(t, 88*time.Second, last.RetryAfter)

	d, err := limiter.Allow(ctx, "user", "u1", rate, at(10, 1, 2, 0).Add(last.RetryAfter))
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestLimiterPreviousWindowWeightFades(t *testing.T) {
	limiter := NewLimiter(&mapCounter{})
	rate := Rate{Requests: 3, Period: time.Minute}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := limiter.Allow(ctx, "user", "u1", rate, at(10, 0, 50, 0))
		require.NoError(t, err)
		require.True(t, d.Allowed)
	}

	// 3 * 50/60 + 1 is over the limit
	d, err := limiter.Allow(ctx, "user", "u1", rate, at(10, 1, 10, 0))
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 30*time.Second, d.RetryAfter)

	// 3 * 20/60 + 2 is exactly the limit
	d, err = limiter.Allow(ctx, "user", "u1", rate, at(10, 1, 40, 0))
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	// two windows later nothing is carried over
	for i := 0; i < 3; i++ {
		d, err = limiter.Allow(ctx, "user", "u2", rate, at(10, 0, 0, 0))
		require.NoError(t, err)
		require.True(t, d.Allowed)
	}
	d, err = limiter.Allow(ctx, "user", "u2", rate, at(10, 2, 0, 0))
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, int64(0), d.Previous)
}

func TestLimiterDisabledRateNeverCounts(t *testing.T) {
	counter := &mapCounter{}
	d, err := NewLimiter(counter).Allow(context.Background(), "user", "u", Rate{}, time.Now())
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Empty(t, counter.counts)
}

func TestLimiterReportsStoreErrors(t *testing.T) {
	limiter := NewLimiter(&mapCounter{err: errors.New("down")})
	d, err := limiter.Allow(context.Background(), "user", "u", Rate{Requests: 1, Period: time.Minute}, time.Now())
	assert.Error(t, err)
	assert.True(t, d.Allowed)
}

func TestKeyAndRetryRounding(t *testing.T) {
	assert.Equal(t, "throttle:user:abc:42", Key("user", "abc", 42))
	assert.Equal(t, 2, Decision{RetryAfter: 1500 * time.Millisecond}.RetryAfterSeconds())
}
