package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryStoreIncrementIsAtomic(t *testing.T) {
	store := NewMemoryStore(logrus.New())
	defer store.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Increment(context.Background(), "k", time.Minute)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	n, err := store.Increment(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(51), n)
}

func TestMemoryStoreExpiresCounters(t *testing.T) {
	clock := &fakeClock{now: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := newMemoryStore(logrus.New(), clock.Now, time.Hour)
	defer store.Stop()

	ctx := context.Background()
	_, _ = store.Increment(ctx, "k", time.Minute)
	n, _ := store.Increment(ctx, "k", time.Minute)
	assert.Equal(t, int64(2), n)

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)
	got, _ = store.Get(ctx, "missing")
	assert.Equal(t, int64(0), got)

	clock.Advance(2 * time.Minute)
	got, _ = store.Get(ctx, "k")
	assert.Equal(t, int64(0), got)
	n, _ = store.Increment(ctx, "k", time.Minute)
	assert.Equal(t, int64(1), n)

	clock.Advance(2 * time.Minute)
	store.sweep()
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStoreTokenRegistry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := newMemoryStore(logrus.New(), clock.Now, time.Hour)
	defer store.Stop()

	ctx := context.Background()
	require.NoError(t, store.Register(ctx, "u1", "t1", time.Hour))

	ok, err := store.Exists(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = store.Exists(ctx, "u2", "t1")
	assert.False(t, ok)

	require.NoError(t, store.Revoke(ctx, "u1", "t1"))
	ok, _ = store.Exists(ctx, "u1", "t1")
	assert.False(t, ok)

	require.NoError(t, store.Register(ctx, "u1", "t2", time.Minute))
	clock.Advance(time.Hour)
	ok, _ = store.Exists(ctx, "u1", "t2")
	assert.False(t, ok)
}

func TestMemoryStoreStopIsIdempotent(t *testing.T) {
	store := NewMemoryStore(logrus.New())
	store.Stop()
	store.Stop()
}
