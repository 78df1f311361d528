package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mikey/news-credibility/internal/analysis"
	"github.com/mikey/news-credibility/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache(t *testing.T) (*MemoryCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMemoryCache(zap.NewNop(), 0)
	c.now = clock.Now
	t.Cleanup(c.Stop)
	return c, clock
}

func entry(key string, expires time.Time) *core.CacheEntry {
	return &core.CacheEntry{
		Key:       key,
		Verdict:   analysis.VerdictResult{Prediction: analysis.PredictionFake, Confidence: 81},
		Model:     core.BuiltInModel(),
		ExpiresAt: expires,
	}
}

func TestMemoryCache_GetSetDelete(t *testing.T) {
	c, clock := newTestCache(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, c.Set(ctx, entry("k", clock.Now().Add(5*time.Minute))))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, analysis.PredictionFake, got.Verdict.Prediction)
	assert.Equal(t, 81, got.Verdict.Confidence)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c, clock := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("short", clock.Now().Add(time.Minute))))
	require.NoError(t, c.Set(ctx, entry("long", clock.Now().Add(5*time.Minute))))

	clock.Advance(time.Minute)
	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, core.ErrNotFound, "an entry is expired at its deadline")

	_, err = c.Get(ctx, "long")
	assert.NoError(t, err)

	assert.Equal(t, 2, c.Len())
	require.NoError(t, c.Cleanup(ctx))
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCache_BackgroundCleanup(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), 10*time.Millisecond)
	defer c.Stop()

	require.NoError(t, c.Set(context.Background(), entry("stale", time.Now().Add(-time.Second))))

	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestMemoryCache_StopIsIdempotent(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	c.Stop()
	assert.NotPanics(t, c.Stop)
}
