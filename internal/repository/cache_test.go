package repository

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"lingo_learn_client/pkg/kvstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func TestCacheReadWriteRoundTrip(t *testing.T) {
	c := NewCache[doc](kvstore.NewMemory(), "doc", time.Hour)
	ctx := context.Background()

	_, _, err := c.Read(ctx, "k")
	assert.Error(t, err)

	require.NoError(t, c.Write(ctx, "k", &doc{Name: "a", Value: 7}))

	got, fresh, err := c.Read(ctx, "k")
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, &doc{Name: "a", Value: 7}, got)
}

func TestCacheFreshnessWindow(t *testing.T) {
	c := NewCache[doc](kvstore.NewMemory(), "doc", time.Hour)
	ctx := context.Background()

	base := time.Now()
	c.now = func() time.Time { return base }
	require.NoError(t, c.Write(ctx, "k", &doc{Name: "a"}))

	c.now = func() time.Time { return base.Add(59 * time.Minute) }
	_, fresh, err := c.Read(ctx, "k")
	require.NoError(t, err)
	assert.True(t, fresh)

	// 过期后条目仍可读，只是不再新鲜
	c.now = func() time.Time { return base.Add(61 * time.Minute) }
	got, fresh, err := c.Read(ctx, "k")
	require.NoError(t, err)
	assert.False(t, fresh)
	assert.Equal(t, "a", got.Name)
}

func TestFetchFreshHitRevalidatesInBackground(t *testing.T) {
	c := NewCache[doc](kvstore.NewMemory(), "doc", time.Hour)
	ctx := context.Background()
	require.NoError(t, c.Write(ctx, "k", &doc{Value: 1}))

	var calls int32
	refresh := func(ctx context.Context) (*doc, error) {
		atomic.AddInt32(&calls, 1)
		return &doc{Value: 2}, nil
	}
	done := make(chan *doc, 1)
	onRevalidated := func(val *doc, err error) {
		require.NoError(t, err)
		done <- val
	}

	got, revalidating, err := c.Fetch(ctx, "k", false, refresh, onRevalidated)
	require.NoError(t, err)
	assert.True(t, revalidating)
	assert.Equal(t, 1, got.Value, "fresh hit returns the cached value immediately")

	select {
	case val := <-done:
		assert.Equal(t, 2, val.Value)
	case <-time.After(2 * time.Second):
		t.Fatal("background revalidation never completed")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// 后台结果已写穿
	got, fresh, err := c.Read(ctx, "k")
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, 2, got.Value)
}

func TestFetchForceSkipsCache(t *testing.T) {
	c := NewCache[doc](kvstore.NewMemory(), "doc", time.Hour)
	ctx := context.Background()
	require.NoError(t, c.Write(ctx, "k", &doc{Value: 1}))

	var calls int32
	refresh := func(ctx context.Context) (*doc, error) {
		atomic.AddInt32(&calls, 1)
		return &doc{Value: 9}, nil
	}

	got, revalidating, err := c.Fetch(ctx, "k", true, refresh, nil)
	require.NoError(t, err)
	assert.False(t, revalidating)
	assert.Equal(t, 9, got.Value)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchStaleReturnsStaleAlongsideError(t *testing.T) {
	c := NewCache[doc](kvstore.NewMemory(), "doc", time.Nanosecond)
	ctx := context.Background()
	require.NoError(t, c.Write(ctx, "k", &doc{Value: 1}))

	wantErr := errors.New("remote down")
	refresh := func(ctx context.Context) (*doc, error) { return nil, wantErr }

	got, _, err := c.Fetch(ctx, "k", false, refresh, nil)
	assert.ErrorIs(t, err, wantErr)
	require.NotNil(t, got, "stale value is handed back for the caller to fall back on")
	assert.Equal(t, 1, got.Value)
}

func TestFetchMissRefreshesForeground(t *testing.T) {
	c := NewCache[doc](kvstore.NewMemory(), "doc", time.Hour)
	ctx := context.Background()

	got, revalidating, err := c.Fetch(ctx, "k", false, func(ctx context.Context) (*doc, error) {
		return &doc{Value: 3}, nil
	}, nil)
	require.NoError(t, err)
	assert.False(t, revalidating)
	assert.Equal(t, 3, got.Value)

	cached, fresh, err := c.Read(ctx, "k")
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, 3, cached.Value)
}

func TestCorruptEntryIsAMiss(t *testing.T) {
	store := kvstore.NewMemory()
	c := NewCache[doc](store, "doc", time.Hour)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", []byte("not json")))

	_, _, err := c.Read(ctx, "k")
	assert.Error(t, err)

	got, _, err := c.Fetch(ctx, "k", false, func(ctx context.Context) (*doc, error) {
		return &doc{Value: 5}, nil
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Value)
}
