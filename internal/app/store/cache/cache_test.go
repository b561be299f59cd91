package cache_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/learnportal/internal/app/store/cache"
	"github.com/dalemusser/learnportal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memCache is a map-backed Cache for exercising Remember without Redis.
type memCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	sets   int
}

func newMem() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) Get(_ context.Context, k string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.data[k], nil
}

func (m *memCache) Set(_ context.Context, k string, v []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.data[k] = v
	return nil
}

func (m *memCache) Delete(_ context.Context, k string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[k]
	delete(m.data, k)
	return ok, nil
}

func (m *memCache) Health(context.Context) error { return nil }

type course struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func TestRemember_LoadsOnceThenHits(t *testing.T) {
	c := newMem()
	calls := 0
	load := func(context.Context) ([]course, error) {
		calls++
		return []course{{ID: "1", Title: "Algebra"}}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := cache.Remember(context.Background(), c, zap.NewNop(), "featured", time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, []course{{ID: "1", Title: "Algebra"}}, got)
	}
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c.sets)
}

func TestRemember_LoadErrorNotCached(t *testing.T) {
	c := newMem()
	boom := errors.New("api down")

	_, err := cache.Remember(context.Background(), c, nil, "featured", time.Minute, func(context.Context) ([]course, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, c.data)
}

func TestRemember_CacheFailureFallsThrough(t *testing.T) {
	c := newMem()
	c.getErr = errors.New("redis unreachable")

	got, err := cache.Remember(context.Background(), c, nil, "k", time.Minute, func(context.Context) (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}

func TestRemember_UndecodableEntryReloads(t *testing.T) {
	c := newMem()
	c.data["k"] = []byte("{not json")

	got, err := cache.Remember(context.Background(), c, nil, "k", time.Minute, func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, []byte("42"), c.data["k"])
}

func TestNoop(t *testing.T) {
	var c cache.Cache = cache.Noop{}
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	b, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestRedis_SetGetDelete(t *testing.T) {
	client, prefix := testutil.SetupTestRedis(t)
	c := cache.NewRedis(client, prefix)
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "featured", []byte(`[1,2]`), time.Minute))
		b, err := c.Get(ctx, "featured")
		require.NoError(t, err)
		assert.Equal(t, []byte(`[1,2]`), b)

		ttl := client.TTL(ctx, prefix+"featured").Val()
		assert.True(t, ttl > 0 && ttl <= time.Minute)
	})

	t.Run("miss", func(t *testing.T) {
		b, err := c.Get(ctx, "absent")
		require.NoError(t, err)
		assert.Nil(t, b)
	})

	t.Run("delete", func(t *testing.T) {
		ok, err := c.Delete(ctx, "featured")
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = c.Delete(ctx, "featured")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("empty key", func(t *testing.T) {
		_, err := c.Get(ctx, "")
		assert.ErrorIs(t, err, cache.ErrEmptyKey)
	})

	assert.NoError(t, c.Health(ctx))
}
