package redis

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/card-workbench/internal/domain"
)

// newTestClient connects to REDIS_TEST_ADDR or skips
func newTestClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	c := Wrap(goredis.NewClient(&goredis.Options{Addr: addr, DB: 15}))
	require.NoError(t, c.Ping(context.Background()))
	t.Cleanup(func() {
		c.rdb.FlushDB(context.Background())
		c.Close()
	})
	return c
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "corpus:postgres", Key("postgres"))

	window := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "ratelimit:user:7:1714564800", windowKey("user:7", window))
}

func TestCorpusCacheDefaultsTTL(t *testing.T) {
	assert.Equal(t, defaultCorpusTTL, NewCorpusCache(nil, 0).ttl)
	assert.Equal(t, time.Minute, NewCorpusCache(nil, time.Minute).ttl)
}

func TestCorpusCacheRoundTrip(t *testing.T) {
	client := newTestClient(t)
	cache := NewCorpusCache(client, time.Minute)
	ctx := context.Background()

	miss, err := cache.Get(ctx, "api")
	require.NoError(t, err)
	assert.Nil(t, miss)

	corpus := &Corpus{
		Domains: []domain.Domain{{ID: 1, Code: "FIN"}},
		Cards:   []domain.Card{{ID: 5, Title: "Budget", Status: "active"}},
	}
	require.NoError(t, cache.Set(ctx, "api", corpus))
	require.NoError(t, cache.Set(ctx, "sqlite", corpus))

	hit, err := cache.Get(ctx, "api")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "Budget", hit.Cards[0].Title)

	require.NoError(t, cache.Invalidate(ctx, "api"))
	miss, err = cache.Get(ctx, "api")
	require.NoError(t, err)
	assert.Nil(t, miss)

	deleted, err := cache.FlushAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestRateLimiter(t *testing.T) {
	client := newTestClient(t)
	limiter := NewRateLimiter(client, 2, 1)
	fixed := time.Date(2024, 5, 1, 12, 0, 30, 0, time.UTC)
	limiter.now = func() time.Time { return fixed }
	ctx := context.Background()

	for i, wantRemaining := range []int{2, 1, 0} {
		allowed, remaining, reset, err := limiter.Allow(ctx, "ip:1")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i)
		assert.Equal(t, wantRemaining, remaining)
		assert.Equal(t, fixed.Truncate(time.Minute).Add(time.Minute), reset)
	}

	allowed, remaining, _, err := limiter.Allow(ctx, "ip:1")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)

	require.NoError(t, limiter.Reset(ctx, "ip:1"))
	allowed, _, _, err = limiter.Allow(ctx, "ip:1")
	require.NoError(t, err)
	assert.True(t, allowed)
}
