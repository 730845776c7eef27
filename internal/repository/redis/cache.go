package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Rrens/card-workbench/internal/domain"
)

const (
	corpusCachePrefix = "corpus:"
	defaultCorpusTTL  = 5 * time.Minute
)

// Corpus is the reference data a workbench session loads
type Corpus struct {
	Domains  []domain.Domain `json:"domains"`
	Users    []domain.User   `json:"users"`
	Cards    []domain.Card   `json:"cards"`
	CachedAt time.Time       `json:"cached_at"`
}

// CorpusCache handles corpus caching in Redis
type CorpusCache struct {
	client *Client
	ttl    time.Duration
}

// NewCorpusCache creates a new corpus cache
func NewCorpusCache(client *Client, ttl time.Duration) *CorpusCache {
	if ttl <= 0 {
		ttl = defaultCorpusTTL
	}
	return &CorpusCache{client: client, ttl: ttl}
}

// Key returns the cache key of a catalog driver
func Key(driver string) string {
	return corpusCachePrefix + driver
}

// Get retrieves the cached corpus; nil on a miss
func (c *CorpusCache) Get(ctx context.Context, driver string) (*Corpus, error) {
	data, err := c.client.rdb.Get(ctx, Key(driver)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}

	var corpus Corpus
	if err := json.Unmarshal(data, &corpus); err != nil {
		return nil, fmt.Errorf("failed to unmarshal corpus: %w", err)
	}

	return &corpus, nil
}

// Set caches the corpus of a driver
func (c *CorpusCache) Set(ctx context.Context, driver string, corpus *Corpus) error {
	data, err := json.Marshal(corpus)
	if err != nil {
		return fmt.Errorf("failed to marshal corpus: %w", err)
	}

	return c.client.rdb.Set(ctx, Key(driver), data, c.ttl).Err()
}

// Invalidate removes the cached corpus of a driver
func (c *CorpusCache) Invalidate(ctx context.Context, driver string) error {
	return c.client.rdb.Del(ctx, Key(driver)).Err()
}

// FlushAll removes all cached corpora
func (c *CorpusCache) FlushAll(ctx context.Context) (int64, error) {
	pattern := corpusCachePrefix + "*"
	var cursor uint64
	var deleted int64

	for {
		keys, nextCursor, err := c.client.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			count, err := c.client.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete keys: %w", err)
			}
			deleted += count
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return deleted, nil
}
