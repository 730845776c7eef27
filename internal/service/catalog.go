package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/card-workbench/internal/domain"
	"github.com/Rrens/card-workbench/internal/repository/redis"
	"github.com/Rrens/card-workbench/internal/workbench"
)

// Catalog is the card catalog as the service needs it
type Catalog interface {
	workbench.Catalog
	HealthCheck(ctx context.Context) error
}

// CorpusCache stores the reference lists of a catalog driver
type CorpusCache interface {
	Get(ctx context.Context, driver string) (*redis.Corpus, error)
	Set(ctx context.Context, driver string, corpus *redis.Corpus) error
	Invalidate(ctx context.Context, driver string) error
	FlushAll(ctx context.Context) (int64, error)
}

// CachedCatalog serves domains, users and cards from the corpus cache and
// falls through to the source on a miss. Cache failures are logged and
// never surface to callers.
type CachedCatalog struct {
	source Catalog
	cache  CorpusCache
	driver string
}

// NewCachedCatalog wraps a source with the corpus cache
func NewCachedCatalog(source Catalog, cache CorpusCache, driver string) *CachedCatalog {
	return &CachedCatalog{source: source, cache: cache, driver: driver}
}

func (c *CachedCatalog) cached(ctx context.Context) *redis.Corpus {
	corpus, err := c.cache.Get(ctx, c.driver)
	if err != nil {
		log.Warn().Err(err).Str("driver", c.driver).Msg("corpus cache read failed")
	}
	if corpus == nil {
		corpus = &redis.Corpus{}
	}
	return corpus
}

// cachedList returns the cached list when present; otherwise it fetches the
// list and stores it next to whatever else is cached. A nil list means the
// part is not cached.
func cachedList[T any](ctx context.Context, c *CachedCatalog, part func(*redis.Corpus) *[]T, fetch func(context.Context) ([]T, error)) ([]T, error) {
	corpus := c.cached(ctx)
	if list := *part(corpus); list != nil {
		return list, nil
	}

	list, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []T{}
	}

	*part(corpus) = list
	corpus.CachedAt = timeNow().UTC()
	if err := c.cache.Set(ctx, c.driver, corpus); err != nil {
		log.Warn().Err(err).Str("driver", c.driver).Msg("corpus cache write failed")
	}
	return list, nil
}

// ListDomains returns every domain
func (c *CachedCatalog) ListDomains(ctx context.Context) ([]domain.Domain, error) {
	return cachedList(ctx, c, func(k *redis.Corpus) *[]domain.Domain { return &k.Domains }, c.source.ListDomains)
}

// ListUsers returns every user
func (c *CachedCatalog) ListUsers(ctx context.Context) ([]domain.User, error) {
	return cachedList(ctx, c, func(k *redis.Corpus) *[]domain.User { return &k.Users }, c.source.ListUsers)
}

// ListCards returns the card corpus
func (c *CachedCatalog) ListCards(ctx context.Context) ([]domain.Card, error) {
	return cachedList(ctx, c, func(k *redis.Corpus) *[]domain.Card { return &k.Cards }, c.source.ListCards)
}

// Feed always reads the source
func (c *CachedCatalog) Feed(ctx context.Context, q domain.FeedQuery) (*domain.FeedPage, error) {
	return c.source.Feed(ctx, q)
}

// GetCardFull always reads the source
func (c *CachedCatalog) GetCardFull(ctx context.Context, id int64) (*domain.CardFull, error) {
	return c.source.GetCardFull(ctx, id)
}

// CreateCard creates the card and invalidates the cached corpus
func (c *CachedCatalog) CreateCard(ctx context.Context, in domain.CardCreate) (*domain.Card, error) {
	card, err := c.source.CreateCard(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Invalidate(ctx, c.driver); err != nil {
		log.Warn().Err(err).Str("driver", c.driver).Msg("corpus cache invalidation failed")
	}
	return card, nil
}

// HealthCheck checks the source
func (c *CachedCatalog) HealthCheck(ctx context.Context) error {
	return c.source.HealthCheck(ctx)
}
