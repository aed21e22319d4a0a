package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/medilens/backend/internal/domain"
)

// CachedCatalog caches search results of another catalog.
// GetByID is never cached so cart additions see removed products.
type CachedCatalog struct {
	inner  domain.ProductCatalog
	cache  domain.CacheRepository
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedCatalog wraps inner with a search-result cache
func NewCachedCatalog(inner domain.ProductCatalog, cache domain.CacheRepository, ttl time.Duration, logger *zap.Logger) *CachedCatalog {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedCatalog{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// Search returns cached results when present, otherwise queries the inner
// catalog and caches its answer. Cache failures never fail the search.
func (c *CachedCatalog) Search(ctx context.Context, query string) ([]domain.Product, error) {
	query = strings.TrimSpace(query)
	key := searchCacheKey(query)

	if data, err := c.cache.Get(ctx, key); err == nil {
		var products []domain.Product
		if err := json.Unmarshal(data, &products); err == nil {
			return products, nil
		}
		c.logger.Warn("discarding corrupt cache entry", zap.String("key", key))
	} else if !errors.Is(err, domain.ErrCacheMiss) {
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	products, err := c.inner.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(products)
	if err == nil {
		err = c.cache.Set(ctx, key, data, c.ttl)
	}
	if err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}

	return products, nil
}

// GetByID delegates to the inner catalog
func (c *CachedCatalog) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return c.inner.GetByID(ctx, id)
}

// searchCacheKey normalizes a query into a cache key.
// Format: "catalog:search:{lowercase trimmed query}"
// Inner whitespace is kept: "dolo  650" and "dolo 650" are different
// substring queries.
func searchCacheKey(query string) string {
	return "catalog:search:" + strings.ToLower(strings.TrimSpace(query))
}
