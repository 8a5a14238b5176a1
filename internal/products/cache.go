package product

import (
	"context"
	"encoding/json"
	"time"

	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/redis"
)

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CatalogKey(parts ...string) string
}

// CachedCatalog is a read-through cache in front of another catalog. Cache
// errors are logged and fall through to the source.
type CachedCatalog struct {
	next  Catalog
	cache cacheStore
	ttl   time.Duration
	logg  *logger.Logger
}

func NewCachedCatalog(next Catalog, cache *redis.Client, ttl time.Duration, logg *logger.Logger) *CachedCatalog {
	return &CachedCatalog{next: next, cache: cache, ttl: ttl, logg: logg}
}

func (c *CachedCatalog) List(ctx context.Context) ([]Product, error) {
	key := c.cache.CatalogKey("list")
	var cached []Product
	if c.load(ctx, key, &cached) {
		return cached, nil
	}
	products, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, products)
	return products, nil
}

func (c *CachedCatalog) Get(ctx context.Context, id string) (*Product, error) {
	key := c.cache.CatalogKey("product", id)
	var cached Product
	if c.load(ctx, key, &cached) {
		return &cached, nil
	}
	p, err := c.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, p)
	return p, nil
}

func (c *CachedCatalog) load(ctx context.Context, key string, out any) bool {
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		if !redis.IsNil(err) {
			c.warn(ctx, key, "catalog cache read failed", err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		c.warn(ctx, key, "catalog cache entry unreadable", err)
		return false
	}
	return true
}

func (c *CachedCatalog) store(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.warn(ctx, key, "catalog cache encode failed", err)
		return
	}
	if err := c.cache.Set(ctx, key, string(payload), c.ttl); err != nil {
		c.warn(ctx, key, "catalog cache write failed", err)
	}
}

func (c *CachedCatalog) warn(ctx context.Context, key, msg string, err error) {
	if c.logg == nil {
		return
	}
	ctx = c.logg.WithFields(ctx, map[string]any{"cache_key": key, "error": err.Error()})
	c.logg.Warn(ctx, msg)
}
