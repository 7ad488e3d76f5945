package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	DefaultExpiration = 5 * time.Minute
	CleanupInterval   = 10 * time.Minute
)

type inMemoryCache struct {
	cache *gocache.Cache
}

var (
	defaultCache *inMemoryCache
	cacheOnce    sync.Once
)

// NewInMemoryCache returns the process wide in-memory cache.
func NewInMemoryCache() Cache {
	cacheOnce.Do(func() {
		defaultCache = &inMemoryCache{
			cache: gocache.New(DefaultExpiration, CleanupInterval),
		}
	})
	return defaultCache
}

func (c *inMemoryCache) Get(_ context.Context, key string) (interface{}, bool) {
	return c.cache.Get(key)
}

func (c *inMemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) {
	c.cache.Set(key, value, expiration)
}

func (c *inMemoryCache) Delete(_ context.Context, key string) {
	c.cache.Delete(key)
}

func (c *inMemoryCache) DeleteByPrefix(_ context.Context, prefix string) {
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Delete(key)
		}
	}
}

func (c *inMemoryCache) Flush(_ context.Context) {
	c.cache.Flush()
}
