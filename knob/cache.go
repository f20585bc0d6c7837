package knob

import (
	"context"

	"github.com/hupe1980/feeddown/internal/cache"
)

// CachingResolver memoizes successful resolutions of an inner resolver.
// Batch runs over many (RDT, plane) combinations resolve the same sources
// repeatedly; only the first lookup reaches the inner resolver.
type CachingResolver struct {
	inner Resolver
	lru   *cache.LRU[string, float64]
}

// NewCachingResolver wraps inner with an LRU of the given capacity.
func NewCachingResolver(inner Resolver, capacity int) *CachingResolver {
	return &CachingResolver{inner: inner, lru: cache.NewLRU[string, float64](capacity)}
}

// Resolve implements Resolver.
func (c *CachingResolver) Resolve(ctx context.Context, source string) (float64, error) {
	if v, ok := c.lru.Get(source); ok {
		return v, nil
	}
	v, err := c.inner.Resolve(ctx, source)
	if err != nil {
		return 0, err
	}
	c.lru.Set(source, v)
	return v, nil
}

// Stats returns cache hits and misses.
func (c *CachingResolver) Stats() (hits, misses int64) {
	return c.lru.Stats()
}
