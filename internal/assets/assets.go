// Package assets fetches mesh and texture files and applies them to scene
// entities once they have loaded.
package assets

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when a fetcher has no asset at the given path.
var ErrNotFound = errors.New("asset not found")

// Fetcher returns the raw bytes of an asset. Paths are slash-separated and
// relative to the fetcher's root. Implementations must be safe for
// concurrent use.
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// Cache is an in-memory cache of fetched asset bytes.
type Cache struct {
	data map[string][]byte
	mu   sync.Mutex

	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Invalidate drops one item so the next fetch goes to the source.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// CachedFetcher serves repeated fetches of a path from a Cache.
// Failed fetches are not cached.
type CachedFetcher struct {
	Source Fetcher
	Cache  *Cache
}

// NewCachedFetcher wraps src with a fresh cache.
func NewCachedFetcher(src Fetcher) *CachedFetcher {
	return &CachedFetcher{Source: src, Cache: NewCache()}
}

// Fetch implements Fetcher.
func (f *CachedFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	if data, ok := f.Cache.Get(path); ok {
		return data, nil
	}
	data, err := f.Source.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	f.Cache.Set(path, data)
	return data, nil
}

// Invalidate drops path from the cache.
func (f *CachedFetcher) Invalidate(path string) {
	f.Cache.Invalidate(path)
}
