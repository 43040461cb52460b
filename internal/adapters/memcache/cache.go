// Package memcache is the in-process CacheService used when no Valkey
// server is configured.
package memcache

import (
	"context"
	"errors"
	"time"

	"github.com/patrickmn/go-cache"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("memcache: cache miss")

// Cache implements ports.CacheService over go-cache.
type Cache struct {
	store *cache.Cache
}

// New creates a cache whose entries default to defaultTTL and are swept
// every cleanupInterval.
func New(defaultTTL, cleanupInterval time.Duration) *Cache {
	return &Cache{store: cache.New(defaultTTL, cleanupInterval)}
}

// Get retrieves a value by key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, ErrMiss
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// Set stores a copy of value. A non-positive ttlSeconds uses the default TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	ttl := cache.DefaultExpiration
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	b := make([]byte, len(value))
	copy(b, value)
	c.store.Set(key, b, ttl)
	return nil
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

// Len returns the number of stored entries, expired ones included until the
// next sweep.
func (c *Cache) Len() int {
	return c.store.ItemCount()
}

// Flush drops every entry.
func (c *Cache) Flush() {
	c.store.Flush()
}
