// Package cache provides a generic, KV-backed cache.
//
// Values are serialized as JSON, any KV backend works. A cache miss is not
// an error for callers using GetOrSet.
//
// Example:
//
//	c := cache.NewCache(kvStore)
//
//	role, err := cache.GetOrSet(ctx, c, "role:jdoe", func() (Role, error) {
//	    return resolveFromDirectory(ctx, "jdoe")
//	}, 15*time.Minute)
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/dkozyrev/softvault/pkg/internal/storage/kv"
)

// Cache is a typed cache over a KV store. A Cache with no backing store
// is valid: every read misses and writes vanish.
type Cache struct {
	kvStore kv.KVStore
}

// NewCache creates a cache instance.
func NewCache(kvStore kv.KVStore) *Cache {
	return &Cache{
		kvStore: kvStore,
	}
}

// ErrNoStore is the miss reported when no KV backend is attached.
var ErrNoStore = fmt.Errorf("cache: no backing store")

func (c *Cache) store() kv.KVStore {
	if c == nil {
		return nil
	}

	return c.kvStore
}

// Get fetches and decodes a cached value.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var zero T

	s := c.store()
	if s == nil {
		return zero, ErrNoStore
	}

	data, err := s.Get(ctx, key)
	if err != nil {
		return zero, err
	}

	var value T
	if err := sonic.Unmarshal(data, &value); err != nil {
		return zero, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return value, nil
}

// Set encodes and stores a value with a TTL.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	s := c.store()
	if s == nil {
		return nil
	}

	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return s.Set(ctx, key, data, ttl)
}

// Delete removes a cached key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	s := c.store()
	if s == nil {
		return nil
	}

	return s.Delete(ctx, key)
}

// Exists reports whether a key is cached.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	s := c.store()
	if s == nil {
		return false, nil
	}

	return s.Exists(ctx, key)
}

// GetOrSet returns the cached value or computes and caches it. A failed
// cache write still returns the computed value.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, getter func() (T, error), ttl time.Duration) (T, error) {
	var zero T

	if value, err := Get[T](ctx, c, key); err == nil {
		return value, nil
	}

	value, err := getter()
	if err != nil {
		return zero, err
	}

	if setErr := Set(ctx, c, key, value, ttl); setErr != nil {
		return value, nil
	}

	return value, nil
}

// Clear removes every key the backend reports.
func (c *Cache) Clear(ctx context.Context) error {
	s := c.store()
	if s == nil {
		return nil
	}

	keys, err := s.Keys(ctx, "*")
	if err != nil {
		return err
	}

	for _, key := range keys {
		if delErr := s.Delete(ctx, key); delErr != nil {
			return delErr
		}
	}

	return nil
}
