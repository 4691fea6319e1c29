package cache

import (
	"sync"
	"time"
)

// Cache is an in-memory cache with sliding TTL support
type Cache[V any] struct {
	mu       sync.RWMutex
	items    map[string]*cacheItem[V]
	ttl      time.Duration
	onEvict  func(key string, value V)
	stopChan chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

type cacheItem[V any] struct {
	value      V
	expiration time.Time
}

// Option configures a Cache
type Option[V any] func(*Cache[V])

// WithEvictHook registers a callback invoked for every expired item removed by the janitor
func WithEvictHook[V any](fn func(key string, value V)) Option[V] {
	return func(c *Cache[V]) {
		c.onEvict = fn
	}
}

// WithCleanupInterval starts a janitor goroutine that removes expired items periodically
func WithCleanupInterval[V any](interval time.Duration) Option[V] {
	return func(c *Cache[V]) {
		if interval > 0 {
			go c.cleanup(interval)
		}
	}
}

// New creates a new cache with the specified TTL
func New[V any](ttl time.Duration, opts ...Option[V]) *Cache[V] {
	c := &Cache[V]{
		items:    make(map[string]*cacheItem[V]),
		ttl:      ttl,
		stopChan: make(chan struct{}),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Touch retrieves a value and renews its expiration
func (c *Cache[V]) Touch(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	item, exists := c.items[key]
	if !exists || c.now().After(item.expiration) {
		return zero, false
	}
	item.expiration = c.now().Add(c.ttl)
	return item.value, true
}

// Set stores a value in the cache with the default TTL
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &cacheItem[V]{
		value:      value,
		expiration: c.now().Add(c.ttl),
	}
}

// Delete removes a value from the cache. Returns false if the key was absent.
func (c *Cache[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, exists := c.items[key]
	delete(c.items, key)
	return exists
}

func (c *Cache[V]) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.RemoveExpired()
		case <-c.stopChan:
			return
		}
	}
}

// RemoveExpired removes all expired items and returns how many were removed
func (c *Cache[V]) RemoveExpired() int {
	type evicted struct {
		key   string
		value V
	}

	c.mu.Lock()
	now := c.now()
	var removed []evicted
	for key, item := range c.items {
		if now.After(item.expiration) {
			removed = append(removed, evicted{key: key, value: item.value})
			delete(c.items, key)
		}
	}
	c.mu.Unlock()

	// hook roda fora do lock
	if c.onEvict != nil {
		for _, e := range removed {
			c.onEvict(e.key, e.value)
		}
	}
	return len(removed)
}

// Stop stops the cleanup goroutine
func (c *Cache[V]) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
}

// Size returns the number of items in the cache, expired ones included
func (c *Cache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
