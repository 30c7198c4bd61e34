// Package texcache provides a keyed LRU cache whose values own resources.
// Values leaving the cache, by eviction, Remove or Clear, are passed to a
// release callback exactly once.
package texcache

import "sync"

// Cache is a thread-safe LRU cache with a soft entry limit.
// Cache must not be copied after creation.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[V]
	limit   int
	tick    int64 // monotonic access counter
	release func(K, V)
}

type entry[V any] struct {
	value V
	atime int64
}

// New creates a cache holding at most limit entries. A limit of 0 means
// unlimited. release may be nil.
func New[K comparable, V any](limit int, release func(K, V)) *Cache[K, V] {
	if release == nil {
		release = func(K, V) {}
	}
	return &Cache[K, V]{
		entries: make(map[K]*entry[V]),
		limit:   limit,
		release: release,
	}
}

// Get returns the cached value for key and marks it as recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.tick++
	e.atime = c.tick
	return e.value, true
}

// GetOrLoad returns the cached value for key or stores the result of load.
// load runs under the cache lock, so concurrent callers never load the same
// key twice. A failed load caches nothing.
func (c *Cache[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tick++
	if e, ok := c.entries[key]; ok {
		e.atime = c.tick
		return e.value, nil
	}
	v, err := load()
	if err != nil {
		var zero V
		return zero, err
	}
	c.entries[key] = &entry[V]{value: v, atime: c.tick}
	if c.limit > 0 && len(c.entries) > c.limit {
		c.evictOldest(key)
	}
	return v, nil
}

// Remove drops key and releases its value. It reports whether key was present.
func (c *Cache[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return false
	}
	delete(c.entries, key)
	c.release(key, e.value)
	return true
}

// Clear releases every value and empties the cache.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		c.release(k, e.value)
	}
	clear(c.entries)
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOldest removes the least recently used entry other than keep.
// Caller holds c.mu.
func (c *Cache[K, V]) evictOldest(keep K) {
	var (
		oldest K
		found  bool
		atime  int64
	)
	for k, e := range c.entries {
		if k == keep {
			continue
		}
		if !found || e.atime < atime {
			oldest, atime, found = k, e.atime, true
		}
	}
	if !found {
		return
	}
	e := c.entries[oldest]
	delete(c.entries, oldest)
	c.release(oldest, e.value)
}
