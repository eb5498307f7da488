package reference

import (
	"sync"
	"sync/atomic"
)

// Cache memoizes resolutions for the lifetime of one run.
// Values are deterministic per key, so concurrent writers need no coordination.
type Cache struct {
	entries sync.Map
	size    atomic.Int64
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns the cached resolution for key.
func (c *Cache) Get(key string) (Resolution, bool) {
	v, ok := c.entries.Load(key)
	if !ok {
		return Resolution{}, false
	}
	return v.(Resolution), true
}

// Set stores res under key.
func (c *Cache) Set(key string, res Resolution) {
	if _, loaded := c.entries.Swap(key, res); !loaded {
		c.size.Add(1)
	}
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.entries.Range(func(key, _ any) bool {
		if _, loaded := c.entries.LoadAndDelete(key); loaded {
			c.size.Add(-1)
		}
		return true
	})
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	return int(c.size.Load())
}

// ExternalReferenceKey is the cache key of an external reference lookup.
func ExternalReferenceKey(ref string) string {
	return "externalReference:" + ref
}

// PathKey is the cache key of a catalog path lookup.
func PathKey(path string) string {
	return "path:" + path
}
