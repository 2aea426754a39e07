// Package cache provides a bounded in-memory result cache keyed by
// normalized query text. Eviction is strictly FIFO by insertion order:
// reads do not refresh an entry's position, so a hot entry inserted
// early still ages out on schedule. That keeps eviction predictable for
// a workload where queries repeat in short bursts and stale results are
// worse than recomputed ones.
package cache

import (
	"container/list"
	"strings"
	"sync"
)

// DefaultCapacity bounds the cache when no explicit capacity is given.
const DefaultCapacity = 500

type entry[V any] struct {
	key   string
	value V
}

// FIFOCache is a thread-safe bounded cache with first-in-first-out
// eviction.
type FIFOCache[V any] struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = oldest inserted
	items    map[string]*list.Element
}

// New creates a FIFO cache. Capacities <= 0 fall back to DefaultCapacity.
func New[V any](capacity int) *FIFOCache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &FIFOCache[V]{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

// NormalizeKey lowercases and trims a query so semantically identical
// lookups share a slot.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Get returns the cached value for key. It never changes eviction order.
func (c *FIFOCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[NormalizeKey(key)]; ok {
		return el.Value.(*entry[V]).value, true
	}
	var zero V
	return zero, false
}

// Set stores value under key. Updating an existing key replaces the
// value but keeps the original insertion position. When the cache is
// full the oldest-inserted entry is evicted.
func (c *FIFOCache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	norm := NormalizeKey(key)
	if el, ok := c.items[norm]; ok {
		el.Value.(*entry[V]).value = value
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Front()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry[V]).key)
		}
	}

	c.items[norm] = c.order.PushBack(&entry[V]{key: norm, value: value})
}

// Delete removes key from the cache if present.
func (c *FIFOCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	norm := NormalizeKey(key)
	if el, ok := c.items[norm]; ok {
		c.order.Remove(el)
		delete(c.items, norm)
	}
}

// Len returns the number of cached entries.
func (c *FIFOCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear drops every entry.
func (c *FIFOCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[string]*list.Element)
}
