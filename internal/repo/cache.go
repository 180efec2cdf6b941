// Package repo layers per-entity repositories over the store. Each
// repository validates input before touching the store, keeps an in-memory
// read-through cache keyed by id, and serves live full-collection snapshots
// that re-emit whenever a write to the entity's table commits.
//
// The cache tracks writes made through this process only. Another process
// writing the same database file does not invalidate it, so a cache hit can
// return a value that is stale relative to the file until the next write
// through this instance. Greenhouse runs single-writer-per-database, which
// makes that window acceptable.
package repo

import "sync"

// cache is a concurrency-safe map from row id to entity value.
type cache[T any] struct {
	mu    sync.RWMutex
	items map[int64]T
}

func newCache[T any]() *cache[T] {
	return &cache[T]{items: make(map[int64]T)}
}

func (c *cache[T]) get(id int64) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[id]
	return v, ok
}

func (c *cache[T]) put(id int64, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[id] = v
}

func (c *cache[T]) evict(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
}

func (c *cache[T]) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[int64]T)
}
