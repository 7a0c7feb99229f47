// Package assets keeps loaded models and images alive while they are in use
// and evicts them once they have been idle for a configurable time.
package assets

import (
	"sync"
	"time"
)

// DefaultKillTime is how long an unreferenced resource survives.
const DefaultKillTime = 5 * time.Second

// Handle addresses a cached resource. Handles are never reused.
type Handle uint64

type entry[T any] struct {
	key   string
	value T
	refs  int

	// idleSince is set when refs drops to zero.
	idleSince time.Time
}

// Cache is an arena of resources addressed by Handle, with a path index and
// a liveness table of reference counts and idle timestamps.
type Cache[T any] struct {
	mu       sync.Mutex
	killTime time.Duration
	now      func() time.Time

	next    Handle
	entries map[Handle]*entry[T]
	keys    map[string]Handle
}

// NewCache creates a cache. A nil clock uses time.Now.
func NewCache[T any](killTime time.Duration, now func() time.Time) *Cache[T] {
	if now == nil {
		now = time.Now
	}
	return &Cache[T]{
		killTime: killTime,
		now:      now,
		entries:  make(map[Handle]*entry[T]),
		keys:     make(map[string]Handle),
	}
}

// Insert adds value under key and returns its handle with one reference
// held by the caller. An existing entry for key is replaced in the index but
// stays addressable by its old handle until evicted.
func (c *Cache[T]) Insert(key string, value T) Handle {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.next++
	h := c.next
	c.entries[h] = &entry[T]{key: key, value: value, refs: 1}
	c.keys[key] = h
	return h
}

// Lookup returns the handle cached for key.
func (c *Cache[T]) Lookup(key string) (Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h, ok := c.keys[key]
	return h, ok
}

// Get returns the resource for h.
func (c *Cache[T]) Get(h Handle) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[h]
	if !ok {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Acquire adds a reference to h. It reports false if h was evicted.
func (c *Cache[T]) Acquire(h Handle) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[h]
	if !ok {
		return false
	}
	e.refs++
	e.idleSince = time.Time{}
	return true
}

// Release drops a reference to h. When the last reference goes the
// resource starts its idle period.
func (c *Cache[T]) Release(h Handle) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[h]
	if !ok || e.refs == 0 {
		return false
	}
	e.refs--
	if e.refs == 0 {
		e.idleSince = c.now()
	}
	return true
}

// Refs returns the reference count of h.
func (c *Cache[T]) Refs(h Handle) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[h]; ok {
		return e.refs
	}
	return 0
}

// Len returns the number of live entries.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Evicted describes a resource removed by Update.
type Evicted struct {
	Handle Handle
	Key    string
}

// Update evicts every unreferenced entry idle for longer than the kill time.
func (c *Cache[T]) Update() []Evicted {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var evicted []Evicted
	for h, e := range c.entries {
		if e.refs > 0 || now.Sub(e.idleSince) <= c.killTime {
			continue
		}
		delete(c.entries, h)
		if c.keys[e.key] == h {
			delete(c.keys, e.key)
		}
		evicted = append(evicted, Evicted{Handle: h, Key: e.key})
	}
	return evicted
}
