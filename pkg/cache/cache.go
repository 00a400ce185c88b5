// Package cache provides a generic thread-safe in-memory store with
// secondary indexes. It backs the repository-less store factory used by
// tests and single-process deployments.
package cache

import (
	"errors"
	"sync"
)

// ErrIndexNotFound is returned when querying an unregistered index.
var ErrIndexNotFound = errors.New("index not found")

// Indexed is a map keyed by K with optional secondary indexes over V.
type Indexed[K comparable, V any] struct {
	mu         sync.RWMutex
	data       map[K]V
	extractors map[string]func(V) any
	indexes    map[string]map[any]map[K]struct{}
}

// NewIndexed creates an empty indexed store.
func NewIndexed[K comparable, V any]() *Indexed[K, V] {
	return &Indexed[K, V]{
		data:       make(map[K]V),
		extractors: make(map[string]func(V) any),
		indexes:    make(map[string]map[any]map[K]struct{}),
	}
}

// AddIndex registers a secondary index and indexes existing items.
func (c *Indexed[K, V]) AddIndex(name string, extract func(V) any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.extractors[name] = extract
	c.indexes[name] = make(map[any]map[K]struct{})
	for k, v := range c.data {
		c.link(name, extract(v), k)
	}
}

// Set adds or replaces an item, keeping indexes consistent.
func (c *Indexed[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.data[key]; ok {
		c.unlinkAll(key, old)
	}
	c.data[key] = value
	c.linkAll(key, value)
}

// Get retrieves an item.
func (c *Indexed[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[key]
	return v, ok
}

// Del removes an item.
func (c *Indexed[K, V]) Del(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.data[key]; ok {
		c.unlinkAll(key, old)
		delete(c.data, key)
	}
}

// Len returns the number of items.
func (c *Indexed[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Values returns every item in no particular order.
func (c *Indexed[K, V]) Values() []V {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]V, 0, len(c.data))
	for _, v := range c.data {
		out = append(out, v)
	}
	return out
}

// Find returns items whose indexed value equals value.
func (c *Indexed[K, V]) Find(index string, value any) ([]V, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.extractors[index]; !ok {
		return nil, ErrIndexNotFound
	}

	keys := c.indexes[index][value]
	out := make([]V, 0, len(keys))
	for k := range keys {
		if v, ok := c.data[k]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// Filter returns items matching the predicate.
func (c *Indexed[K, V]) Filter(pred func(V) bool) []V {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []V
	for _, v := range c.data {
		if pred(v) {
			out = append(out, v)
		}
	}
	return out
}

// link helpers assume the write lock is held.

func (c *Indexed[K, V]) linkAll(key K, value V) {
	for name, extract := range c.extractors {
		c.link(name, extract(value), key)
	}
}

func (c *Indexed[K, V]) unlinkAll(key K, value V) {
	for name, extract := range c.extractors {
		val := extract(value)
		if keys, ok := c.indexes[name][val]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(c.indexes[name], val)
			}
		}
	}
}

func (c *Indexed[K, V]) link(name string, value any, key K) {
	index := c.indexes[name]
	if index == nil {
		index = make(map[any]map[K]struct{})
		c.indexes[name] = index
	}
	keys := index[value]
	if keys == nil {
		keys = make(map[K]struct{})
		index[value] = keys
	}
	keys[key] = struct{}{}
}
