/*
Package weakcache provides a bounded cache of weak references. Cached values
stay alive only as long as someone else holds a strong reference to them, the
cache itself never extends their lifetime.
*/
package weakcache

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/nspcc-dev/refptr/pkg/refptr"
	"go.uber.org/zap"
)

// ErrInvalidSize is returned by New for non-positive cache sizes.
var ErrInvalidSize = errors.New("invalid cache size")

// Cache maps keys to weak references of V, evicting the least recently used
// entries once the size limit is reached. Like handles themselves, it must not
// be used concurrently with other operations on the same payloads.
type Cache[K comparable, V any] struct {
	log *zap.Logger
	lru *lru.Cache
}

// New creates a cache holding at most size entries. A nil log disables
// logging.
func New[K comparable, V any](size int, log *zap.Logger) (*Cache[K, V], error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if log == nil {
		log = zap.NewNop()
	}
	c := &Cache[K, V]{log: log}
	var err error
	c.lru, err = lru.NewWithEvict(size, c.onEvict)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// onEvict is called by the LRU for every dropped entry.
func (c *Cache[K, V]) onEvict(key, value interface{}) {
	w := value.(*refptr.Weak[V])
	c.log.Debug("dropping cache entry",
		zap.Any("key", key),
		zap.Bool("expired", w.Expired()))
	w.Release()
}

// Put stores a weak reference to the payload of s under k, replacing the
// previous entry if any. Empty handles are not stored.
func (c *Cache[K, V]) Put(k K, s *refptr.Shared[V]) {
	c.lru.Remove(k) // Add doesn't evict replaced values.
	if !s.Valid() {
		return
	}
	w := refptr.NewWeak(s)
	c.lru.Add(k, &w)
}

// Get returns a strong reference to the value cached under k. Expired entries
// are removed and reported as missing.
func (c *Cache[K, V]) Get(k K) (refptr.Shared[V], bool) {
	v, ok := c.lru.Get(k)
	if !ok {
		return refptr.Shared[V]{}, false
	}
	s := v.(*refptr.Weak[V]).Lock()
	if !s.Valid() {
		c.lru.Remove(k)
		return s, false
	}
	return s, true
}

// Remove drops the entry for k.
func (c *Cache[K, V]) Remove(k K) {
	c.lru.Remove(k)
}

// Len returns the number of entries, including expired ones not pruned yet.
func (c *Cache[K, V]) Len() int {
	return c.lru.Len()
}

// Prune removes all expired entries and returns their number.
func (c *Cache[K, V]) Prune() int {
	var n int
	for _, k := range c.lru.Keys() {
		v, ok := c.lru.Peek(k)
		if ok && v.(*refptr.Weak[V]).Expired() {
			c.lru.Remove(k)
			n++
		}
	}
	if n > 0 {
		c.log.Debug("pruned expired cache entries", zap.Int("count", n))
	}
	return n
}

// Purge drops all entries.
func (c *Cache[K, V]) Purge() {
	c.lru.Purge()
}
