// Package cache provides a thread-safe generic cache and the rendered comment cache.
package cache

import "sync"

type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V

	// gens is bumped for a key on every Delete; epoch on Clear and SetTo.
	gens  map[K]uint64
	epoch uint64
}

func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]V),
		gens:  make(map[K]uint64),
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.items[key]
	return val, ok
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

// GetOrLoad returns the cached value for key, calling load on a miss. A
// failed load is not cached, and neither is a load that overlapped a Delete
// of the same key: its result is returned but may predate the change that
// caused the Delete.
func (c *Cache[K, V]) GetOrLoad(key K, load func(K) (V, error)) (V, error) {
	c.mu.RLock()
	val, ok := c.items[key]
	gen, epoch := c.gens[key], c.epoch
	c.mu.RUnlock()
	if ok {
		return val, nil
	}

	val, err := load(key)
	if err != nil {
		var zero V
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[key] == gen && c.epoch == epoch {
		c.items[key] = val
	}
	return val, nil
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	c.gens[key]++
}

func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]V)
	c.gens = make(map[K]uint64)
	c.epoch++
}

func (c *Cache[K, V]) SetTo(items map[K]V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
	c.gens = make(map[K]uint64)
	c.epoch++
}

var renderedCommentCache = NewCache[string, []byte]()

func renderKey(contentHash, renderer, syntaxTheme string) string {
	return contentHash + ":" + renderer + ":" + syntaxTheme
}

func GetRenderedComment(contentHash, renderer, syntaxTheme string) ([]byte, bool) {
	return renderedCommentCache.Get(renderKey(contentHash, renderer, syntaxTheme))
}

func SetRenderedComment(contentHash, renderer, syntaxTheme string, html []byte) {
	renderedCommentCache.Set(renderKey(contentHash, renderer, syntaxTheme), html)
}

func ClearRenderedCommentCache() {
	renderedCommentCache.Clear()
}

var syntaxCSSCache = NewCache[string, string]()

func GetSyntaxCSS(theme string) (string, bool) {
	return syntaxCSSCache.Get(theme)
}

func SetSyntaxCSS(theme, css string) {
	syntaxCSSCache.Set(theme, css)
}
