// # internal/engine/names/lru.go
package names

import "container/list"

// lruCache is a least-recently-used map. A capacity <= 0 never evicts. It
// does no locking: a Resolver is owned by one goroutine at a time.
type lruCache[K comparable, V any] struct {
	capacity int
	items    map[K]*list.Element
	order    *list.List // front = most-recently used
	hits     int
	misses   int
}

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

func newLRUCache[K comparable, V any](capacity int) *lruCache[K, V] {
	if capacity < 0 {
		capacity = 0
	}
	return &lruCache[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
	}
}

// get counts the lookup as a hit or miss and promotes hits.
func (c *lruCache[K, V]) get(key K) (V, bool) {
	el, ok := c.items[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry[K, V]).value, true
}

func (c *lruCache[K, V]) put(key K, value V) {
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		el.Value.(*lruEntry[K, V]).value = value
		return
	}
	if c.capacity > 0 && c.order.Len() >= c.capacity {
		back := c.order.Back()
		c.order.Remove(back)
		delete(c.items, back.Value.(*lruEntry[K, V]).key)
	}
	c.items[key] = c.order.PushFront(&lruEntry[K, V]{key: key, value: value})
}

func (c *lruCache[K, V]) size() int { return c.order.Len() }

func (c *lruCache[K, V]) reset() {
	c.order.Init()
	c.items = make(map[K]*list.Element, c.capacity)
	c.hits, c.misses = 0, 0
}
