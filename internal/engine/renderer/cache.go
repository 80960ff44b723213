package renderer

// cache tracks GPU objects by key and releases those no longer referenced by the scene.
// Keys are marked each frame with get; sweep releases everything left unmarked.
type cache[K comparable, V any] struct {
	entries map[K]*cacheEntry[V]
	release func(V)
}

type cacheEntry[V any] struct {
	value V
	used  bool
}

func newCache[K comparable, V any](release func(V)) *cache[K, V] {
	return &cache[K, V]{
		entries: make(map[K]*cacheEntry[V]),
		release: release,
	}
}

// get returns the object for key, creating it on first use, and marks it used.
func (c *cache[K, V]) get(key K, create func() (V, error)) (V, error) {
	if e, ok := c.entries[key]; ok {
		e.used = true
		return e.value, nil
	}
	v, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	c.entries[key] = &cacheEntry[V]{value: v, used: true}
	return v, nil
}

// sweep releases unmarked entries and clears the marks. It returns how many were released.
func (c *cache[K, V]) sweep() int {
	released := 0
	for key, e := range c.entries {
		if !e.used {
			c.release(e.value)
			delete(c.entries, key)
			released++
			continue
		}
		e.used = false
	}
	return released
}

// clear releases every entry.
func (c *cache[K, V]) clear() {
	for key, e := range c.entries {
		c.release(e.value)
		delete(c.entries, key)
	}
}

func (c *cache[K, V]) len() int {
	return len(c.entries)
}
