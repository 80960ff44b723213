package decode

import (
	"context"
	"image"
	"sync"
)

// DefaultCacheEntries bounds a CachingLoader created with a non-positive size.
const DefaultCacheEntries = 4

// CachingLoader keeps the most recently loaded images so re-parsing the same source
// (a projection or wiggle change) skips the fetch and decode.
type CachingLoader struct {
	next Loader
	max  int

	mu    sync.Mutex
	data  map[string]image.Image
	order []string // oldest first

	// Stats
	hits   int
	misses int
}

// NewCachingLoader wraps next with a cache of up to max images.
func NewCachingLoader(next Loader, max int) *CachingLoader {
	if max <= 0 {
		max = DefaultCacheEntries
	}
	return &CachingLoader{
		next: next,
		max:  max,
		data: make(map[string]image.Image),
	}
}

// Load returns the cached image for source or loads it through the wrapped loader.
// Failed loads are not cached.
func (c *CachingLoader) Load(ctx context.Context, source string) (image.Image, error) {
	if img, ok := c.get(source); ok {
		return img, nil
	}
	img, err := c.next.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	c.set(source, img)
	return img, nil
}

func (c *CachingLoader) get(source string) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	img, ok := c.data[source]
	if ok {
		c.hits++
		c.touch(source)
	} else {
		c.misses++
	}
	return img, ok
}

func (c *CachingLoader) set(source string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.data[source]; ok {
		c.touch(source)
	} else {
		c.order = append(c.order, source)
	}
	c.data[source] = img
	for len(c.order) > c.max {
		delete(c.data, c.order[0])
		c.order = c.order[1:]
	}
}

// touch moves source to the newest position. Callers hold mu.
func (c *CachingLoader) touch(source string) {
	for i, s := range c.order {
		if s == source {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.order = append(c.order, source)
}

// Clear drops every cached image and resets the stats.
func (c *CachingLoader) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]image.Image)
	c.order = nil
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *CachingLoader) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
