package sdlhost

import "github.com/veandco/go-sdl2/sdl"

type destroyer interface {
	Destroy() error
}

// lru keeps at most maxSize values, destroying whatever it evicts or
// replaces.
type lru[V destroyer] struct {
	values  map[string]V
	order   []string // least recently used first
	maxSize int
}

// TextureCache holds one render target per entry id.
type TextureCache = lru[*sdl.Texture]

func NewTextureCache(maxSize int) *TextureCache {
	return newLRU[*sdl.Texture](maxSize)
}

func newLRU[V destroyer](maxSize int) *lru[V] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &lru[V]{
		values:  make(map[string]V),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
	}
}

func (c *lru[V]) Get(key string) (V, bool) {
	v, ok := c.values[key]
	if ok {
		c.moveToEnd(key)
	}
	return v, ok
}

func (c *lru[V]) Set(key string, v V) {
	if old, ok := c.values[key]; ok {
		if any(old) != any(v) {
			_ = old.Destroy()
		}
		c.values[key] = v
		c.moveToEnd(key)
		return
	}

	if len(c.order) >= c.maxSize {
		c.evictOldest()
	}
	c.values[key] = v
	c.order = append(c.order, key)
}

// Prune destroys every value whose key keep rejects.
func (c *lru[V]) Prune(keep func(key string) bool) {
	kept := c.order[:0]
	for _, key := range c.order {
		if keep(key) {
			kept = append(kept, key)
			continue
		}
		_ = c.values[key].Destroy()
		delete(c.values, key)
	}
	c.order = kept
}

func (c *lru[V]) Len() int { return len(c.order) }

func (c *lru[V]) moveToEnd(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, key)
			return
		}
	}
}

func (c *lru[V]) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	if v, ok := c.values[oldest]; ok {
		_ = v.Destroy()
		delete(c.values, oldest)
	}
}

func (c *lru[V]) Destroy() {
	for _, v := range c.values {
		_ = v.Destroy()
	}
	c.values = make(map[string]V)
	c.order = c.order[:0]
}
