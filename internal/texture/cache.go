package texture

import (
	"image"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Resolver resolves a texture name to a decoded RGBA image.
type Resolver interface {
	Resolve(texName string) *image.NRGBA
}

// Cache is a concurrency-safe texture cache. Failed loads are remembered
// as nil so a missing or broken file is only read once.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*image.NRGBA
	index *Index
	group singleflight.Group
}

// NewCache creates a new texture cache backed by the given index.
func NewCache(index *Index) *Cache {
	return &Cache{
		items: make(map[string]*image.NRGBA),
		index: index,
	}
}

// Resolve loads and caches a texture by name. Returns nil if not found.
func (c *Cache) Resolve(texName string) *image.NRGBA {
	path, ok := c.index.ResolvePath(texName)
	if !ok {
		return nil
	}

	c.mu.RLock()
	img, exists := c.items[path]
	c.mu.RUnlock()
	if exists {
		return img
	}

	// Concurrent misses for one file share a single decode
	v, _, _ := c.group.Do(path, func() (any, error) {
		img, _ := LoadTexture(path)
		c.mu.Lock()
		c.items[path] = img
		c.mu.Unlock()
		return img, nil
	})
	return v.(*image.NRGBA)
}
