package texture

import (
	"fmt"
	"image"
	"os"
	"sync"
)

// Resolver finds the preview texture for an entry name.
type Resolver interface {
	Resolve(name string) *image.NRGBA
}

// Cache is a concurrency-safe texture cache.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
	index *Index
}

type cacheEntry struct {
	img *image.NRGBA
	err error
}

// NewCache creates a new texture cache backed by the given index.
func NewCache(index *Index) *Cache {
	return &Cache{
		items: make(map[string]*cacheEntry),
		index: index,
	}
}

// Resolve loads and caches the texture matching name. It returns nil when
// there is no match or the file cannot be decoded; failures are cached too.
func (c *Cache) Resolve(name string) *image.NRGBA {
	path, ok := c.index.ResolvePath(name)
	if !ok {
		return nil
	}

	c.mu.RLock()
	if entry, exists := c.items[path]; exists {
		c.mu.RUnlock()
		return entry.img
	}
	c.mu.RUnlock()

	img, err := Load(path)

	c.mu.Lock()
	if entry, exists := c.items[path]; exists {
		c.mu.Unlock()
		return entry.img
	}
	c.items[path] = &cacheEntry{img: img, err: err}
	c.mu.Unlock()

	return img
}

// Err returns the load error cached for name, if any.
func (c *Cache) Err(name string) error {
	path, ok := c.index.ResolvePath(name)
	if !ok {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, exists := c.items[path]; exists {
		return entry.err
	}
	return nil
}

// Static resolves every name to the same image.
type Static struct {
	Img *image.NRGBA
}

func (s Static) Resolve(string) *image.NRGBA { return s.Img }

// Open returns a resolver for path: an indexed cache when path is a
// directory, or a Static resolver holding the decoded image otherwise.
func Open(path string) (Resolver, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("texture: %w", err)
	}
	if info.IsDir() {
		return NewCache(BuildIndex(path)), nil
	}
	img, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Static{Img: img}, nil
}
