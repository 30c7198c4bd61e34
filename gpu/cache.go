package gpu

import (
	"github.com/gogpu/quad"
	"github.com/gogpu/quad/internal/texcache"
)

// TextureCache keeps uploaded textures by name. When the cache grows past
// its limit the least recently used texture is destroyed; bindings built
// on it must not be drawn afterwards.
type TextureCache struct {
	p     *Pipeline
	cache *texcache.Cache[string, *Texture]
}

// NewTextureCache creates a cache of at most limit textures. A limit of 0
// means unlimited.
func (p *Pipeline) NewTextureCache(limit int) *TextureCache {
	return &TextureCache{
		p: p,
		cache: texcache.New(limit, func(name string, t *Texture) {
			slogger().Debug("quad texture evicted", "name", name)
			t.Destroy()
		}),
	}
}

// Get returns the texture cached under name, uploading the result of load
// on a miss.
func (c *TextureCache) Get(name string, load func() (*quad.Texture, error)) (*Texture, error) {
	return c.cache.GetOrLoad(name, func() (*Texture, error) {
		src, err := load()
		if err != nil {
			return nil, err
		}
		return c.p.UploadTexture(src)
	})
}

// Len returns the number of cached textures.
func (c *TextureCache) Len() int { return c.cache.Len() }

// Remove destroys the texture cached under name.
func (c *TextureCache) Remove(name string) bool { return c.cache.Remove(name) }

// Clear destroys every cached texture.
func (c *TextureCache) Clear() { c.cache.Clear() }
