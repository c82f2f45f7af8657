// Package cache provides caching for sliced tile textures and scene previews.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Config contains cache configuration.
type Config struct {
	TextureCacheSizeMB int
	TextureTTL         time.Duration
	PreviewCacheSize   int
}

// Manager manages texture and preview caches.
type Manager struct {
	textureCache *bigcache.BigCache
	previewCache *lru.Cache[string, []byte]
}

// NewManager creates a new cache manager.
func NewManager(cfg Config) (*Manager, error) {
	textureCacheConfig := bigcache.Config{
		Shards:             1024,
		LifeWindow:         cfg.TextureTTL,
		CleanWindow:        cfg.TextureTTL / 2,
		MaxEntriesInWindow: 100000,
		MaxEntrySize:       128 * 1024, // encoded 128x128 tile
		HardMaxCacheSize:   cfg.TextureCacheSizeMB,
		Verbose:            false,
	}

	textureCache, err := bigcache.New(context.Background(), textureCacheConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create texture cache: %w", err)
	}

	previewCache, err := lru.New[string, []byte](cfg.PreviewCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create preview cache: %w", err)
	}

	return &Manager{
		textureCache: textureCache,
		previewCache: previewCache,
	}, nil
}

// GetTexture retrieves an encoded tile texture from cache.
func (m *Manager) GetTexture(key string) ([]byte, bool) {
	data, err := m.textureCache.Get(key)
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetTexture stores an encoded tile texture in cache.
func (m *Manager) SetTexture(key string, data []byte) error {
	return m.textureCache.Set(key, data)
}

// GetPreview retrieves a rendered preview from cache.
func (m *Manager) GetPreview(key string) ([]byte, bool) {
	return m.previewCache.Get(key)
}

// SetPreview stores a rendered preview in cache.
func (m *Manager) SetPreview(key string, data []byte) {
	m.previewCache.Add(key, data)
}

// TextureKey generates a cache key for one sliced tile texture.
func TextureKey(collection string, generation uint64, datasetIndex int) string {
	return fmt.Sprintf("tex:%s:%d:%d", collection, generation, datasetIndex)
}

// PreviewKey generates a cache key for a rendered scene preview. The
// generation counter changes on every committed load cycle, so stale previews
// simply stop being referenced.
func PreviewKey(collection string, generation uint64, mode, style string, spacing float64, axis bool) string {
	return fmt.Sprintf("preview:%s:%d:%s:%s:%g:%t", collection, generation, mode, style, spacing, axis)
}

// Stats returns cache statistics.
func (m *Manager) Stats() map[string]interface{} {
	return map[string]interface{}{
		"texture_cache_len": m.textureCache.Len(),
		"texture_cache_cap": m.textureCache.Capacity(),
		"preview_cache_len": m.previewCache.Len(),
	}
}

// Close closes the cache manager.
func (m *Manager) Close() error {
	return m.textureCache.Close()
}
