package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/booomerangs/relay-api/internal/store/cache"
)

type item struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is a process-local CacheService used when redis is
// disabled.
type MemoryCache struct {
	items map[string]item
	mu    sync.RWMutex
}

func NewMemoryCache() cache.CacheService {
	return &MemoryCache{
		items: make(map[string]item),
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists {
		return cache.ErrCacheMiss
	}

	if time.Now().After(item.expiresAt) {
		return cache.ErrCacheMiss
	}

	return json.Unmarshal(item.value, dest)
}

func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.items[key] = item{
		value:     data,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}
