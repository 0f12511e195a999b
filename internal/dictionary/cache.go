package dictionary

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/json"

	"hrms-admin-go/internal/constants"
	"hrms-admin-go/internal/storage"
)

// Cache 字典缓存。Get 未命中时返回 ok=false 且 err 为 nil。
type Cache interface {
	Get(ctx context.Context, key string) (options []Option, ok bool, err error)
	Set(ctx context.Context, key string, options []Option) error
	Invalidate(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

type memoryEntry struct {
	options  []Option
	expireAt time.Time
}

// MemoryCache 进程内缓存，按TTL过期
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache 创建进程内缓存，ttl<=0 表示永不过期
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, entries: map[string]memoryEntry{}, now: time.Now}
}

// Get 实现 Cache
func (c *MemoryCache) Get(_ context.Context, key string) ([]Option, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expireAt.IsZero() && c.now().After(e.expireAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return cloneOptions(e.options), true, nil
}

// Set 实现 Cache
func (c *MemoryCache) Set(_ context.Context, key string, options []Option) error {
	e := memoryEntry{options: cloneOptions(options)}
	if c.ttl > 0 {
		e.expireAt = c.now().Add(c.ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

// Invalidate 实现 Cache
func (c *MemoryCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Clear 实现 Cache
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.entries = map[string]memoryEntry{}
	c.mu.Unlock()
	return nil
}

func cloneOptions(in []Option) []Option {
	if in == nil {
		return nil
	}
	return append([]Option(nil), in...)
}

// RedisCache 多个进程共享的Redis缓存，键为 app:dict:option:<key>
type RedisCache struct {
	store *storage.Redis
	ttl   time.Duration
}

// NewRedisCache 创建Redis缓存
func NewRedisCache(store *storage.Redis, ttl time.Duration) *RedisCache {
	return &RedisCache{store: store, ttl: ttl}
}

func redisKey(key string) string {
	return fmt.Sprintf(constants.KeyDictOptions, key)
}

// Get 实现 Cache
func (c *RedisCache) Get(ctx context.Context, key string) ([]Option, bool, error) {
	raw, err := c.store.Get(ctx, redisKey(key))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var options []Option
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		// 内容损坏时当作未命中，由调用方重新拉取覆盖
		return nil, false, nil
	}
	return options, true, nil
}

// Set 实现 Cache
func (c *RedisCache) Set(ctx context.Context, key string, options []Option) error {
	data, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("序列化字典 %s 失败: %w", key, err)
	}
	return c.store.Set(ctx, redisKey(key), string(data), c.ttl)
}

// Invalidate 实现 Cache
func (c *RedisCache) Invalidate(ctx context.Context, key string) error {
	return c.store.Del(ctx, redisKey(key))
}

// Clear 实现 Cache
func (c *RedisCache) Clear(ctx context.Context) error {
	_, err := c.store.DeleteByPattern(ctx, constants.KeyDictOptionsPattern)
	return err
}
