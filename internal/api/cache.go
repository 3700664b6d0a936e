package api

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"atlas/internal/cache"
	"atlas/internal/logger"
)

// DefaultCacheTTL：响应缓存有效期；数据只在导入时变化
const DefaultCacheTTL = 24 * time.Hour

// Cache：响应体的读穿缓存；未命中或后端异常都视为 miss
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, b []byte)
}

// RedisCache：共享缓存，键带前缀以便与其他服务共用实例
type RedisCache struct {
	rc     *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(rc *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{rc: rc, prefix: "atlas:", ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := c.rc.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.L().Warn("redis_get_error", "key", key, "err", err)
		}
		return nil, false
	}
	return b, true
}

func (c *RedisCache) Set(ctx context.Context, key string, b []byte) {
	if err := c.rc.Set(ctx, c.prefix+key, b, c.ttl).Err(); err != nil {
		logger.L().Warn("redis_set_error", "key", key, "err", err)
	}
}

// MemoryCache：未配置 Redis 时的进程内缓存
type MemoryCache struct {
	lru *cache.LRU[string, []byte]
}

func NewMemoryCache(capacity int, ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{lru: cache.NewLRU[string, []byte](capacity, ttl)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) { return c.lru.Get(key) }

func (c *MemoryCache) Set(_ context.Context, key string, b []byte) { c.lru.Set(key, b) }

// 文档注释：多级缓存
// 背景：进程内 LRU 挡在 Redis 之前，热点键不必每次往返网络。
// 约束：按顺序查询，命中后回填之前的各级；写入所有级别；nil 级别跳过。
type TieredCache struct {
	tiers []Cache
}

func NewTieredCache(tiers ...Cache) *TieredCache {
	return &TieredCache{tiers: tiers}
}

func (c *TieredCache) Get(ctx context.Context, key string) ([]byte, bool) {
	for i, t := range c.tiers {
		if t == nil {
			continue
		}
		if b, ok := t.Get(ctx, key); ok {
			for _, up := range c.tiers[:i] {
				if up != nil {
					up.Set(ctx, key, b)
				}
			}
			return b, true
		}
	}
	return nil, false
}

func (c *TieredCache) Set(ctx context.Context, key string, b []byte) {
	for _, t := range c.tiers {
		if t != nil {
			t.Set(ctx, key, b)
		}
	}
}
