package utils

import (
	"Go_Site/model"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis cache client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
	}
}

// Get reads a cached value.
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

// Set writes a cached value.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, string(data), expiration).Err()
}

// Delete removes a cache entry.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// BuildCacheKey builds a cache key.
func BuildCacheKey(prefix string, params ...interface{}) string {
	key := prefix
	for _, param := range params {
		key += fmt.Sprintf(":%v", param)
	}
	return key
}

const CacheKeyAsset = "asset"

// AssetCache is a cache-aside helper for asset reads. A nil cache disables it.
type AssetCache struct {
	cache Cache
	ttl   time.Duration
}

// NewAssetCache wraps cache; pass nil to get a disabled AssetCache.
func NewAssetCache(cache Cache, ttl time.Duration) *AssetCache {
	return &AssetCache{cache: cache, ttl: ttl}
}

// Get reads a cached asset by id.
func (a *AssetCache) Get(ctx context.Context, id string) (*model.Asset, bool) {
	if a == nil || a.cache == nil {
		return nil, false
	}
	var result model.Asset
	if err := a.cache.Get(ctx, BuildCacheKey(CacheKeyAsset, id), &result); err != nil {
		return nil, false
	}
	return &result, true
}

// Set writes an asset under its id. Name lookups always go to the registry
// so uniqueness checks never see a stale entry.
func (a *AssetCache) Set(ctx context.Context, asset *model.Asset) {
	if a == nil || a.cache == nil || asset == nil {
		return
	}
	_ = a.cache.Set(ctx, BuildCacheKey(CacheKeyAsset, asset.ID), asset, a.ttl)
}

// Invalidate clears the cached asset.
func (a *AssetCache) Invalidate(ctx context.Context, id string) {
	if a == nil || a.cache == nil {
		return
	}
	_ = a.cache.Delete(ctx, BuildCacheKey(CacheKeyAsset, id))
}
