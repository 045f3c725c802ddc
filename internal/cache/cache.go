// Package cache 提供商品目录的读缓存，任何目录写操作都会整体失效
package cache

import (
	"context"
	"fmt"
	"time"

	"coffeeshop-backend/internal/metrics"
	"coffeeshop-backend/internal/util"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Cache 目录缓存抽象
type Cache interface {
	// Get 命中时把值解码到 dest 并返回 true
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	InvalidateAll(ctx context.Context) error
}

// GetOrLoad 先查缓存，未命中时调用 load 并回填；缓存故障只记日志
func GetOrLoad[T any](ctx context.Context, c Cache, key string, load func() (T, error)) (T, error) {
	var cached T
	hit, err := c.Get(ctx, key, &cached)
	if err != nil {
		util.Logger.Warn("读取缓存失败", zap.String("key", key), zap.Error(err))
		hit = false
	}
	if hit {
		return cached, nil
	}

	value, err := load()
	if err != nil {
		return value, err
	}
	if err := c.Set(ctx, key, value); err != nil {
		util.Logger.Warn("写入缓存失败", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}

// Key 拼接缓存键
func Key(parts ...interface{}) string {
	key := ""
	for i, p := range parts {
		if i > 0 {
			key += ":"
		}
		key += fmt.Sprint(p)
	}
	return key
}

// New 按驱动名创建缓存
func New(driver string, size int, ttl time.Duration, redisOpts RedisOptions) (Cache, error) {
	switch driver {
	case "memory", "":
		return NewMemoryCache(size, ttl), nil
	case "redis":
		return NewRedisCache(redisOpts, ttl), nil
	}
	return nil, fmt.Errorf("unsupported cache driver %q", driver)
}

func recordLookup(driver string, hit bool) {
	if hit {
		metrics.CacheHits.WithLabelValues(driver).Inc()
		return
	}
	metrics.CacheMisses.WithLabelValues(driver).Inc()
}

func metricsInvalidated(driver string) {
	metrics.CacheInvalidations.WithLabelValues(driver).Inc()
}
