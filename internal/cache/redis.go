package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisPrefix = "coffeeshop:catalog:"

// RedisOptions Redis 连接参数
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisCache 多实例共享的缓存。失效时递增代号，旧代号下的键随 TTL 过期
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Cache = (*RedisCache)(nil)

func NewRedisCache(opts RedisOptions, ttl time.Duration) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &RedisCache{client: client, ttl: ttl}
}

func generationKey() string {
	return redisPrefix + "generation"
}

func (r *RedisCache) generation(ctx context.Context) (int64, error) {
	gen, err := r.client.Get(ctx, generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func dataKey(gen int64, key string) string {
	return redisPrefix + strconv.FormatInt(gen, 10) + ":" + key
}

func (r *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	gen, err := r.generation(ctx)
	if err != nil {
		return false, err
	}

	data, err := r.client.Get(ctx, dataKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		recordLookup("redis", false)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		// 结构变更后的旧值，删除并按未命中处理
		r.client.Del(ctx, dataKey(gen, key))
		recordLookup("redis", false)
		return false, err
	}
	recordLookup("redis", true)
	return true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value interface{}) error {
	gen, err := r.generation(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, dataKey(gen, key), data, r.ttl).Err()
}

func (r *RedisCache) InvalidateAll(ctx context.Context) error {
	if err := r.client.Incr(ctx, generationKey()).Err(); err != nil {
		return err
	}
	metricsInvalidated("redis")
	return nil
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
