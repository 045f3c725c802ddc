package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryCache 进程内 LRU 缓存，保存编码后的字节，读取方拿到的是副本
type MemoryCache struct {
	lru *expirable.LRU[string, []byte]
}

var _ Cache = (*MemoryCache)(nil)

func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = 1024
	}
	return &MemoryCache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (m *MemoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	data, ok := m.lru.Get(key)
	recordLookup("memory", ok)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		m.lru.Remove(key)
		return false, err
	}
	return true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.lru.Add(key, data)
	return nil
}

func (m *MemoryCache) InvalidateAll(_ context.Context) error {
	m.lru.Purge()
	metricsInvalidated("memory")
	return nil
}

func (m *MemoryCache) Len() int {
	return m.lru.Len()
}
