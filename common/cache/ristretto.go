package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// GeneralCache 进程内字符串缓存，支持 TTL
type GeneralCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewGeneralCache maxCost 为条目上限（每个条目成本记 1），ttl 为默认过期时间
func NewGeneralCache(maxCost int64, ttl time.Duration) (*GeneralCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxCost * 10,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 ristretto 缓存失败: %w", err)
	}

	return &GeneralCache{
		cache: cache,
		ttl:   ttl,
	}, nil
}

// Set 使用默认 TTL 写入；写入是异步的，返回 false 表示被准入策略丢弃
func (c *GeneralCache) Set(key, value string) bool {
	return c.cache.SetWithTTL(key, value, 1, c.ttl)
}

func (c *GeneralCache) GetString(key string) (string, bool) {
	value, ok := c.cache.Get(key)
	if !ok {
		return "", false
	}
	str, ok := value.(string)
	return str, ok
}

func (c *GeneralCache) Delete(key string) {
	c.cache.Del(key)
}

// Wait 等待缓冲区中的写入全部生效
func (c *GeneralCache) Wait() {
	c.cache.Wait()
}

func (c *GeneralCache) Close() {
	c.cache.Close()
}
