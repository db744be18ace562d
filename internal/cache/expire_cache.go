package cache

import (
	"sync"
	"time"
)

// ExpireCache 进程内带 TTL 的只读缓存
// 用于记忆化读多写少的查询（全局设置、用户权限集合），写路径一律不读它
type ExpireCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]expireEntry
}

type expireEntry struct {
	value    interface{}
	deadline time.Time
}

// NewExpireCache 创建缓存，ttl 必须为正
func NewExpireCache(ttl time.Duration) *ExpireCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &ExpireCache{
		ttl:     ttl,
		entries: make(map[string]expireEntry),
	}
}

// Get 读取缓存，过期视为未命中
func (c *ExpireCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.deadline) {
		return nil, false
	}
	return entry.value, true
}

// Set 写入缓存并重置过期时间
func (c *ExpireCache) Set(key string, value interface{}) {
	c.mu.Lock()
	c.entries[key] = expireEntry{value: value, deadline: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Delete 删除缓存项
func (c *ExpireCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Purge 清空全部缓存项
func (c *ExpireCache) Purge() {
	c.mu.Lock()
	c.entries = make(map[string]expireEntry)
	c.mu.Unlock()
}
