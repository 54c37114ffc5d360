package cache

import (
	"sync"
	"time"
)

// entry 缓存条目，只归 TTLCache 所有
type entry struct {
	value     any
	expiresAt time.Time
}

// TTLCache 实现了 port.Cache 接口
// 只按时间过期，没有容量上限：键空间受限于一个进程内引用到的仓库数量
type TTLCache struct {
	mu      sync.Mutex
	entries map[string]entry
	nowFunc func() time.Time
}

// New 创建一个空缓存，由调用方注入到各个服务中
func New() *TTLCache {
	return &TTLCache{
		entries: make(map[string]entry),
		nowFunc: time.Now, // 便于测试注入当前时间
	}
}

// Set 写入并覆盖已有条目，expiresAt = now + ttl
func (c *TTLCache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		value:     value,
		expiresAt: c.nowFunc().Add(ttl),
	}
}

// Get 只在 now < expiresAt 时返回值；过期条目会被顺手删除
func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.nowFunc().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Delete 删除条目，键不存在时什么也不做
func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Getter 是 Lookup 需要的最小接口
type Getter interface {
	Get(key string) (any, bool)
}

// Lookup 按类型读取缓存，类型不匹配按未命中处理
func Lookup[T any](c Getter, key string) (T, bool) {
	var zero T
	raw, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return v, true
}
