package lru

import (
	"container/list"
	"sync"
	"time"

	"github.com/lk2023060901/pigfarm/pkg/config"
)

// Cache 通用缓存接口
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	SetWithTTL(key K, value V, ttl time.Duration)
	GetOrCreate(key K, create func() V) V
	Delete(key K)
	Len() int
	Clear()
	Close() error
}

// Config LRU 配置
type Config struct {
	// 最大容量，超出时淘汰最久未使用的条目
	MaxSize int `mapstructure:"max_size" json:"max_size" yaml:"max_size"`
	// 默认过期时间，0 表示永不过期
	DefaultTTL time.Duration `mapstructure:"default_ttl" json:"default_ttl" yaml:"default_ttl"`
	// 后台清理间隔，0 表示仅在访问时惰性清理
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" json:"cleanup_interval" yaml:"cleanup_interval"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		MaxSize: 1024,
	}
}

var _ Cache[string, int] = (*LRU[string, int])(nil)

// LRU 基于内存的 LRU 缓存实现
type LRU[K comparable, V any] struct {
	config *Config
	order  *list.List
	items  map[K]*list.Element
	mu     sync.Mutex

	stopCh    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	onEvict func(key K, value V)
}

type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time // 零值表示永不过期
}

func (e *entry[K, V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Option LRU 配置选项
type Option[K comparable, V any] func(*LRU[K, V])

// WithOnEvict 设置淘汰回调（容量淘汰、过期清理与 Delete 都会触发）
func WithOnEvict[K comparable, V any](fn func(key K, value V)) Option[K, V] {
	return func(c *LRU[K, V]) {
		c.onEvict = fn
	}
}

// New 创建 LRU 缓存
func New[K comparable, V any](cfg *Config, opts ...Option[K, V]) *LRU[K, V] {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		newCfg = DefaultConfig()
	}
	if newCfg.MaxSize < 1 {
		newCfg.MaxSize = DefaultConfig().MaxSize
	}

	c := &LRU[K, V]{
		config: newCfg,
		order:  list.New(),
		items:  make(map[K]*list.Element),
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	if newCfg.CleanupInterval > 0 {
		c.wg.Add(1)
		go c.cleanupLoop(newCfg.CleanupInterval)
	}
	return c
}

func (c *LRU[K, V]) cleanupLoop(interval time.Duration) {
	defer c.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stopCh:
			return
		}
	}
}

func (c *LRU[K, V]) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for e := c.order.Back(); e != nil; {
		prev := e.Prev()
		if e.Value.(*entry[K, V]).expired(now) {
			c.removeElement(e)
		}
		e = prev
	}
}

// Get 获取值，过期条目视为不存在
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.lookup(key, time.Now()); ok {
		return ent.value, true
	}
	var zero V
	return zero, false
}

// Set 设置值（使用默认 TTL）
func (c *LRU[K, V]) Set(key K, value V) {
	c.SetWithTTL(key, value, c.config.DefaultTTL)
}

// SetWithTTL 设置值，ttl <= 0 表示永不过期
func (c *LRU[K, V]) SetWithTTL(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		ent := elem.Value.(*entry[K, V])
		ent.value = value
		ent.expiresAt = deadline(ttl)
		return
	}
	c.insert(key, value, ttl)
}

// GetOrCreate 原子地获取或创建，create 在锁内执行且只对缺失的 key 调用
func (c *LRU[K, V]) GetOrCreate(key K, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.lookup(key, time.Now()); ok {
		return ent.value
	}
	value := create()
	c.insert(key, value, c.config.DefaultTTL)
	return value
}

// Delete 删除
func (c *LRU[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

// Len 返回当前条目数（可能包含尚未清理的过期条目）
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear 清空缓存，不触发淘汰回调
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.items = make(map[K]*list.Element)
}

// Close 停止后台清理，可重复调用
func (c *LRU[K, V]) Close() error {
	c.closeOnce.Do(func() { close(c.stopCh) })
	c.wg.Wait()
	return nil
}

func (c *LRU[K, V]) lookup(key K, now time.Time) (*entry[K, V], bool) {
	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	ent := elem.Value.(*entry[K, V])
	if ent.expired(now) {
		c.removeElement(elem)
		return nil, false
	}
	c.order.MoveToFront(elem)
	return ent, true
}

func (c *LRU[K, V]) insert(key K, value V, ttl time.Duration) {
	elem := c.order.PushFront(&entry[K, V]{key: key, value: value, expiresAt: deadline(ttl)})
	c.items[key] = elem
	for c.order.Len() > c.config.MaxSize {
		c.removeElement(c.order.Back())
	}
}

func (c *LRU[K, V]) removeElement(elem *list.Element) {
	c.order.Remove(elem)
	ent := elem.Value.(*entry[K, V])
	delete(c.items, ent.key)
	if c.onEvict != nil {
		c.onEvict(ent.key, ent.value)
	}
}

func deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}
