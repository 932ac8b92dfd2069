// Package manager 提供按 (chat, player) 串行化游戏状态变更的锁。
package manager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/pigfarm/pkg/config"
	"github.com/lk2023060901/pigfarm/pkg/database/redis"
	"github.com/lk2023060901/pigfarm/pkg/logger"
)

const lockKeyPrefix = "pigfarm:lock:"

// Config 锁配置
type Config struct {
	// Distributed 同时获取 Redis 分布式锁，多实例部署时开启
	Distributed bool `mapstructure:"distributed" json:"distributed" yaml:"distributed"`
	// TTL 分布式锁过期时间
	TTL time.Duration `mapstructure:"ttl" json:"ttl" yaml:"ttl"`
	// RetryInterval 获取分布式锁的重试间隔
	RetryInterval time.Duration `mapstructure:"retry_interval" json:"retry_interval" yaml:"retry_interval"`
	// MaxRetries 获取分布式锁的最大重试次数
	MaxRetries int `mapstructure:"max_retries" json:"max_retries" yaml:"max_retries"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		TTL:           5 * time.Second,
		RetryInterval: 50 * time.Millisecond,
		MaxRetries:    40,
	}
}

type keyedMutex struct {
	mu   sync.Mutex
	refs int
}

// CreatureLocker 带引用计数的按键互斥锁
type CreatureLocker struct {
	config *Config
	redis  *redis.Client
	logger logger.Logger

	mu    sync.Mutex
	locks map[string]*keyedMutex
}

// NewCreatureLocker 创建锁管理器，rdb 为 nil 时只使用进程内锁
func NewCreatureLocker(cfg *Config, rdb *redis.Client, l logger.Logger) (*CreatureLocker, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge lock config")
	}
	if newCfg.Distributed && rdb == nil {
		return nil, errors.New("distributed lock requires redis")
	}

	return &CreatureLocker{
		config: newCfg,
		redis:  rdb,
		logger: logger.OrDefault(l).Named("manager.locker"),
		locks:  make(map[string]*keyedMutex),
	}, nil
}

// Key 锁键 pigfarm:lock:<chat>:<player>
func Key(chatID, userID int64) string {
	return fmt.Sprintf("%s%d:%d", lockKeyPrefix, chatID, userID)
}

// WithLock 持有 (chat, player) 的锁执行 fn
func (m *CreatureLocker) WithLock(ctx context.Context, chatID, userID int64, fn func() error) error {
	key := Key(chatID, userID)

	km := m.acquire(key)
	defer m.release(key, km)

	if !m.config.Distributed {
		return fn()
	}

	err := m.redis.WithLockRetry(ctx, key, m.config.TTL, m.config.RetryInterval, m.config.MaxRetries, fn)
	if errors.Is(err, redis.ErrLockFailed) {
		m.logger.WarnContext(ctx, "failed to acquire distributed lock", "key", key)
	}
	return err
}

func (m *CreatureLocker) acquire(key string) *keyedMutex {
	m.mu.Lock()
	km, ok := m.locks[key]
	if !ok {
		km = &keyedMutex{}
		m.locks[key] = km
	}
	km.refs++
	m.mu.Unlock()

	km.mu.Lock()
	return km
}

func (m *CreatureLocker) release(key string, km *keyedMutex) {
	km.mu.Unlock()

	m.mu.Lock()
	km.refs--
	if km.refs == 0 {
		delete(m.locks, key)
	}
	m.mu.Unlock()
}

// Len 当前持有或等待中的键数量
func (m *CreatureLocker) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
