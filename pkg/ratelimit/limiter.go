// Package ratelimit 提供按键隔离的令牌桶限流器。
//
// 每个键一个 rate.Limiter，保存在有容量上限的 LRU 中，长期不活跃的键会被淘汰。
package ratelimit

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/pigfarm/pkg/cache/lru"
	"github.com/lk2023060901/pigfarm/pkg/config"
	"github.com/lk2023060901/pigfarm/pkg/logger"
	"golang.org/x/time/rate"
)

// ErrInvalidConfig 无效配置
var ErrInvalidConfig = errors.New("ratelimit: invalid config")

// Config 限流配置
type Config struct {
	// 每个键每秒允许的事件数，<= 0 表示不限流
	RequestsPerSecond float64 `mapstructure:"rate_limit" json:"rate_limit" yaml:"rate_limit"`
	// 突发容量
	Burst int `mapstructure:"rate_burst" json:"rate_burst" yaml:"rate_burst"`
	// 同时跟踪的最大键数
	MaxKeys int `mapstructure:"max_chats" json:"max_chats" yaml:"max_chats"`
	// 键空闲多久后淘汰
	IdleTTL time.Duration `mapstructure:"limiter_ttl" json:"limiter_ttl" yaml:"limiter_ttl"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		RequestsPerSecond: 5,
		Burst:             10,
		MaxKeys:           10000,
		IdleTTL:           10 * time.Minute,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.RequestsPerSecond > 0 && c.Burst <= 0 {
		return errors.Wrap(ErrInvalidConfig, "burst must be positive")
	}
	if c.MaxKeys <= 0 {
		return errors.Wrap(ErrInvalidConfig, "max keys must be positive")
	}
	return nil
}

// Limiter 按键限流器
type Limiter[K comparable] struct {
	cfg      *Config
	limiters *lru.LRU[K, *rate.Limiter]
}

// New 创建限流器
func New[K comparable](cfg *Config, l logger.Logger) (*Limiter[K], error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge ratelimit config")
	}
	if err := newCfg.Validate(); err != nil {
		return nil, err
	}

	l = logger.OrDefault(l)
	return &Limiter[K]{
		cfg: newCfg,
		limiters: lru.New[K, *rate.Limiter](
			&lru.Config{
				MaxSize:         newCfg.MaxKeys,
				DefaultTTL:      newCfg.IdleTTL,
				CleanupInterval: newCfg.IdleTTL,
			},
			lru.WithOnEvict(func(key K, _ *rate.Limiter) {
				l.Debug("rate limiter evicted", "key", key)
			}),
		),
	}, nil
}

// Allow 键 key 当前是否还有令牌
func (rl *Limiter[K]) Allow(key K) bool {
	if rl.cfg.RequestsPerSecond <= 0 {
		return true
	}
	return rl.get(key).Allow()
}

// Wait 阻塞直到键 key 获得令牌或 ctx 结束
func (rl *Limiter[K]) Wait(ctx context.Context, key K) error {
	if rl.cfg.RequestsPerSecond <= 0 {
		return nil
	}
	return rl.get(key).Wait(ctx)
}

// Tracked 当前跟踪的键数
func (rl *Limiter[K]) Tracked() int {
	return rl.limiters.Len()
}

func (rl *Limiter[K]) get(key K) *rate.Limiter {
	return rl.limiters.GetOrCreate(key, func() *rate.Limiter {
		return rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst)
	})
}

// Close 停止后台清理
func (rl *Limiter[K]) Close() error {
	return rl.limiters.Close()
}
