package worker

import (
	"time"

	"github.com/cockroachdb/errors"
)

// Config 协程池配置
type Config struct {
	// 池容量（同时运行的任务上限）
	Size int `mapstructure:"size" json:"size" yaml:"size" validate:"gte=1"`
	// 非阻塞模式：池满时 Submit 立即返回 ErrPoolOverload
	NonBlocking bool `mapstructure:"non_blocking" json:"non_blocking" yaml:"non_blocking"`
	// 阻塞模式下等待中的提交者上限，0 表示不限制
	MaxBlockingTasks int `mapstructure:"max_blocking_tasks" json:"max_blocking_tasks" yaml:"max_blocking_tasks"`
	// 空闲 worker 的回收周期
	ExpiryDuration time.Duration `mapstructure:"expiry_duration" json:"expiry_duration" yaml:"expiry_duration"`
	// 是否预分配 worker 队列
	PreAlloc bool `mapstructure:"pre_alloc" json:"pre_alloc" yaml:"pre_alloc"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Size:           64,
		ExpiryDuration: 10 * time.Second,
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if c.Size < 1 {
		return errors.Wrapf(ErrInvalidConfig, "size must be >= 1, got %d", c.Size)
	}
	if c.MaxBlockingTasks < 0 {
		return errors.Wrapf(ErrInvalidConfig, "max_blocking_tasks must be >= 0, got %d", c.MaxBlockingTasks)
	}
	return nil
}
