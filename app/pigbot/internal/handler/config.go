package handler

import (
	"time"

	"github.com/lk2023060901/pigfarm/pkg/ratelimit"
)

// Config 事件泵配置
type Config struct {
	// 并发处理事件的协程数
	Workers int `mapstructure:"workers" json:"workers" yaml:"workers" validate:"gte=1"`
	// 单个事件的处理超时
	TaskTimeout time.Duration `mapstructure:"task_timeout" json:"task_timeout" yaml:"task_timeout"`
	// 关闭时等待在途事件的时间
	DrainTimeout time.Duration `mapstructure:"drain_timeout" json:"drain_timeout" yaml:"drain_timeout"`

	// 按会话限流
	RateLimit ratelimit.Config `mapstructure:",squash" json:"rate_limit" yaml:",inline"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Workers:      64,
		TaskTimeout:  30 * time.Second,
		DrainTimeout: 10 * time.Second,
		RateLimit:    *ratelimit.DefaultConfig(),
	}
}
