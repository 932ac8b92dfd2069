package transport

import (
	"time"

	"github.com/cockroachdb/errors"
)

// ErrInvalidConfig 无效配置
var ErrInvalidConfig = errors.New("transport: invalid config")

// Config Telegram 传输配置
type Config struct {
	Token string `mapstructure:"token" json:"-" yaml:"token"`
	// 为空时使用官方地址，格式同 tgbotapi.APIEndpoint
	APIEndpoint string `mapstructure:"api_endpoint" json:"api_endpoint" yaml:"api_endpoint"`

	// 长轮询等待时间
	PollTimeout time.Duration `mapstructure:"poll_timeout" json:"poll_timeout" yaml:"poll_timeout"`
	// 单次拉取的最大更新数
	PollLimit int `mapstructure:"poll_limit" json:"poll_limit" yaml:"poll_limit"`
	// 拉取失败后的等待时间
	RetryDelay time.Duration `mapstructure:"retry_delay" json:"retry_delay" yaml:"retry_delay"`
	// 非轮询请求的 HTTP 超时
	RequestTimeout time.Duration `mapstructure:"request_timeout" json:"request_timeout" yaml:"request_timeout"`
	StopTimeout    time.Duration `mapstructure:"stop_timeout" json:"stop_timeout" yaml:"stop_timeout"`

	Debug bool `mapstructure:"debug" json:"debug" yaml:"debug"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		PollTimeout:    30 * time.Second,
		PollLimit:      100,
		RetryDelay:     3 * time.Second,
		RequestTimeout: 10 * time.Second,
		StopTimeout:    5 * time.Second,
	}
}

// Validate 验证轮询参数
func (c *Config) Validate() error {
	if c.PollTimeout < 0 {
		return errors.Wrap(ErrInvalidConfig, "poll timeout must not be negative")
	}
	if c.PollLimit <= 0 || c.PollLimit > 100 {
		return errors.Wrap(ErrInvalidConfig, "poll limit must be in (0, 100]")
	}
	if c.RetryDelay <= 0 {
		return errors.Wrap(ErrInvalidConfig, "retry delay must be positive")
	}
	return nil
}
