package web

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
)

// Config Web 服务配置
type Config struct {
	Enabled      bool          `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Addr         string        `mapstructure:"addr" json:"addr" yaml:"addr"`
	Mode         string        `mapstructure:"mode" json:"mode" yaml:"mode"` // debug, release, test
	ReadTimeout  time.Duration `mapstructure:"read_timeout" json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" json:"write_timeout" yaml:"write_timeout"`
	// 优雅关机等待时间
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" json:"shutdown_timeout" yaml:"shutdown_timeout"`
	// 访问日志中跳过的路径，例如探针
	SkipLogPaths []string `mapstructure:"skip_log_paths" json:"skip_log_paths" yaml:"skip_log_paths"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Addr:            ":8081",
		Mode:            gin.ReleaseMode,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		SkipLogPaths:    []string{"/healthz", "/metrics"},
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.Wrap(ErrInvalidConfig, "addr is empty")
	}
	switch c.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown mode %q", c.Mode)
	}
	return nil
}
