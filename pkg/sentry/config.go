package sentry

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
)

// Config Sentry 配置
type Config struct {
	// 未启用时客户端所有上报均为空操作
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled"`

	DSN         string `mapstructure:"dsn" json:"dsn" yaml:"dsn"`
	Environment string `mapstructure:"environment" json:"environment" yaml:"environment"`
	Release     string `mapstructure:"release" json:"release" yaml:"release"`
	ServerName  string `mapstructure:"server_name" json:"server_name" yaml:"server_name"`

	// 错误采样率 (0.0-1.0)
	SampleRate float64 `mapstructure:"sample_rate" json:"sample_rate" yaml:"sample_rate"`

	AttachStacktrace bool `mapstructure:"attach_stacktrace" json:"attach_stacktrace" yaml:"attach_stacktrace"`
	MaxBreadcrumbs   int  `mapstructure:"max_breadcrumbs" json:"max_breadcrumbs" yaml:"max_breadcrumbs"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" json:"shutdown_timeout" yaml:"shutdown_timeout"`

	Debug bool `mapstructure:"debug" json:"debug" yaml:"debug"`

	// 全局标签
	Tags map[string]string `mapstructure:"tags" json:"tags" yaml:"tags"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Environment:      "production",
		SampleRate:       1.0,
		AttachStacktrace: true,
		MaxBreadcrumbs:   100,
		ShutdownTimeout:  2 * time.Second,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.DSN == "" {
		return ErrInvalidDSN
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return errors.Wrapf(ErrInvalidConfig, "sample_rate %v out of range", c.SampleRate)
	}
	if c.MaxBreadcrumbs < 0 {
		return errors.Wrap(ErrInvalidConfig, "max_breadcrumbs is negative")
	}
	return nil
}

func (c *Config) toClientOptions() sentry.ClientOptions {
	return sentry.ClientOptions{
		Dsn:              c.DSN,
		Environment:      c.Environment,
		Release:          c.Release,
		ServerName:       c.ServerName,
		SampleRate:       c.SampleRate,
		AttachStacktrace: c.AttachStacktrace,
		MaxBreadcrumbs:   c.MaxBreadcrumbs,
		Debug:            c.Debug,
	}
}
