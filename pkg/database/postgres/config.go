package postgres

import (
	"net/url"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/pigfarm/pkg/config"
)

// 从库负载均衡策略
const (
	LoadBalanceRandom     = "random"
	LoadBalanceRoundRobin = "round_robin"
)

// DBConfig 单个数据库实例配置
type DBConfig struct {
	Host     string `mapstructure:"host" json:"host" yaml:"host"`
	Port     int    `mapstructure:"port" json:"port" yaml:"port"`
	User     string `mapstructure:"user" json:"user" yaml:"user"`
	Password string `mapstructure:"password" json:"password" yaml:"password"`
	DBName   string `mapstructure:"db_name" json:"db_name" yaml:"db_name"`
	SSLMode  string `mapstructure:"ssl_mode" json:"ssl_mode" yaml:"ssl_mode"` // disable, require, verify-ca, verify-full
}

// BuildDSN 构建 postgres:// 形式的连接串，SSLMode 为空时使用 disable
func (c *DBConfig) BuildDSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + strconv.Itoa(c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + sslMode,
	}
	return u.String()
}

// PoolConfig 连接池配置
type PoolConfig struct {
	MaxConns          int32         `mapstructure:"max_conns" json:"max_conns" yaml:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns" json:"min_conns" yaml:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime" json:"max_conn_lifetime" yaml:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time" json:"max_conn_idle_time" yaml:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period" json:"health_check_period" yaml:"health_check_period"`
}

// Config PostgreSQL 配置
// DSN、Standalone、Master 三者互斥；都未配置时 New 使用本地默认实例
type Config struct {
	// 完整连接串，优先级最高（通常来自 DATABASE_URL）
	DSN string `mapstructure:"dsn" json:"dsn,omitempty" yaml:"dsn,omitempty"`

	// 单机模式配置
	Standalone *DBConfig `mapstructure:"standalone" json:"standalone,omitempty" yaml:"standalone,omitempty"`

	// 主从模式配置
	Master *DBConfig  `mapstructure:"master" json:"master,omitempty" yaml:"master,omitempty"`
	Slaves []DBConfig `mapstructure:"slaves" json:"slaves,omitempty" yaml:"slaves,omitempty"`

	Pool PoolConfig `mapstructure:"pool" json:"pool" yaml:"pool"`

	ConnectTimeout time.Duration `mapstructure:"connect_timeout" json:"connect_timeout" yaml:"connect_timeout"`
	// 单条语句超时，0 表示不限制
	QueryTimeout time.Duration `mapstructure:"query_timeout" json:"query_timeout" yaml:"query_timeout"`

	// 从库负载均衡策略（仅主从模式有效）: random, round_robin
	SlaveLoadBalance string `mapstructure:"slave_load_balance" json:"slave_load_balance,omitempty" yaml:"slave_load_balance,omitempty"`
}

// DefaultConfig 返回默认配置，不包含实例定义
func DefaultConfig() *Config {
	return &Config{
		Pool: PoolConfig{
			MaxConns:          25,
			MinConns:          2,
			MaxConnLifetime:   time.Hour,
			MaxConnIdleTime:   30 * time.Minute,
			HealthCheckPeriod: time.Minute,
		},
		ConnectTimeout: 10 * time.Second,
		QueryTimeout:   5 * time.Second,
	}
}

// DefaultStandalone 本地默认实例
func DefaultStandalone() *DBConfig {
	return &DBConfig{
		Host:    "localhost",
		Port:    5432,
		User:    "postgres",
		DBName:  "pigfarm",
		SSLMode: "disable",
	}
}

// MergeConfig 合并配置（使用通用的 config.MergeConfig）
func MergeConfig(dst, src *Config) (*Config, error) {
	return config.MergeConfig(dst, src)
}

// IsDSNMode 判断是否直接使用连接串
func (c *Config) IsDSNMode() bool {
	return c.DSN != ""
}

// IsStandaloneMode 判断是否为单机模式
func (c *Config) IsStandaloneMode() bool {
	return c.Standalone != nil
}

// IsMasterSlaveMode 判断是否为主从模式
func (c *Config) IsMasterSlaveMode() bool {
	return c.Master != nil
}

// GetSlaveLoadBalance 返回从库负载均衡策略，默认 random
func (c *Config) GetSlaveLoadBalance() string {
	if c.SlaveLoadBalance == "" {
		return LoadBalanceRandom
	}
	return c.SlaveLoadBalance
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}

	modes := 0
	for _, set := range []bool{c.IsDSNMode(), c.IsStandaloneMode(), c.IsMasterSlaveMode()} {
		if set {
			modes++
		}
	}
	switch {
	case modes > 1:
		return errors.Wrap(ErrInvalidConfig, "dsn, standalone and master-slave modes are mutually exclusive")
	case modes == 0:
		return errors.Wrap(ErrInvalidConfig, "must configure one of dsn, standalone or master-slave mode")
	}

	if c.IsStandaloneMode() {
		if err := c.Standalone.validate(); err != nil {
			return errors.Wrap(err, "invalid standalone config")
		}
	}
	if c.IsMasterSlaveMode() {
		if err := c.Master.validate(); err != nil {
			return errors.Wrap(err, "invalid master config")
		}
		for i := range c.Slaves {
			if err := c.Slaves[i].validate(); err != nil {
				return errors.Wrapf(err, "invalid slave %d config", i)
			}
		}
		switch c.GetSlaveLoadBalance() {
		case LoadBalanceRandom, LoadBalanceRoundRobin:
		default:
			return errors.Wrapf(ErrInvalidConfig, "unknown slave_load_balance %q", c.SlaveLoadBalance)
		}
	}

	if c.Pool.MaxConns <= 0 {
		return errors.Wrap(ErrInvalidConfig, "max_conns must be positive")
	}
	if c.Pool.MinConns < 0 {
		return errors.Wrap(ErrInvalidConfig, "min_conns must be non-negative")
	}
	if c.Pool.MinConns > c.Pool.MaxConns {
		return errors.Wrap(ErrInvalidConfig, "min_conns cannot be greater than max_conns")
	}
	return nil
}

func (c *DBConfig) validate() error {
	switch {
	case c.Host == "":
		return errors.Wrap(ErrInvalidConfig, "host is empty")
	case c.Port <= 0 || c.Port > 65535:
		return errors.Wrapf(ErrInvalidConfig, "invalid port %d", c.Port)
	case c.User == "":
		return errors.Wrap(ErrInvalidConfig, "user is empty")
	case c.DBName == "":
		return errors.Wrap(ErrInvalidConfig, "db_name is empty")
	}
	return nil
}
