package redis

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/pigfarm/pkg/config"
)

// Config Redis 配置（Standalone/Master-Slave/Cluster 三种模式，必须且只能配置一种）
type Config struct {
	// 是否启用，关闭时调用方应退化到无缓存、进程内锁
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled"`

	Standalone *NodeConfig `mapstructure:"standalone" json:"standalone,omitempty" yaml:"standalone,omitempty"`

	Master *NodeConfig  `mapstructure:"master" json:"master,omitempty" yaml:"master,omitempty"`
	Slaves []NodeConfig `mapstructure:"slaves" json:"slaves,omitempty" yaml:"slaves,omitempty"`

	Cluster *ClusterConfig `mapstructure:"cluster" json:"cluster,omitempty" yaml:"cluster,omitempty"`

	// 连接池配置（所有模式共享）
	Pool PoolConfig `mapstructure:"pool" json:"pool" yaml:"pool"`

	// 从库负载均衡策略（主从模式）: random（默认）、round_robin
	SlaveLoadBalance string `mapstructure:"slave_load_balance" json:"slave_load_balance,omitempty" yaml:"slave_load_balance,omitempty"`
}

// NodeConfig 单节点配置
type NodeConfig struct {
	Host     string `mapstructure:"host" json:"host" yaml:"host"`
	Port     int    `mapstructure:"port" json:"port" yaml:"port"`
	Password string `mapstructure:"password" json:"password" yaml:"password"`
	DB       int    `mapstructure:"db" json:"db" yaml:"db"` // 0-15
}

// ClusterConfig 集群配置
type ClusterConfig struct {
	Addrs    []string `mapstructure:"addrs" json:"addrs" yaml:"addrs"` // host:port
	Password string   `mapstructure:"password" json:"password" yaml:"password"`
}

// PoolConfig 连接池配置
type PoolConfig struct {
	MaxIdleConns    int           `mapstructure:"max_idle_conns" json:"max_idle_conns" yaml:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" json:"max_open_conns" yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" json:"conn_max_lifetime" yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" json:"conn_max_idle_time" yaml:"conn_max_idle_time"`
	DialTimeout     time.Duration `mapstructure:"dial_timeout" json:"dial_timeout" yaml:"dial_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" json:"write_timeout" yaml:"write_timeout"`
	// 从连接池获取连接的超时时间
	PoolTimeout time.Duration `mapstructure:"pool_timeout" json:"pool_timeout" yaml:"pool_timeout"`
}

// DefaultConfig 默认配置，不包含节点定义
func DefaultConfig() *Config {
	return &Config{
		Pool: PoolConfig{
			MaxIdleConns: 8,
			MaxOpenConns: 64,
			DialTimeout:  3 * time.Second,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			PoolTimeout:  2 * time.Second,
		},
	}
}

// DefaultStandalone 本地默认节点
func DefaultStandalone() *NodeConfig {
	return &NodeConfig{Host: "localhost", Port: 6379}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}

	modeCount := 0
	for _, set := range []bool{c.IsStandalone(), c.IsMasterSlave(), c.IsCluster()} {
		if set {
			modeCount++
		}
	}
	if modeCount != 1 {
		return ErrInvalidConfig
	}

	if c.IsCluster() && len(c.Cluster.Addrs) == 0 {
		return errors.Wrap(ErrInvalidConfig, "cluster addrs is empty")
	}

	if c.IsMasterSlave() && len(c.Slaves) > 0 {
		switch c.SlaveLoadBalance {
		case "", "random", "round_robin":
		default:
			return ErrInvalidSlaveLoadBalance
		}
	}
	return nil
}

// IsStandalone 是否为单机模式
func (c *Config) IsStandalone() bool {
	return c.Standalone != nil
}

// IsMasterSlave 是否为主从模式
func (c *Config) IsMasterSlave() bool {
	return c.Master != nil
}

// IsCluster 是否为集群模式
func (c *Config) IsCluster() bool {
	return c.Cluster != nil
}

// GetSlaveLoadBalance 获取从库负载均衡策略（默认为 random）
func (c *Config) GetSlaveLoadBalance() string {
	if c.SlaveLoadBalance == "" {
		return "random"
	}
	return c.SlaveLoadBalance
}

func mergeConfig(cfg *Config) (*Config, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge redis config")
	}
	if !newCfg.IsStandalone() && !newCfg.IsMasterSlave() && !newCfg.IsCluster() {
		newCfg.Standalone = DefaultStandalone()
	}
	return newCfg, nil
}
