package redis

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/pigfarm/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Client Redis 客户端（隐藏 go-redis 类型，支持主从读写分离）
type Client struct {
	master     redis.UniversalClient   // 主节点（或单机/集群客户端）
	slaves     []redis.UniversalClient // 从节点列表（主从模式）
	cfg        *Config
	logger     logger.Logger
	slaveIndex atomic.Uint64
}

// Option 客户端选项
type Option func(*Client)

// WithLogger 设置日志记录器
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient 创建 Redis 客户端，连接在首次使用时建立
func NewClient(cfg *Config, opts ...Option) (*Client, error) {
	newCfg, err := mergeConfig(cfg)
	if err != nil {
		return nil, err
	}
	if err := newCfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{cfg: newCfg}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logger.OrDefault(c.logger).Named("redis")

	switch {
	case newCfg.IsStandalone():
		c.master = redis.NewClient(c.nodeOptions(newCfg.Standalone))
	case newCfg.IsMasterSlave():
		c.master = redis.NewClient(c.nodeOptions(newCfg.Master))
		for i := range newCfg.Slaves {
			c.slaves = append(c.slaves, redis.NewClient(c.nodeOptions(&newCfg.Slaves[i])))
		}
	default:
		c.master = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:           newCfg.Cluster.Addrs,
			Password:        newCfg.Cluster.Password,
			MaxIdleConns:    newCfg.Pool.MaxIdleConns,
			MaxActiveConns:  newCfg.Pool.MaxOpenConns,
			ConnMaxLifetime: newCfg.Pool.ConnMaxLifetime,
			ConnMaxIdleTime: newCfg.Pool.ConnMaxIdleTime,
			DialTimeout:     newCfg.Pool.DialTimeout,
			ReadTimeout:     newCfg.Pool.ReadTimeout,
			WriteTimeout:    newCfg.Pool.WriteTimeout,
			PoolTimeout:     newCfg.Pool.PoolTimeout,
		})
	}

	return c, nil
}

func (c *Client) nodeOptions(node *NodeConfig) *redis.Options {
	return &redis.Options{
		Addr:            fmt.Sprintf("%s:%d", node.Host, node.Port),
		Password:        node.Password,
		DB:              node.DB,
		MaxIdleConns:    c.cfg.Pool.MaxIdleConns,
		MaxActiveConns:  c.cfg.Pool.MaxOpenConns,
		ConnMaxLifetime: c.cfg.Pool.ConnMaxLifetime,
		ConnMaxIdleTime: c.cfg.Pool.ConnMaxIdleTime,
		DialTimeout:     c.cfg.Pool.DialTimeout,
		ReadTimeout:     c.cfg.Pool.ReadTimeout,
		WriteTimeout:    c.cfg.Pool.WriteTimeout,
		PoolTimeout:     c.cfg.Pool.PoolTimeout,
	}
}

// getMaster 获取主节点（用于写操作）
func (c *Client) getMaster() redis.UniversalClient {
	return c.master
}

// getSlave 获取从节点（用于读操作），无从节点时回落到主节点
func (c *Client) getSlave() redis.UniversalClient {
	if len(c.slaves) == 0 {
		return c.master
	}

	switch c.cfg.GetSlaveLoadBalance() {
	case "round_robin":
		index := c.slaveIndex.Add(1) % uint64(len(c.slaves))
		return c.slaves[index]
	default:
		return c.slaves[rand.IntN(len(c.slaves))]
	}
}

// Ping 测试主节点与所有从节点连接
func (c *Client) Ping(ctx context.Context) error {
	if err := c.master.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "master ping failed")
	}
	for i, slave := range c.slaves {
		if err := slave.Ping(ctx).Err(); err != nil {
			return errors.Wrapf(err, "slave[%d] ping failed", i)
		}
	}
	return nil
}

// PoolStats 获取主节点连接池统计信息
func (c *Client) PoolStats() PoolStats {
	stats := c.master.PoolStats()
	return PoolStats{
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
		StaleConns: stats.StaleConns,
	}
}

// Close 关闭所有节点，返回遇到的第一个错误
func (c *Client) Close() error {
	var firstErr error
	if err := c.master.Close(); err != nil {
		firstErr = errors.Wrap(err, "failed to close master")
	}
	for i, slave := range c.slaves {
		if err := slave.Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "failed to close slave[%d]", i)
		}
	}
	return firstErr
}
