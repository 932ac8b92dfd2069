package postgres

import (
	"context"
	"math/rand/v2"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lk2023060901/pigfarm/pkg/logger"
)

// Client PostgreSQL 客户端，写走主库，读按策略分发到从库
type Client struct {
	master *pgxpool.Pool
	slaves []*pgxpool.Pool
	cfg    *Config
	logger logger.Logger

	slaveIndex atomic.Uint64
}

// Option 客户端选项
type Option func(*Client)

// WithLogger 设置日志记录器
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New 创建 PostgreSQL 客户端并探测主库连通性
func New(cfg *Config, opts ...Option) (*Client, error) {
	newCfg, err := MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge config")
	}
	if !newCfg.IsDSNMode() && !newCfg.IsStandaloneMode() && !newCfg.IsMasterSlaveMode() {
		newCfg.Standalone = DefaultStandalone()
	}
	if err := newCfg.Validate(); err != nil {
		return nil, err
	}

	client := &Client{cfg: newCfg}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logger.OrDefault(client.logger).Named("postgres")

	switch {
	case newCfg.IsDSNMode():
		client.master, err = createPool(newCfg, newCfg.DSN)
	case newCfg.IsStandaloneMode():
		client.master, err = createPool(newCfg, newCfg.Standalone.BuildDSN())
	default:
		client.master, err = createPool(newCfg, newCfg.Master.BuildDSN())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create primary pool")
	}

	// 从库不可用时读流量回落到主库
	for i := range newCfg.Slaves {
		slavePool, err := createPool(newCfg, newCfg.Slaves[i].BuildDSN())
		if err != nil {
			client.logger.Warn("failed to create slave pool", "index", i, "error", err)
			continue
		}
		client.slaves = append(client.slaves, slavePool)
	}

	return client, nil
}

// Config 返回生效的配置
func (c *Client) Config() *Config {
	return c.cfg
}

func (c *Client) getMaster() *pgxpool.Pool {
	return c.master
}

func (c *Client) getSlave() *pgxpool.Pool {
	if len(c.slaves) == 0 {
		return c.master
	}

	switch c.cfg.GetSlaveLoadBalance() {
	case LoadBalanceRoundRobin:
		idx := c.slaveIndex.Add(1)
		return c.slaves[idx%uint64(len(c.slaves))]
	default:
		return c.slaves[rand.IntN(len(c.slaves))]
	}
}

// Close 关闭所有连接池
func (c *Client) Close() {
	if c.master != nil {
		c.master.Close()
	}
	for _, slave := range c.slaves {
		slave.Close()
	}
}

// Ping 检查主库连接，从库失败只记录日志
func (c *Client) Ping(ctx context.Context) error {
	if err := c.master.Ping(ctx); err != nil {
		return errors.Wrap(err, "master ping failed")
	}
	for i, slave := range c.slaves {
		if err := slave.Ping(ctx); err != nil {
			c.logger.Warn("slave ping failed", "index", i, "error", err)
		}
	}
	return nil
}

// Stats 获取主库连接池状态
func (c *Client) Stats() *PoolStats {
	return statsOf(c.master)
}

// SlaveStats 获取所有从库连接池状态
func (c *Client) SlaveStats() []*PoolStats {
	stats := make([]*PoolStats, len(c.slaves))
	for i, slave := range c.slaves {
		stats[i] = statsOf(slave)
	}
	return stats
}

func createPool(cfg *Config, dsn string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse pool config")
	}

	poolConfig.MaxConns = cfg.Pool.MaxConns
	poolConfig.MinConns = cfg.Pool.MinConns
	poolConfig.MaxConnLifetime = cfg.Pool.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Pool.MaxConnIdleTime
	poolConfig.HealthCheckPeriod = cfg.Pool.HealthCheckPeriod
	if cfg.ConnectTimeout > 0 {
		poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}
	return pool, nil
}
