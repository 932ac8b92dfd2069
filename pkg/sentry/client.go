package sentry

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
	"github.com/lk2023060901/pigfarm/pkg/config"
)

// Client Sentry 客户端，持有独立的 Hub
//
// 配置未启用时 hub 为 nil，所有上报方法直接返回 nil。
type Client struct {
	hub    *sentry.Hub
	config *Config
	closed atomic.Bool

	beforeSend func(*sentry.Event, *sentry.EventHint) *sentry.Event

	stats struct {
		eventsTotal    atomic.Uint64
		eventsCaptured atomic.Uint64
		eventsDropped  atomic.Uint64
	}
}

// Option 客户端选项
type Option func(*Client)

// WithBeforeSend 设置事件发送前的回调，返回 nil 则丢弃事件
func WithBeforeSend(fn func(*sentry.Event, *sentry.EventHint) *sentry.Event) Option {
	return func(c *Client) { c.beforeSend = fn }
}

// New 创建 Sentry 客户端
func New(cfg *Config, opts ...Option) (*Client, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge sentry config")
	}
	if err := newCfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{config: newCfg}
	for _, opt := range opts {
		opt(c)
	}

	if !newCfg.Enabled {
		return c, nil
	}

	clientOpts := newCfg.toClientOptions()
	clientOpts.BeforeSend = c.beforeSend
	sc, err := sentry.NewClient(clientOpts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create sentry client")
	}

	c.hub = sentry.NewHub(sc, sentry.NewScope())
	c.hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTags(newCfg.Tags)
	})
	return c, nil
}

// Enabled 是否真正上报
func (c *Client) Enabled() bool {
	return c != nil && c.hub != nil && !c.closed.Load()
}

func (c *Client) record(id *sentry.EventID) *sentry.EventID {
	c.stats.eventsTotal.Add(1)
	if id != nil && *id != "" {
		c.stats.eventsCaptured.Add(1)
	} else {
		c.stats.eventsDropped.Add(1)
	}
	return id
}

// CaptureException 捕获错误
func (c *Client) CaptureException(err error) *sentry.EventID {
	return c.CaptureError(err, nil)
}

// CaptureError 携带标签捕获错误，标签只作用于本次事件
func (c *Client) CaptureError(err error, tags map[string]string) *sentry.EventID {
	if !c.Enabled() || err == nil {
		return nil
	}

	var id *sentry.EventID
	c.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		id = c.hub.CaptureException(err)
	})
	return c.record(id)
}

// CaptureMessage 捕获消息
func (c *Client) CaptureMessage(message string, level Level) *sentry.EventID {
	if !c.Enabled() {
		return nil
	}

	var id *sentry.EventID
	c.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(level.toSentryLevel())
		id = c.hub.CaptureMessage(message)
	})
	return c.record(id)
}

// RecoverWithContext 上报已恢复的 panic，不重新抛出
func (c *Client) RecoverWithContext(ctx context.Context, recovered any, tags map[string]string) *sentry.EventID {
	if !c.Enabled() || recovered == nil {
		return nil
	}

	var id *sentry.EventID
	c.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		scope.SetLevel(sentry.LevelFatal)
		id = c.hub.RecoverWithContext(ctx, recovered)
	})
	return c.record(id)
}

// Flush 等待所有事件上报完成
func (c *Client) Flush(timeout time.Duration) bool {
	if c.hub == nil {
		return true
	}
	return c.hub.Flush(timeout)
}

// Close 刷新并关闭客户端
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return ErrClientClosed
	}
	if c.hub != nil {
		c.hub.Flush(c.config.ShutdownTimeout)
	}
	return nil
}

// Stats 获取统计信息
func (c *Client) Stats() Stats {
	return Stats{
		EventsTotal:    c.stats.eventsTotal.Load(),
		EventsCaptured: c.stats.eventsCaptured.Load(),
		EventsDropped:  c.stats.eventsDropped.Load(),
	}
}
