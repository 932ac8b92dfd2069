// Package admin 提供内部运维 HTTP 接口：探针、版本、Prometheus 指标和增长系数的查看与修改。
package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/gameerr"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/growth"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/metrics"
	"github.com/lk2023060901/pigfarm/pkg/app"
	"github.com/lk2023060901/pigfarm/pkg/logger"
	"github.com/lk2023060901/pigfarm/pkg/web"
)

const readyTimeout = 2 * time.Second

// Pinger 就绪检查依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

// Tunables 运行时增长系数
type Tunables interface {
	Get() growth.Tunables
	Set(t growth.Tunables) error
}

// Handler 运维接口
type Handler struct {
	storage  Pinger
	tunables Tunables
	metrics  *metrics.BotMetrics
	exporter http.Handler
	pools    map[string]func() any
	version  *app.Info
	logger   logger.Logger
}

// Option 选项
type Option func(*Handler)

// WithMetrics 开启 /debug/stats
func WithMetrics(m *metrics.BotMetrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithExporter 开启 /metrics
func WithExporter(exporter http.Handler) Option {
	return func(h *Handler) { h.exporter = exporter }
}

// WithVersion 开启 /version
func WithVersion(info app.Info) Option {
	return func(h *Handler) { h.version = &info }
}

// WithPoolStats 在 /debug/pools 下按 name 输出连接池状态
func WithPoolStats(name string, stats func() any) Option {
	return func(h *Handler) {
		if h.pools == nil {
			h.pools = make(map[string]func() any)
		}
		h.pools[name] = stats
	}
}

// NewHandler 创建运维接口
func NewHandler(storage Pinger, tunables Tunables, l logger.Logger, opts ...Option) *Handler {
	h := &Handler{
		storage:  storage,
		tunables: tunables,
		logger:   logger.OrDefault(l).Named("handler.admin"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register 注册路由
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	if h.exporter != nil {
		r.GET("/metrics", gin.WrapH(h.exporter))
	}
	if h.version != nil {
		r.GET("/version", h.Version)
	}

	debug := r.Group("/debug")
	{
		debug.GET("/tunables", h.GetTunables)
		debug.PUT("/tunables", h.PutTunables)
		if h.metrics != nil {
			debug.GET("/stats", h.Stats)
		}
		if len(h.pools) > 0 {
			debug.GET("/pools", h.Pools)
		}
	}
}

// Healthz 进程存活
func (h *Handler) Healthz(c *gin.Context) {
	web.Success(c, gin.H{"status": "ok"})
}

// Readyz 存储可用
func (h *Handler) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	if err := h.storage.Ping(ctx); err != nil {
		h.logger.Warn("readiness check failed", "error", err)
		web.Error(c, http.StatusServiceUnavailable, web.CodeUnavailable, "storage unavailable")
		return
	}
	web.Success(c, gin.H{"status": "ready"})
}

// Version 构建信息
func (h *Handler) Version(c *gin.Context) {
	web.Success(c, h.version)
}

// GetTunables 当前增长系数
func (h *Handler) GetTunables(c *gin.Context) {
	web.Success(c, h.tunables.Get())
}

// PutTunables 部分更新增长系数，请求体中缺省的字段保持原值
func (h *Handler) PutTunables(c *gin.Context) {
	t := h.tunables.Get()
	if !web.BindAndValidate(c, &t) {
		return
	}
	if err := h.tunables.Set(t); err != nil {
		msg := gameerr.UserMessage(err)
		if msg == "" {
			msg = err.Error()
		}
		web.Error(c, http.StatusBadRequest, web.CodeInvalidParams, msg)
		return
	}
	web.Success(c, t)
}

// Stats 滑动窗口与进程统计
func (h *Handler) Stats(c *gin.Context) {
	web.Success(c, h.metrics.GetStats())
}

// Pools 存储连接池状态
func (h *Handler) Pools(c *gin.Context) {
	out := make(gin.H, len(h.pools))
	for name, stats := range h.pools {
		out[name] = stats()
	}
	web.Success(c, out)
}
