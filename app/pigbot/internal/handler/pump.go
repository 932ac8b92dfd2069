// Package handler 把入站事件投递到协程池中处理：按会话限流、链路追踪、panic 恢复与指标记录。
package handler

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/metrics"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/transport"
	"github.com/lk2023060901/pigfarm/pkg/config"
	"github.com/lk2023060901/pigfarm/pkg/logger"
	"github.com/lk2023060901/pigfarm/pkg/otel"
	"github.com/lk2023060901/pigfarm/pkg/pool/worker"
	"github.com/lk2023060901/pigfarm/pkg/ratelimit"
	"github.com/lk2023060901/pigfarm/pkg/sentry"
)

// 丢弃原因
const (
	DropRateLimited  = "rate_limited"
	DropPoolOverload = "pool_overload"
	DropClosed       = "closed"
)

// Dispatcher 事件的业务处理方，通常是 router.Registry
type Dispatcher interface {
	HandleMessage(ctx context.Context, msg *transport.Message)
	HandleCallback(ctx context.Context, q *transport.CallbackQuery)
}

// Pump 事件泵，实现 transport.Handler
type Pump struct {
	config     *Config
	dispatcher Dispatcher
	pool       *worker.Pool
	limiter    *ratelimit.Limiter[int64]

	tracer  *otel.TracerProvider
	sentry  *sentry.Client
	metrics *metrics.BotMetrics
	logger  logger.Logger
}

var _ transport.Handler = (*Pump)(nil)

// Option 事件泵选项
type Option func(*Pump)

// WithLogger 设置日志
func WithLogger(l logger.Logger) Option {
	return func(p *Pump) { p.logger = l }
}

// WithTracer 设置链路追踪
func WithTracer(tp *otel.TracerProvider) Option {
	return func(p *Pump) { p.tracer = tp }
}

// WithSentry 设置 panic 上报
func WithSentry(c *sentry.Client) Option {
	return func(p *Pump) { p.sentry = c }
}

// WithMetrics 设置指标
func WithMetrics(m *metrics.BotMetrics) Option {
	return func(p *Pump) { p.metrics = m }
}

// NewPump 创建事件泵
func NewPump(cfg *Config, d Dispatcher, opts ...Option) (*Pump, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge handler config")
	}
	if err := config.Validate(newCfg); err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errors.New("handler: dispatcher is nil")
	}

	p := &Pump{config: newCfg, dispatcher: d}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logger.OrDefault(p.logger).Named("handler.pump")

	p.limiter, err = ratelimit.New[int64](&newCfg.RateLimit, p.logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create rate limiter")
	}

	p.pool, err = worker.NewPool(
		&worker.Config{Size: newCfg.Workers, NonBlocking: true},
		worker.WithLogger(p.logger),
		worker.WithPanicHandler(func(recovered any) {
			p.sentry.RecoverWithContext(context.Background(), recovered, map[string]string{"source": "pool"})
		}),
	)
	if err != nil {
		_ = p.limiter.Close()
		return nil, errors.Wrap(err, "failed to create worker pool")
	}
	return p, nil
}

// HandleUpdate 限流后投递到协程池，不阻塞调用方
func (p *Pump) HandleUpdate(_ context.Context, u *transport.Update) {
	if u == nil {
		return
	}
	chatID := u.ChatID()

	if !p.limiter.Allow(chatID) {
		p.logger.Debug("update rate limited", "chat_id", chatID, "update_id", u.ID)
		p.metrics.RecordDropped(DropRateLimited)
		return
	}

	err := p.pool.Submit(func() { p.process(u) })
	switch {
	case err == nil:
	case errors.Is(err, worker.ErrPoolOverload):
		p.logger.Warn("worker pool overloaded, update dropped", "chat_id", chatID, "update_id", u.ID)
		p.metrics.RecordDropped(DropPoolOverload)
	default:
		p.logger.Warn("failed to submit update", "update_id", u.ID, "error", err)
		p.metrics.RecordDropped(DropClosed)
	}
}

// process 在池内执行；轮询停止后在途事件仍可完成，因此不继承轮询的 ctx
func (p *Pump) process(u *transport.Update) {
	start := time.Now()
	kind := u.Kind()

	ctx, cancel := context.WithTimeout(context.Background(), p.config.TaskTimeout)
	defer cancel()
	ctx = logger.WithContextFields(ctx,
		"chat_id", u.ChatID(),
		"user_id", u.UserID(),
		"update_id", u.ID,
	)
	ctx, span := p.tracer.Start(ctx, "pigbot.update."+kind,
		otel.WithSpanKind(otel.SpanKindConsumer),
		otel.WithAttributes(
			otel.String(otel.MessagingSystemKey, "telegram"),
			otel.String(otel.MessagingOperationKey, kind),
			otel.Int64(otel.ChatIDKey, u.ChatID()),
			otel.Int64(otel.PlayerIDKey, u.UserID()),
		),
	)
	defer span.End()

	ok := true
	defer func() {
		if r := recover(); r != nil {
			ok = false
			span.SetStatus(otel.CodeError, "panic")
			p.logger.ErrorContext(ctx, "update handler panicked", "panic", r, "kind", kind)
			p.sentry.RecoverWithContext(ctx, r, map[string]string{"kind": kind})
		}
		p.metrics.RecordUpdate(kind, ok, time.Since(start).Seconds())
	}()

	switch {
	case u.Callback != nil:
		p.dispatcher.HandleCallback(ctx, u.Callback)
	case u.Message != nil:
		p.dispatcher.HandleMessage(ctx, u.Message)
	}
}

// Wait 等待已投递的事件处理完
func (p *Pump) Wait() {
	p.pool.Wait()
}

// Running 正在处理的事件数
func (p *Pump) Running() int {
	return p.pool.Running()
}

// Close 等待在途事件后释放资源
func (p *Pump) Close() error {
	err := p.pool.ReleaseTimeout(p.config.DrainTimeout)
	if cerr := p.limiter.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
