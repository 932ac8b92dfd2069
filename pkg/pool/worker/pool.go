package worker

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/pigfarm/pkg/config"
	"github.com/lk2023060901/pigfarm/pkg/logger"
	"github.com/panjf2000/ants/v2"
)

// PanicHandler 任务 panic 时的回调
type PanicHandler func(recovered any)

// Pool 基于 ants 的有界协程池
// 额外跟踪已提交但未完成的任务，以支持 Wait
type Pool struct {
	config  *Config
	pool    *ants.Pool
	logger  logger.Logger
	onPanic PanicHandler
	wg      sync.WaitGroup
}

// Option 协程池选项
type Option func(*Pool)

// WithLogger 设置日志记录器
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) { p.logger = l }
}

// WithPanicHandler 设置 panic 回调，任务内的 panic 不会传播出池
func WithPanicHandler(h PanicHandler) Option {
	return func(p *Pool) { p.onPanic = h }
}

// NewPool 创建协程池
func NewPool(cfg *Config, opts ...Option) (*Pool, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge worker config")
	}
	if err := newCfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pool{config: newCfg}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logger.OrDefault(p.logger)

	ap, err := ants.NewPool(newCfg.Size,
		ants.WithNonblocking(newCfg.NonBlocking),
		ants.WithMaxBlockingTasks(newCfg.MaxBlockingTasks),
		ants.WithExpiryDuration(newCfg.ExpiryDuration),
		ants.WithPreAlloc(newCfg.PreAlloc),
		ants.WithPanicHandler(p.handlePanic),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create ants pool")
	}
	p.pool = ap
	return p, nil
}

func (p *Pool) handlePanic(recovered any) {
	if p.onPanic != nil {
		p.onPanic(recovered)
		return
	}
	p.logger.Error("worker task panicked", "panic", recovered)
}

// Submit 提交任务
// 非阻塞模式下池满返回 ErrPoolOverload，池关闭后返回 ErrPoolClosed
func (p *Pool) Submit(task func()) error {
	p.wg.Add(1)
	err := p.pool.Submit(func() {
		defer p.wg.Done()
		task()
	})
	if err == nil {
		return nil
	}

	p.wg.Done()
	switch {
	case errors.Is(err, ants.ErrPoolOverload):
		return errors.Mark(err, ErrPoolOverload)
	case errors.Is(err, ants.ErrPoolClosed):
		return errors.Mark(err, ErrPoolClosed)
	default:
		return errors.Wrap(err, "submit task")
	}
}

// Wait 等待所有已提交任务完成
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Running 正在运行的任务数
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Free 空闲容量
func (p *Pool) Free() int {
	return p.pool.Free()
}

// Cap 池容量
func (p *Pool) Cap() int {
	return p.pool.Cap()
}

// Tune 动态调整池容量
func (p *Pool) Tune(size int) {
	if size > 0 {
		p.pool.Tune(size)
	}
}

// Release 关闭池，不等待运行中的任务
func (p *Pool) Release() {
	p.pool.Release()
}

// ReleaseTimeout 关闭池并在 timeout 内等待运行中的任务结束
func (p *Pool) ReleaseTimeout(timeout time.Duration) error {
	return p.pool.ReleaseTimeout(timeout)
}
