package transport

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/pigfarm/pkg/config"
	"github.com/lk2023060901/pigfarm/pkg/logger"
)

// ErrPollerStarted 重复启动
var ErrPollerStarted = errors.New("transport: poller already started")

// Poller 长轮询拉取事件并交给 Handler，实现 app.Server
type Poller struct {
	source  Source
	handler Handler
	config  *Config
	logger  logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	offset int
}

// NewPoller 创建轮询器
func NewPoller(cfg *Config, source Source, handler Handler, l logger.Logger) (*Poller, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge transport config")
	}
	if err := newCfg.Validate(); err != nil {
		return nil, err
	}
	if source == nil || handler == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "poller needs a source and a handler")
	}

	return &Poller{
		source:  source,
		handler: handler,
		config:  newCfg,
		logger:  logger.OrDefault(l).Named("transport.poller"),
	}, nil
}

// Start 在后台开始轮询
func (p *Poller) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return ErrPollerStarted
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	p.logger.Info("starting update poller", "poll_timeout", p.config.PollTimeout)
	go p.loop(ctx, p.done)
	return nil
}

// Stop 停止轮询，最多等待 StopTimeout
func (p *Poller) Stop() error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		p.logger.Info("update poller exited")
		return nil
	case <-time.After(p.config.StopTimeout):
		return errors.Newf("poller did not stop within %s", p.config.StopTimeout)
	}
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		if ctx.Err() != nil {
			return
		}

		updates, err := p.source.Fetch(ctx, p.offset, p.config.PollLimit, p.config.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("failed to fetch updates", "error", err, "retry_in", p.config.RetryDelay)
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.config.RetryDelay):
			}
			continue
		}

		for i := range updates {
			u := &updates[i]
			if u.ID >= p.offset {
				p.offset = u.ID + 1
			}
			p.handler.HandleUpdate(ctx, u)
		}
	}
}
