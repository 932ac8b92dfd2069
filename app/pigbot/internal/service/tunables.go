package service

import (
	"sync/atomic"

	"github.com/lk2023060901/pigfarm/app/pigbot/internal/growth"
	"github.com/lk2023060901/pigfarm/pkg/config"
	"github.com/lk2023060901/pigfarm/pkg/logger"
)

// TunablesProvider 当前生效的增长系数，可在运行时原子替换
type TunablesProvider struct {
	current atomic.Pointer[growth.Tunables]
	logger  logger.Logger
}

// NewTunablesProvider 以 initial 为初始值创建，initial 必须合法
func NewTunablesProvider(initial growth.Tunables, l logger.Logger) (*TunablesProvider, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	p := &TunablesProvider{logger: logger.OrDefault(l).Named("service.tunables")}
	p.current.Store(&initial)
	return p, nil
}

// Get 返回当前系数的副本
func (p *TunablesProvider) Get() growth.Tunables {
	return *p.current.Load()
}

// Set 校验后替换，非法值返回校验错误且不生效
func (p *TunablesProvider) Set(t growth.Tunables) error {
	if err := t.Validate(); err != nil {
		p.logger.Warn("rejected tunables", "tunables", t, "error", err)
		return err
	}
	old := p.current.Swap(&t)
	p.logger.Info("tunables updated",
		"base_growth", t.BaseGrowth,
		"rank_factor", t.RankFactor,
		"weight_factor", t.WeightFactor,
		"previous", *old,
	)
	return nil
}

// GameFile 热更新时只解析配置文件的 game 段
type GameFile struct {
	Game Config `mapstructure:"game"`
}

// Watch 监听配置文件，game 段的系数变化时替换；新配置非法时保留旧值
func (p *TunablesProvider) Watch(path string, opts ...config.Option) (*config.Watcher[GameFile], error) {
	w, err := config.NewWatcher(path,
		config.WithManagerOptions[GameFile](opts...),
		config.WithRequiredKeys[GameFile]("game"),
		config.WithValidateFunc(func(f *GameFile) error {
			return f.Game.Tunables.Validate()
		}),
		config.WithErrorHandler[GameFile](func(err error) {
			p.logger.Warn("ignored invalid config reload", "path", path, "error", err)
		}),
	)
	if err != nil {
		return nil, err
	}

	w.OnChange(func(f *GameFile) {
		// 与启动时一致，文件中缺省的系数取默认值
		cfg, err := config.MergeConfig(DefaultConfig(), &f.Game)
		if err != nil || cfg.Tunables == p.Get() {
			return
		}
		_ = p.Set(cfg.Tunables)
	})
	p.logger.Info("watching tunables", "path", path)
	return w, nil
}
