package app

import (
	"maps"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/pigfarm/pkg/config"
	"github.com/lk2023060901/pigfarm/pkg/logger"
)

// LoggerRegistry 按名字管理独立配置的日志对象，例如给 transport 单独开 debug
//
// loggers 段中的每一项以主日志配置为底，只需写出与主日志不同的字段。
type LoggerRegistry struct {
	mu      sync.RWMutex
	base    *logger.Config
	loggers map[string]logger.Logger
}

// NewLoggerRegistry base 为 nil 时具名配置独立生效
func NewLoggerRegistry(base *logger.Config) *LoggerRegistry {
	return &LoggerRegistry{
		base:    base,
		loggers: make(map[string]logger.Logger),
	}
}

// Register 注册一个具名 Logger，同名覆盖
func (r *LoggerRegistry) Register(name string, l logger.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loggers[name] = l
}

// Get 获取一个具名 Logger，如果不存在则返回 nil
func (r *LoggerRegistry) Get(name string) logger.Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loggers[name]
}

// Names 已注册的名字，按字典序
func (r *LoggerRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.loggers))
}

// SyncAll 刷新所有已注册的 Logger，返回合并后的错误
func (r *LoggerRegistry) SyncAll() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs error
	for name, l := range r.loggers {
		if err := l.Sync(); err != nil {
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "sync logger %s", name))
		}
	}
	return errs
}

// InitLoggers 根据配置初始化具名 Logger，任一失败时不注册任何一个
func (r *LoggerRegistry) InitLoggers(configs map[string]*logger.Config) error {
	created := make(map[string]logger.Logger, len(configs))
	for _, name := range slices.Sorted(maps.Keys(configs)) {
		if name == "" {
			return errors.New("named logger without a name")
		}
		cfg, err := r.inherit(configs[name])
		if err != nil {
			return errors.Wrapf(err, "logger %s", name)
		}
		l, err := logger.New(cfg)
		if err != nil {
			return errors.Wrapf(err, "logger %s", name)
		}
		created[name] = l.Named(name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	maps.Copy(r.loggers, created)
	return nil
}

// inherit 以主日志配置为底叠加具名配置，不修改 base
func (r *LoggerRegistry) inherit(cfg *logger.Config) (*logger.Config, error) {
	if r.base == nil {
		return cfg, nil
	}
	merged := *r.base
	merged.GlobalFields = maps.Clone(r.base.GlobalFields)
	merged.SensitiveKeys = slices.Clone(r.base.SensitiveKeys)
	return config.MergeConfig(&merged, cfg)
}
