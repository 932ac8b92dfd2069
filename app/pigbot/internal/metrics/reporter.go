package metrics

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/pigfarm/pkg/config"
	"github.com/lk2023060901/pigfarm/pkg/logger"
	"github.com/robfig/cron/v3"
)

// ReporterConfig 上报器配置
type ReporterConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	// Spec cron 表达式，支持 "@every 1m" 形式
	Spec string `mapstructure:"spec" json:"spec" yaml:"spec"`
	// StopTimeout 等待正在执行的上报结束的最长时间
	StopTimeout time.Duration `mapstructure:"stop_timeout" json:"stop_timeout" yaml:"stop_timeout"`
}

// DefaultReporterConfig 默认配置
func DefaultReporterConfig() *ReporterConfig {
	return &ReporterConfig{
		Enabled:     true,
		Spec:        "@every 1m",
		StopTimeout: 5 * time.Second,
	}
}

// Reporter 按 cron 计划把窗口统计和进程资源写入日志
type Reporter struct {
	config  *ReporterConfig
	metrics *BotMetrics
	logger  logger.Logger
	cron    *cron.Cron
}

// NewReporter 创建上报器
func NewReporter(cfg *ReporterConfig, metrics *BotMetrics, l logger.Logger) (*Reporter, error) {
	newCfg, err := config.MergeConfig(DefaultReporterConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge reporter config")
	}

	r := &Reporter{
		config:  newCfg,
		metrics: metrics,
		logger:  logger.OrDefault(l).Named("metrics.reporter"),
	}
	r.cron = cron.New(cron.WithLogger(cronLogger{r.logger}), cron.WithChain(cron.Recover(cronLogger{r.logger})))

	if _, err := r.cron.AddFunc(newCfg.Spec, r.report); err != nil {
		return nil, errors.Wrapf(err, "invalid reporter spec %q", newCfg.Spec)
	}
	return r, nil
}

// Start 启动调度，实现 app.Server
func (r *Reporter) Start() error {
	if !r.config.Enabled || r.metrics == nil {
		r.logger.Info("metrics reporter disabled")
		return nil
	}
	r.cron.Start()
	r.logger.Info("metrics reporter started", "spec", r.config.Spec)
	return nil
}

// Stop 停止调度并等待当前任务结束
func (r *Reporter) Stop() error {
	ctx := r.cron.Stop()
	timer := time.NewTimer(r.config.StopTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
		r.logger.Warn("metrics reporter stop timed out")
	}
	r.logger.Info("metrics reporter stopped")
	return nil
}

func (r *Reporter) report() {
	stats := r.metrics.GetStats()

	r.logger.Info("bot stats",
		"qps", stats.Window.QPS,
		"avg_latency", stats.Window.AvgLatency,
		"max_latency", stats.Window.MaxLatency,
		"success_rate", stats.Window.SuccessRate,
		"updates", stats.Window.TotalCount,
		"cpu_percent", stats.System.CPUPercent,
		"memory_percent", stats.System.MemoryPercent,
		"memory_bytes", stats.System.MemoryBytes,
		"goroutines", stats.System.Goroutines,
	)
}

// cronLogger 把 cron 内部日志转到 logger.Logger
type cronLogger struct {
	l logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.ErrorContext(context.Background(), msg, append(keysAndValues, "error", err)...)
}
