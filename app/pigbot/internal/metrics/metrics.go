package metrics

import (
	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/pigfarm/pkg/config"
	"github.com/lk2023060901/pigfarm/pkg/metrics/sliding"
	"github.com/lk2023060901/pigfarm/pkg/metrics/system"
	"github.com/lk2023060901/pigfarm/pkg/prometheus"
)

// 结果标签
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
)

// Config 指标配置
type Config struct {
	// Reporter 周期汇总日志配置
	Reporter ReporterConfig `mapstructure:"reporter" json:"reporter" yaml:"reporter"`
	// SlidingWindow 事件处理 QPS/延迟窗口
	SlidingWindow sliding.WindowConfig `mapstructure:"sliding_window" json:"sliding_window" yaml:"sliding_window"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Reporter:      *DefaultReporterConfig(),
		SlidingWindow: *sliding.DefaultWindowConfig(),
	}
}

// BotMetrics 机器人指标，nil 接收者上的所有 Record 方法都是空操作
type BotMetrics struct {
	config *Config

	// 事件指标
	UpdatesTotal   *prometheus.CounterVec   // 事件总数（按类型、结果）
	UpdateDuration *prometheus.HistogramVec // 事件处理延迟
	UpdatesDropped *prometheus.CounterVec   // 被丢弃的事件（按原因）

	// 游戏指标
	CommandsTotal *prometheus.CounterVec   // 命令总数（按命令、结果）
	GrowthDelta   *prometheus.HistogramVec // 单次喂养的体重变化
	ErrorsTotal   *prometheus.CounterVec   // 边界错误（按分类）

	// 存储指标
	StorageOpsTotal *prometheus.CounterVec
	StorageDuration *prometheus.HistogramVec

	// 缓存指标
	CacheHitTotal  *prometheus.CounterVec
	CacheMissTotal *prometheus.CounterVec

	systemCollector *system.Collector
	slidingWindow   *sliding.Window
}

// New 在 client 上创建并注册全部指标
func New(cfg *Config, client *prometheus.Client) (*BotMetrics, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge metrics config")
	}

	sysCollector, err := system.New()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create system collector")
	}

	slidingWindow, err := sliding.NewWindow(&newCfg.SlidingWindow)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create sliding window")
	}

	m := &BotMetrics{
		config:          newCfg,
		systemCollector: sysCollector,
		slidingWindow:   slidingWindow,
	}
	if err := m.register(client); err != nil {
		slidingWindow.Stop()
		return nil, err
	}
	return m, nil
}

func (m *BotMetrics) register(c *prometheus.Client) error {
	var err error
	if m.UpdatesTotal, err = c.NewCounter("updates_total", "处理的事件总数", []string{"kind", "result"}); err != nil {
		return err
	}
	if m.UpdateDuration, err = c.NewHistogram("update_duration_seconds", "事件处理延迟（秒）",
		[]string{"kind"}, []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}); err != nil {
		return err
	}
	if m.UpdatesDropped, err = c.NewCounter("updates_dropped_total", "被丢弃的事件总数", []string{"reason"}); err != nil {
		return err
	}
	if m.CommandsTotal, err = c.NewCounter("commands_total", "命令处理总数", []string{"command", "result"}); err != nil {
		return err
	}
	if m.GrowthDelta, err = c.NewHistogram("growth_delta_kg", "单次喂养的体重变化",
		nil, []float64{-100, -50, -15, 0, 15, 35, 50, 100, 250}); err != nil {
		return err
	}
	if m.ErrorsTotal, err = c.NewCounter("errors_total", "模块边界错误总数", []string{"kind"}); err != nil {
		return err
	}
	if m.StorageOpsTotal, err = c.NewCounter("storage_ops_total", "存储操作总数", []string{"op", "result"}); err != nil {
		return err
	}
	if m.StorageDuration, err = c.NewHistogram("storage_op_duration_seconds", "存储操作延迟（秒）",
		[]string{"op"}, []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}); err != nil {
		return err
	}
	if m.CacheHitTotal, err = c.NewCounter("cache_hits_total", "缓存命中总数", []string{"cache"}); err != nil {
		return err
	}
	if m.CacheMissTotal, err = c.NewCounter("cache_misses_total", "缓存未命中总数", []string{"cache"}); err != nil {
		return err
	}
	return nil
}

func result(success bool) string {
	if success {
		return ResultSuccess
	}
	return ResultFailed
}

// RecordUpdate 记录一次事件处理
func (m *BotMetrics) RecordUpdate(kind string, success bool, duration float64) {
	if m == nil {
		return
	}
	m.UpdatesTotal.WithLabelValues(kind, result(success)).Inc()
	m.UpdateDuration.WithLabelValues(kind).Observe(duration)
	m.slidingWindow.Record(duration, success)
}

// RecordDropped 记录被丢弃的事件，reason: rate_limited/pool_overload/pool_closed
func (m *BotMetrics) RecordDropped(reason string) {
	if m == nil {
		return
	}
	m.UpdatesDropped.WithLabelValues(reason).Inc()
}

// RecordCommand 记录命令处理
func (m *BotMetrics) RecordCommand(command string, success bool) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(command, result(success)).Inc()
}

// RecordGrowth 记录体重变化
func (m *BotMetrics) RecordGrowth(delta int) {
	if m == nil {
		return
	}
	m.GrowthDelta.WithLabelValues().Observe(float64(delta))
}

// RecordError 记录边界错误
func (m *BotMetrics) RecordError(kind string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(kind).Inc()
}

// RecordStorage 记录存储操作
func (m *BotMetrics) RecordStorage(op string, success bool, duration float64) {
	if m == nil {
		return
	}
	m.StorageOpsTotal.WithLabelValues(op, result(success)).Inc()
	m.StorageDuration.WithLabelValues(op).Observe(duration)
}

// RecordCacheHit 记录缓存命中
func (m *BotMetrics) RecordCacheHit(cache string) {
	if m == nil {
		return
	}
	m.CacheHitTotal.WithLabelValues(cache).Inc()
}

// RecordCacheMiss 记录缓存未命中
func (m *BotMetrics) RecordCacheMiss(cache string) {
	if m == nil {
		return
	}
	m.CacheMissTotal.WithLabelValues(cache).Inc()
}

// Stats 汇总统计
type Stats struct {
	Window sliding.Stats `json:"window"`
	System system.Stats  `json:"system"`
}

// GetStats 采集一次进程指标并与滑动窗口统计合并
func (m *BotMetrics) GetStats() Stats {
	return Stats{
		Window: m.slidingWindow.GetStats(),
		System: m.systemCollector.Collect(),
	}
}

// Close 停止滑动窗口
func (m *BotMetrics) Close() error {
	if m == nil {
		return nil
	}
	m.slidingWindow.Stop()
	return nil
}
