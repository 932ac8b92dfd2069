package sliding

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/pigfarm/pkg/config"
)

// WindowConfig 滑动窗口配置
type WindowConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	// 窗口总时长
	WindowSize time.Duration `mapstructure:"window_size" json:"window_size" yaml:"window_size"`
	// 桶数量，单桶时长为 WindowSize / BucketCount
	BucketCount int `mapstructure:"bucket_count" json:"bucket_count" yaml:"bucket_count"`
}

// DefaultWindowConfig 默认配置
func DefaultWindowConfig() *WindowConfig {
	return &WindowConfig{
		Enabled:     true,
		WindowSize:  60 * time.Second,
		BucketCount: 60,
	}
}

type bucket struct {
	start    time.Time
	count    int64
	failures int64
	sum      float64
	min      float64
	max      float64
}

func (b *bucket) reset(now time.Time) {
	*b = bucket{start: now, min: -1}
}

// Window 按时间分桶的延迟/成功率统计
type Window struct {
	config *WindowConfig
	width  time.Duration
	now    func() time.Time

	mu      sync.Mutex
	buckets []bucket
	cur     int

	stopCh   chan struct{}
	stopOnce sync.Once
	done     sync.WaitGroup
}

// NewWindow 创建滑动窗口并启动桶轮转
func NewWindow(cfg *WindowConfig) (*Window, error) {
	w, err := newWindow(cfg, time.Now)
	if err != nil {
		return nil, err
	}
	w.done.Add(1)
	go w.loop()
	return w, nil
}

func newWindow(cfg *WindowConfig, now func() time.Time) (*Window, error) {
	newCfg, err := config.MergeConfig(DefaultWindowConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge window config")
	}
	if newCfg.BucketCount < 1 || newCfg.WindowSize <= 0 {
		return nil, errors.Newf("invalid window config: size=%s buckets=%d", newCfg.WindowSize, newCfg.BucketCount)
	}

	w := &Window{
		config:  newCfg,
		width:   newCfg.WindowSize / time.Duration(newCfg.BucketCount),
		now:     now,
		buckets: make([]bucket, newCfg.BucketCount),
		stopCh:  make(chan struct{}),
	}
	start := now()
	for i := range w.buckets {
		w.buckets[i].reset(start)
	}
	return w, nil
}

func (w *Window) loop() {
	defer w.done.Done()
	ticker := time.NewTicker(w.width)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.rotate()
		case <-w.stopCh:
			return
		}
	}
}

func (w *Window) rotate() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cur = (w.cur + 1) % len(w.buckets)
	w.buckets[w.cur].reset(w.now())
}

// Record 记录一次处理耗时（秒）及其结果
func (w *Window) Record(latency float64, success bool) {
	if !w.config.Enabled {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	b := &w.buckets[w.cur]
	b.count++
	b.sum += latency
	if !success {
		b.failures++
	}
	if b.min < 0 || latency < b.min {
		b.min = latency
	}
	if latency > b.max {
		b.max = latency
	}
}

// Stats 窗口统计结果，延迟单位为秒
type Stats struct {
	QPS          float64 `json:"qps"`
	AvgLatency   float64 `json:"avg_latency"`
	MinLatency   float64 `json:"min_latency"`
	MaxLatency   float64 `json:"max_latency"`
	SuccessRate  float64 `json:"success_rate"` // 0-100，窗口内无样本时为 0
	TotalCount   int64   `json:"total_count"`
	SuccessCount int64   `json:"success_count"`
	FailureCount int64   `json:"failure_count"`
}

// GetStats 汇总窗口内仍然有效的桶
func (w *Window) GetStats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()

	var (
		stats Stats
		sum   float64
	)
	minLatency := -1.0
	cutoff := w.now().Add(-w.config.WindowSize)

	for i := range w.buckets {
		b := &w.buckets[i]
		if b.count == 0 || !b.start.After(cutoff) {
			continue
		}
		stats.TotalCount += b.count
		stats.FailureCount += b.failures
		sum += b.sum
		if b.min >= 0 && (minLatency < 0 || b.min < minLatency) {
			minLatency = b.min
		}
		if b.max > stats.MaxLatency {
			stats.MaxLatency = b.max
		}
	}

	stats.SuccessCount = stats.TotalCount - stats.FailureCount
	stats.QPS = float64(stats.TotalCount) / w.config.WindowSize.Seconds()
	if stats.TotalCount > 0 {
		stats.AvgLatency = sum / float64(stats.TotalCount)
		stats.SuccessRate = float64(stats.SuccessCount) / float64(stats.TotalCount) * 100
	}
	if minLatency >= 0 {
		stats.MinLatency = minLatency
	}
	return stats
}

// Stop 停止桶轮转，可重复调用
func (w *Window) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.done.Wait()
}
