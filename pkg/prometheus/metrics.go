package prometheus

import (
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// register 以 name 为键注册一个采集器，同名重复注册返回 ErrMetricExists
func register[T prometheus.Collector](c *Client, name string, build func() T) (T, error) {
	var zero T
	if c.IsClosed() {
		return zero, ErrClientClosed
	}
	if _, loaded := c.metrics.LoadOrStore(name, nil); loaded {
		return zero, errors.Wrapf(ErrMetricExists, "metric %s", name)
	}

	collector := build()
	if err := c.registry.Register(collector); err != nil {
		c.metrics.Delete(name)
		return zero, errors.Wrapf(err, "register metric %s", name)
	}
	c.metrics.Store(name, collector)
	return collector, nil
}

func lookup[T any](c *Client, name string) (T, bool) {
	v, ok := c.metrics.Load(name)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// NewCounter 创建并注册 Counter
func (c *Client) NewCounter(name, help string, labels []string) (*CounterVec, error) {
	return register(c, name, func() *CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: c.config.Namespace,
			Subsystem: c.config.Subsystem,
			Name:      name,
			Help:      help,
		}, labels)
	})
}

// MustNewCounter 创建 Counter，失败则 panic
func (c *Client) MustNewCounter(name, help string, labels []string) *CounterVec {
	return must(c.NewCounter(name, help, labels))
}

// GetCounter 获取已注册的 Counter
func (c *Client) GetCounter(name string) (*CounterVec, bool) {
	return lookup[*CounterVec](c, name)
}

// NewGauge 创建并注册 Gauge
func (c *Client) NewGauge(name, help string, labels []string) (*GaugeVec, error) {
	return register(c, name, func() *GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: c.config.Namespace,
			Subsystem: c.config.Subsystem,
			Name:      name,
			Help:      help,
		}, labels)
	})
}

// MustNewGauge 创建 Gauge，失败则 panic
func (c *Client) MustNewGauge(name, help string, labels []string) *GaugeVec {
	return must(c.NewGauge(name, help, labels))
}

// GetGauge 获取已注册的 Gauge
func (c *Client) GetGauge(name string) (*GaugeVec, bool) {
	return lookup[*GaugeVec](c, name)
}

// NewHistogram 创建并注册 Histogram，buckets 为 nil 时使用默认分桶
func (c *Client) NewHistogram(name, help string, labels []string, buckets []float64) (*HistogramVec, error) {
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	return register(c, name, func() *HistogramVec {
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: c.config.Namespace,
			Subsystem: c.config.Subsystem,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		}, labels)
	})
}

// MustNewHistogram 创建 Histogram，失败则 panic
func (c *Client) MustNewHistogram(name, help string, labels []string, buckets []float64) *HistogramVec {
	return must(c.NewHistogram(name, help, labels, buckets))
}

// GetHistogram 获取已注册的 Histogram
func (c *Client) GetHistogram(name string) (*HistogramVec, bool) {
	return lookup[*HistogramVec](c, name)
}

// NewSummary 创建并注册 Summary
func (c *Client) NewSummary(name, help string, labels []string, objectives map[float64]float64) (*SummaryVec, error) {
	if objectives == nil {
		objectives = map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001}
	}
	return register(c, name, func() *SummaryVec {
		return prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Namespace:  c.config.Namespace,
			Subsystem:  c.config.Subsystem,
			Name:       name,
			Help:       help,
			Objectives: objectives,
		}, labels)
	})
}

// MustNewSummary 创建 Summary，失败则 panic
func (c *Client) MustNewSummary(name, help string, labels []string, objectives map[float64]float64) *SummaryVec {
	return must(c.NewSummary(name, help, labels, objectives))
}

// RegisterCollector 注册自定义采集器
func (c *Client) RegisterCollector(collector Collector) error {
	if c.IsClosed() {
		return ErrClientClosed
	}
	return c.registry.Register(collector)
}
