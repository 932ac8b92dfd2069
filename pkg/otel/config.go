package otel

import (
	"time"

	"github.com/cockroachdb/errors"
)

// Config TracerProvider 配置
type Config struct {
	// 默认关闭，关闭时 Tracer 退化为全局 noop 实现
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled"`

	ServiceName string `mapstructure:"service_name" json:"service_name" yaml:"service_name"`

	// OTLP HTTP 端点，例如 localhost:4318
	Endpoint string `mapstructure:"endpoint" json:"endpoint" yaml:"endpoint"`

	// 导出器类型: "otlp-http", "stdout", "noop"
	ExporterType ExporterType `mapstructure:"exporter_type" json:"exporter_type" yaml:"exporter_type"`

	Sampler     SamplerConfig     `mapstructure:"sampler" json:"sampler" yaml:"sampler"`
	BatchExport BatchExportConfig `mapstructure:"batch_export" json:"batch_export" yaml:"batch_export"`

	// 资源属性
	Attributes map[string]string `mapstructure:"attributes" json:"attributes" yaml:"attributes"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" json:"shutdown_timeout" yaml:"shutdown_timeout"`

	// 不使用 TLS
	Insecure bool `mapstructure:"insecure" json:"insecure" yaml:"insecure"`
}

// ExporterType 导出器类型
type ExporterType string

const (
	ExporterTypeOTLPHTTP ExporterType = "otlp-http"
	ExporterTypeStdout   ExporterType = "stdout"
	ExporterTypeNoop     ExporterType = "noop"
)

// SamplerConfig 采样配置
type SamplerConfig struct {
	// always, never, ratio, parent
	Type SamplerType `mapstructure:"type" json:"type" yaml:"type"`

	// 仅当 Type 为 ratio 时有效
	Ratio float64 `mapstructure:"ratio" json:"ratio" yaml:"ratio"`
}

// SamplerType 采样类型
type SamplerType string

const (
	SamplerTypeAlways SamplerType = "always"
	SamplerTypeNever  SamplerType = "never"
	SamplerTypeRatio  SamplerType = "ratio"
	SamplerTypeParent SamplerType = "parent"
)

// BatchExportConfig 批量导出配置
type BatchExportConfig struct {
	BatchSize     int           `mapstructure:"batch_size" json:"batch_size" yaml:"batch_size"`
	ExportTimeout time.Duration `mapstructure:"export_timeout" json:"export_timeout" yaml:"export_timeout"`
	MaxQueueSize  int           `mapstructure:"max_queue_size" json:"max_queue_size" yaml:"max_queue_size"`
	BatchTimeout  time.Duration `mapstructure:"batch_timeout" json:"batch_timeout" yaml:"batch_timeout"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		ServiceName:  "pigbot",
		Endpoint:     "localhost:4318",
		ExporterType: ExporterTypeOTLPHTTP,
		Sampler: SamplerConfig{
			Type:  SamplerTypeParent,
			Ratio: 1.0,
		},
		BatchExport: BatchExportConfig{
			BatchSize:     512,
			ExportTimeout: 30 * time.Second,
			MaxQueueSize:  2048,
			BatchTimeout:  5 * time.Second,
		},
		ShutdownTimeout: 5 * time.Second,
		Insecure:        true,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.ServiceName == "" {
		return ErrInvalidServiceName
	}
	if c.Sampler.Type == SamplerTypeRatio && (c.Sampler.Ratio < 0 || c.Sampler.Ratio > 1) {
		return ErrInvalidSamplerRatio
	}
	switch c.ExporterType {
	case ExporterTypeOTLPHTTP, ExporterTypeStdout, ExporterTypeNoop:
	default:
		return errors.Wrapf(ErrUnsupportedExporter, "%q", c.ExporterType)
	}
	return nil
}
