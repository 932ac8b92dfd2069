package otel

import (
	"context"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/pigfarm/pkg/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerProvider 追踪提供者
type TracerProvider struct {
	config   *Config
	provider *sdktrace.TracerProvider
	closed   atomic.Bool
}

// Option 提供者选项
type Option func(*options)

type options struct {
	exporter  sdktrace.SpanExporter
	setGlobal bool
}

// WithExporter 使用指定导出器，忽略 ExporterType
func WithExporter(exp sdktrace.SpanExporter) Option {
	return func(o *options) { o.exporter = exp }
}

// WithoutGlobal 不替换全局 TracerProvider
func WithoutGlobal() Option {
	return func(o *options) { o.setGlobal = false }
}

// New 创建追踪提供者
func New(cfg *Config, opts ...Option) (*TracerProvider, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge otel config")
	}
	if err := newCfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{setGlobal: true}
	for _, opt := range opts {
		opt(o)
	}

	if !newCfg.Enabled {
		return &TracerProvider{config: newCfg}, nil
	}

	exporter := o.exporter
	if exporter == nil {
		if exporter, err = createExporter(context.Background(), newCfg); err != nil {
			return nil, err
		}
	}
	if exporter == nil {
		return &TracerProvider{config: newCfg}, nil
	}

	attrs := []attribute.KeyValue{semconv.ServiceName(newCfg.ServiceName)}
	for k, v := range newCfg.Attributes {
		attrs = append(attrs, attribute.String(k, v))
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(newCfg.BatchExport.BatchTimeout),
			sdktrace.WithExportTimeout(newCfg.BatchExport.ExportTimeout),
			sdktrace.WithMaxExportBatchSize(newCfg.BatchExport.BatchSize),
			sdktrace.WithMaxQueueSize(newCfg.BatchExport.MaxQueueSize),
		),
		sdktrace.WithResource(resource.NewWithAttributes(semconv.SchemaURL, attrs...)),
		sdktrace.WithSampler(createSampler(newCfg.Sampler)),
	)

	if o.setGlobal {
		otel.SetTracerProvider(provider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	}

	return &TracerProvider{config: newCfg, provider: provider}, nil
}

func createSampler(cfg SamplerConfig) sdktrace.Sampler {
	switch cfg.Type {
	case SamplerTypeAlways:
		return sdktrace.AlwaysSample()
	case SamplerTypeNever:
		return sdktrace.NeverSample()
	case SamplerTypeRatio:
		return sdktrace.TraceIDRatioBased(cfg.Ratio)
	default:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
}

// Tracer 获取指定名称的 Tracer
func (p *TracerProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	if p == nil || p.provider == nil {
		return otel.GetTracerProvider().Tracer(name, opts...)
	}
	return p.provider.Tracer(name, opts...)
}

// Start 以服务名作为 Tracer 开始一个 Span
func (p *TracerProvider) Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	name := "pigbot"
	if p != nil {
		name = p.config.ServiceName
	}
	return p.Tracer(name).Start(ctx, spanName, opts...)
}

// Shutdown 关闭提供者
func (p *TracerProvider) Shutdown(ctx context.Context) error {
	if p.closed.Swap(true) {
		return ErrProviderClosed
	}
	if p.provider == nil {
		return nil
	}
	return p.provider.Shutdown(ctx)
}

// Close 使用配置的超时关闭
func (p *TracerProvider) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.ShutdownTimeout)
	defer cancel()
	return p.Shutdown(ctx)
}

// ForceFlush 强制刷新
func (p *TracerProvider) ForceFlush(ctx context.Context) error {
	if p.provider == nil {
		return nil
	}
	return p.provider.ForceFlush(ctx)
}

// IsEnabled 是否真正导出
func (p *TracerProvider) IsEnabled() bool {
	return p != nil && p.provider != nil
}

// Config 获取配置
func (p *TracerProvider) Config() *Config {
	return p.config
}
