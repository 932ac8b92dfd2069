package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "disabled", cfg: Config{}},
		{name: "missing service", cfg: Config{Enabled: true, ExporterType: ExporterTypeNoop}, wantErr: true},
		{name: "bad ratio", cfg: Config{Enabled: true, ServiceName: "x", ExporterType: ExporterTypeNoop, Sampler: SamplerConfig{Type: SamplerTypeRatio, Ratio: 3}}, wantErr: true},
		{name: "grpc unsupported", cfg: Config{Enabled: true, ServiceName: "x", ExporterType: "otlp-grpc"}, wantErr: true},
		{name: "stdout", cfg: Config{Enabled: true, ServiceName: "x", ExporterType: ExporterTypeStdout}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDisabledProvider(t *testing.T) {
	p, err := New(nil)
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())

	_, span := p.Start(context.Background(), "noop")
	span.End()

	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Close(), ErrProviderClosed)
}

func TestProviderExportsSpans(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	p, err := New(&Config{Enabled: true, Sampler: SamplerConfig{Type: SamplerTypeAlways}},
		WithExporter(exp), WithoutGlobal())
	require.NoError(t, err)
	require.True(t, p.IsEnabled())

	ctx, span := p.Start(context.Background(), "update", WithAttributes(Int64(ChatIDKey, 42)))
	assert.True(t, SpanFromContext(ctx).SpanContext().IsValid())
	span.End()

	require.NoError(t, p.ForceFlush(context.Background()))
	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "update", spans[0].Name)

	require.NoError(t, p.Close())
}
