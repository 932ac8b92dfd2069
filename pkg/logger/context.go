package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextFieldsKey struct{}

// ContextFieldExtractor 从 context 提取日志字段
type ContextFieldExtractor func(ctx context.Context) []zap.Field

// WithContextFields 把 key/value 挂到 ctx 上，后续 *Context 日志方法会自动带出
// 多次调用时字段累加
func WithContextFields(ctx context.Context, keysAndValues ...any) context.Context {
	fields := toZapFields(keysAndValues...)
	if len(fields) == 0 {
		return ctx
	}
	if existing, ok := ctx.Value(contextFieldsKey{}).([]zap.Field); ok {
		merged := make([]zap.Field, 0, len(existing)+len(fields))
		merged = append(merged, existing...)
		fields = append(merged, fields...)
	}
	return context.WithValue(ctx, contextFieldsKey{}, fields)
}

// DefaultContextExtractor 读取 WithContextFields 挂载的字段
func DefaultContextExtractor(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(contextFieldsKey{}).([]zap.Field)
	return fields
}
