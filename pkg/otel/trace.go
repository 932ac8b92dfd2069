package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// 重导出常用类型，避免使用者直接依赖 go.opentelemetry.io/otel
type (
	Span            = trace.Span
	SpanKind        = trace.SpanKind
	SpanStartOption = trace.SpanStartOption
	Attribute       = attribute.KeyValue
	Code            = codes.Code
)

const (
	SpanKindInternal = trace.SpanKindInternal
	SpanKindServer   = trace.SpanKindServer
	SpanKindConsumer = trace.SpanKindConsumer
)

const (
	CodeUnset = codes.Unset
	CodeError = codes.Error
	CodeOk    = codes.Ok
)

// GetTracerProvider 获取全局 TracerProvider
func GetTracerProvider() trace.TracerProvider {
	return otel.GetTracerProvider()
}

// WithSpanKind 设置 span 类型
func WithSpanKind(kind SpanKind) SpanStartOption {
	return trace.WithSpanKind(kind)
}

// WithAttributes 设置 span 属性
func WithAttributes(attrs ...Attribute) SpanStartOption {
	return trace.WithAttributes(attrs...)
}

// SpanFromContext 取出 ctx 上的当前 span
func SpanFromContext(ctx context.Context) Span {
	return trace.SpanFromContext(ctx)
}

var (
	String = attribute.String
	Int    = attribute.Int
	Int64  = attribute.Int64
	Bool   = attribute.Bool
)

// 聊天消息相关的属性键
const (
	MessagingSystemKey    = "messaging.system"
	MessagingMessageIDKey = "messaging.message_id"
	MessagingOperationKey = "messaging.operation"

	ChatIDKey   = "chat.id"
	PlayerIDKey = "chat.player_id"
	CommandKey  = "chat.command"
)
