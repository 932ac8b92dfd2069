package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// TextMapPropagator 文本映射传播器接口
type TextMapPropagator = propagation.TextMapPropagator

// HeaderCarrier HTTP Header 载体
type HeaderCarrier = propagation.HeaderCarrier

// GetTextMapPropagator 获取全局文本传播器
func GetTextMapPropagator() propagation.TextMapPropagator {
	return otel.GetTextMapPropagator()
}
