package sentry

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = errors.New("sentry: invalid config")

	// ErrInvalidDSN 启用时 DSN 为空
	ErrInvalidDSN = errors.New("sentry: invalid DSN")

	// ErrClientClosed 客户端已关闭
	ErrClientClosed = errors.New("sentry: client closed")
)
