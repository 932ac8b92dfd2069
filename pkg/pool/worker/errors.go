package worker

import "github.com/cockroachdb/errors"

var (
	// ErrNilConfig 配置为空
	ErrNilConfig = errors.New("worker: config is nil")
	// ErrInvalidConfig 配置非法
	ErrInvalidConfig = errors.New("worker: invalid config")
	// ErrPoolOverload 池已满（非阻塞模式）
	ErrPoolOverload = errors.New("worker: pool overload")
	// ErrPoolClosed 池已关闭
	ErrPoolClosed = errors.New("worker: pool closed")
)
