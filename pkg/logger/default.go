package logger

import "sync"

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger
)

// SetDefault 设置进程级默认 logger
func SetDefault(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// Default 返回默认 logger，未设置时懒加载一个仅控制台输出的 logger
func Default() Logger {
	defaultMu.RLock()
	l := defaultLogger
	defaultMu.RUnlock()
	if l != nil {
		return l
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		bl, err := New(DefaultConfig())
		if err != nil {
			defaultLogger = NewNoop()
		} else {
			defaultLogger = bl
		}
	}
	return defaultLogger
}

// OrDefault 在 l 为 nil 时返回 Default()
func OrDefault(l Logger) Logger {
	if l == nil {
		return Default()
	}
	return l
}
