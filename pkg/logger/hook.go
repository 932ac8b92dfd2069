package logger

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// Hook 日志写入前回调，返回 false 丢弃该条日志
type Hook interface {
	OnWrite(entry zapcore.Entry, fields []zapcore.Field) bool
}

// HookFunc 函数式 Hook
type HookFunc func(entry zapcore.Entry, fields []zapcore.Field) bool

func (f HookFunc) OnWrite(entry zapcore.Entry, fields []zapcore.Field) bool {
	return f(entry, fields)
}

// HookedCore 在写入前依次执行 hooks
type HookedCore struct {
	zapcore.Core
	hooks []Hook
}

// NewHookedCore 包装 core
func NewHookedCore(core zapcore.Core, hooks ...Hook) zapcore.Core {
	return &HookedCore{Core: core, hooks: hooks}
}

func (h *HookedCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if h.Enabled(entry.Level) {
		return ce.AddCore(entry, h)
	}
	return ce
}

func (h *HookedCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	for _, hook := range h.hooks {
		if !hook.OnWrite(entry, fields) {
			return nil
		}
	}
	return h.Core.Write(entry, fields)
}

func (h *HookedCore) With(fields []zapcore.Field) zapcore.Core {
	for _, hook := range h.hooks {
		hook.OnWrite(zapcore.Entry{}, fields)
	}
	return &HookedCore{Core: h.Core.With(fields), hooks: h.hooks}
}

const redacted = "***REDACTED***"

// SensitiveDataHook 把指定字段名（不区分大小写）的值替换为 ***REDACTED***
func SensitiveDataHook(keys []string) Hook {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[strings.ToLower(k)] = struct{}{}
	}

	return HookFunc(func(_ zapcore.Entry, fields []zapcore.Field) bool {
		for i := range fields {
			if _, ok := set[strings.ToLower(fields[i].Key)]; !ok {
				continue
			}
			fields[i] = zapcore.Field{Key: fields[i].Key, Type: zapcore.StringType, String: redacted}
		}
		return true
	})
}
