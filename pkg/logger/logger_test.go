package logger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{"nil config uses default", nil, false},
		{"json console", &Config{Level: DebugLevel, Format: JSONFormat, EnableConsole: true}, false},
		{"file without path", &Config{EnableFile: true}, true},
		{"file output", &Config{EnableFile: true, OutputPath: filepath.Join(t.TempDir(), "pig.log")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && l == nil {
				t.Fatal("New() returned nil logger without error")
			}
		})
	}
}

func TestToZapFields(t *testing.T) {
	tests := []struct {
		name string
		in   []any
		keys []string
	}{
		{"empty", nil, nil},
		{"key values", []any{"chat_id", int64(1), "user_id", int64(2)}, []string{"chat_id", "user_id"}},
		{"zap fields", []any{zap.String("a", "b"), zap.Int("c", 1)}, []string{"a", "c"}},
		{"odd count", []any{"chat_id", int64(1), "dangling"}, []string{"chat_id", "!BADKEY"}},
		{"non string key skipped", []any{42, "x", "ok", true}, []string{"ok"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toZapFields(tt.in...)
			if len(got) != len(tt.keys) {
				t.Fatalf("toZapFields() len = %d, want %d", len(got), len(tt.keys))
			}
			for i, key := range tt.keys {
				if got[i].Key != key {
					t.Errorf("field[%d].Key = %q, want %q", i, got[i].Key, key)
				}
			}
		})
	}
}

func TestErrorValueUsesNamedError(t *testing.T) {
	fields := toZapFields("error", errors.New("boom"))
	if len(fields) != 1 || fields[0].Type != zapcore.ErrorType {
		t.Fatalf("toZapFields(error) = %+v, want ErrorType field", fields)
	}
}

func TestContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewWithCore(core)

	ctx := WithContextFields(context.Background(), "chat_id", int64(-100), "user_id", int64(7))
	ctx = WithContextFields(ctx, "update_id", 99)
	l.InfoContext(ctx, "grow handled", "delta", 12)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	for _, key := range []string{"chat_id", "user_id", "update_id", "delta"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("field %q missing in %v", key, fields)
		}
	}
}

func TestContextFieldsWithoutValues(t *testing.T) {
	ctx := context.Background()
	if got := WithContextFields(ctx); got != ctx {
		t.Error("WithContextFields() without fields should return the same context")
	}
	if got := DefaultContextExtractor(ctx); got != nil {
		t.Errorf("DefaultContextExtractor() = %v, want nil", got)
	}
}

func TestSensitiveDataHook(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewWithCore(core, WithHooks(SensitiveDataHook([]string{"Token"})))

	l.Info("bot started", "token", "123:secret", "name", "pigbot")

	fields := logs.All()[0].ContextMap()
	if fields["token"] != redacted {
		t.Errorf("token = %v, want redacted", fields["token"])
	}
	if fields["name"] != "pigbot" {
		t.Errorf("name = %v, want pigbot", fields["name"])
	}
}

func TestNamedAndWithFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := NewWithCore(core)

	l := base.Named("service").Named("game").WithFields("module", "pig")
	l.Info("ready")

	entry := logs.All()[0]
	if entry.LoggerName != "service.game" {
		t.Errorf("LoggerName = %q, want service.game", entry.LoggerName)
	}
	if entry.ContextMap()["module"] != "pig" {
		t.Errorf("module field = %v, want pig", entry.ContextMap()["module"])
	}
	if same := base.WithFields(); same != base {
		t.Error("WithFields() without fields should return the receiver")
	}
}

func TestLevelFiltering(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	l := NewWithCore(core)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	l.Error("shown")

	if logs.Len() != 2 {
		t.Errorf("logged %d entries, want 2", logs.Len())
	}
}

func TestRotationWriter(t *testing.T) {
	dir := t.TempDir()

	t.Run("size", func(t *testing.T) {
		path := filepath.Join(dir, "size.log")
		w, err := NewRotationWriter(&RotationConfig{Type: RotationBySize, MaxSize: 1}, path)
		if err != nil {
			t.Fatalf("NewRotationWriter() error = %v", err)
		}
		if _, err := w.Write([]byte("oink\n")); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("log file not created: %v", err)
		}
	})

	t.Run("time", func(t *testing.T) {
		path := filepath.Join(dir, "time.log")
		w, err := NewRotationWriter(&RotationConfig{Type: RotationByTime, RotationTime: "bogus"}, path)
		if err != nil {
			t.Fatalf("NewRotationWriter() error = %v", err)
		}
		if _, err := w.Write([]byte("oink\n")); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	})
}

func TestDefault(t *testing.T) {
	if Default() == nil {
		t.Fatal("Default() returned nil")
	}

	noop := NewNoop()
	SetDefault(noop)
	defer SetDefault(nil)

	if Default() != Logger(noop) {
		t.Error("Default() should return the logger passed to SetDefault")
	}
	if OrDefault(nil) != Logger(noop) {
		t.Error("OrDefault(nil) should fall back to Default()")
	}
}
