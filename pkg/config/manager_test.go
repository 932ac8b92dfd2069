package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
)

type testGameConfig struct {
	Game struct {
		BaseGrowth  float64       `mapstructure:"base_growth"`
		FeedDelay   time.Duration `mapstructure:"feed_delay"`
		StartWeight int           `mapstructure:"start_weight"`
	} `mapstructure:"game"`
	Modules struct {
		Keywords []string `mapstructure:"keywords"`
	} `mapstructure:"modules"`
}

// createTestConfigFile 在临时目录写入配置文件
func createTestConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestManagerLoadFile(t *testing.T) {
	path := createTestConfigFile(t, `
game:
  base_growth: 0.5
  feed_delay: 4h
  start_weight: 10
modules:
  keywords: "casino,spam"
`)

	mgr := NewManager()
	if err := mgr.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	var cfg testGameConfig
	if err := mgr.Unmarshal(&cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if cfg.Game.BaseGrowth != 0.5 {
		t.Errorf("BaseGrowth = %v, want 0.5", cfg.Game.BaseGrowth)
	}
	if cfg.Game.FeedDelay != 4*time.Hour {
		t.Errorf("FeedDelay = %v, want 4h", cfg.Game.FeedDelay)
	}
	if cfg.Game.StartWeight != 10 {
		t.Errorf("StartWeight = %d, want 10", cfg.Game.StartWeight)
	}
	if len(cfg.Modules.Keywords) != 2 || cfg.Modules.Keywords[1] != "spam" {
		t.Errorf("Keywords = %v, want [casino spam]", cfg.Modules.Keywords)
	}
	if mgr.ConfigFile() != path {
		t.Errorf("ConfigFile() = %q, want %q", mgr.ConfigFile(), path)
	}
}

func TestManagerLoadFileMissing(t *testing.T) {
	mgr := NewManager()
	err := mgr.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, ErrConfigFileNotFound) {
		t.Errorf("LoadFile() error = %v, want ErrConfigFileNotFound", err)
	}
}

func TestManagerUnmarshalKey(t *testing.T) {
	path := createTestConfigFile(t, `
game:
  base_growth: 0.25
  start_weight: 7
`)

	mgr := NewManager()
	if err := mgr.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	var weight int
	if err := mgr.UnmarshalKey("game.start_weight", &weight); err != nil {
		t.Fatalf("UnmarshalKey() error = %v", err)
	}
	if weight != 7 {
		t.Errorf("start_weight = %d, want 7", weight)
	}

	if !mgr.IsSet("game.base_growth") {
		t.Error("expected game.base_growth to be set")
	}
	if mgr.IsSet("game.missing") {
		t.Error("expected game.missing to be unset")
	}
}

func TestManagerBindEnv(t *testing.T) {
	t.Setenv("PIGTEST_GAME_START_WEIGHT", "42")

	path := createTestConfigFile(t, `
game:
  start_weight: 10
`)

	mgr := NewManager()
	mgr.BindEnv("PIGTEST")
	if err := mgr.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if got := mgr.GetInt("game.start_weight"); got != 42 {
		t.Errorf("GetInt() = %d, want 42 from env", got)
	}
}

func TestManagerWithDefaults(t *testing.T) {
	mgr := NewManager(WithDefaults(map[string]any{
		"storage.driver":  "memory",
		"handler.workers": 8,
	}))

	if got := mgr.GetString("storage.driver"); got != "memory" {
		t.Errorf("GetString() = %q, want memory", got)
	}
	if got := mgr.GetInt("handler.workers"); got != 8 {
		t.Errorf("GetInt() = %d, want 8", got)
	}

	mgr.Set("handler.workers", 16)
	if got := mgr.GetInt("handler.workers"); got != 16 {
		t.Errorf("GetInt() after Set = %d, want 16", got)
	}
}

func TestManagerWatchRequiresFile(t *testing.T) {
	mgr := NewManager()
	if err := mgr.Watch(func() {}); err == nil {
		t.Error("Watch() without a loaded file should fail")
	}
}

func TestManagerWithEnvFallback(t *testing.T) {
	t.Setenv("PIGTEST_FALLBACK_DSN", "postgres://fallback")

	mgr := NewManager(WithEnvFallback("database.dsn", "PIGTEST_UNSET_DSN", "PIGTEST_FALLBACK_DSN"))
	if got := mgr.GetString("database.dsn"); got != "postgres://fallback" {
		t.Errorf("GetString() = %q, want fallback value", got)
	}

	path := createTestConfigFile(t, "database:\n  dsn: postgres://file\n")
	if err := mgr.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if got := mgr.GetString("database.dsn"); got != "postgres://file" {
		t.Errorf("GetString() = %q, want file value to win", got)
	}
}
