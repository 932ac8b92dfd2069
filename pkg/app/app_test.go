package app

import (
	"runtime/debug"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/pigfarm/pkg/logger"
)

type recordingServer struct {
	name    string
	events  *[]string
	mu      *sync.Mutex
	failing bool
}

func (s *recordingServer) Start() error {
	s.record("start " + s.name)
	if s.failing {
		return errors.New("boom")
	}
	return nil
}

func (s *recordingServer) Stop() error {
	s.record("stop " + s.name)
	return nil
}

func (s *recordingServer) record(ev string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.events = append(*s.events, ev)
}

func newTestApp() *BaseApp {
	return NewBaseApp(
		WithName("test"),
		WithLogger(logger.NewNoop()),
		WithStopTimeout(time.Second),
		WithoutBanner(),
	)
}

func TestBaseAppRunAndStop(t *testing.T) {
	var (
		mu     sync.Mutex
		events []string
	)

	a := newTestApp()
	a.AppendServer(&recordingServer{name: "poller", events: &events, mu: &mu})
	a.AppendCloser(
		CloserFunc(func() error { mu.Lock(); events = append(events, "close db"); mu.Unlock(); return nil }),
		CloserFunc(func() error { mu.Lock(); events = append(events, "close redis"); mu.Unlock(); return nil }),
	)

	done := make(chan error, 1)
	go func() { done <- a.Run() }()

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		started := len(events) > 0
		mu.Unlock()
		if started {
			break
		}
		select {
		case <-deadline:
			t.Fatal("server was not started")
		case <-time.After(5 * time.Millisecond):
		}
	}

	a.Stop()
	if err := <-done; err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{"start poller", "stop poller", "close redis", "close db"}
	mu.Lock()
	defer mu.Unlock()
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, events[i], want[i])
		}
	}
}

func TestBaseAppRunTwice(t *testing.T) {
	a := newTestApp()
	done := make(chan error, 1)
	go func() { done <- a.Run() }()

	// 等待第一次 Run 标记为已启动
	for !a.started.Load() {
		time.Sleep(time.Millisecond)
	}
	if err := a.Run(); !errors.Is(err, ErrAppAlreadyRunning) {
		t.Errorf("Run() second call error = %v, want ErrAppAlreadyRunning", err)
	}

	a.Stop()
	<-done
}

func TestBaseAppStartFailure(t *testing.T) {
	var (
		mu     sync.Mutex
		events []string
	)

	a := newTestApp()
	a.AppendServer(&recordingServer{name: "admin", events: &events, mu: &mu, failing: true})

	if err := a.Run(); err == nil {
		t.Fatal("Run() should fail when a server fails to start")
	}
	if err := a.Shutdown(); err != nil {
		t.Errorf("Shutdown() after failure error = %v", err)
	}
}

func TestBaseAppLogger(t *testing.T) {
	a := newTestApp()
	if a.Logger("game") == nil {
		t.Error("Logger() should fall back to a named app logger")
	}

	l := logger.NewNoop()
	a.RegisterLogger("audit", l)
	if got := a.Logger("audit"); got != logger.Logger(l) {
		t.Error("Logger() should return the registered logger")
	}
}

func TestInfoString(t *testing.T) {
	info := Info{
		AppName:   "pigbot",
		Version:   "v1.2.0",
		GitCommit: "3f2a9c1d0b7e55aa",
		BuildDate: "2024-05-01T12:00:00Z",
		Modified:  true,
		GoVersion: "go1.25.4",
		Platform:  "linux/amd64",
	}
	want := "pigbot v1.2.0 (3f2a9c1d0b7e-dirty, 2024-05-01T12:00:00Z) go1.25.4 linux/amd64"
	if got := info.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	if got := GetInfo(); got.GoVersion == "" || got.Platform == "" {
		t.Errorf("GetInfo() = %+v, want go version and platform", got)
	}
}

func TestFillFromBuildInfo(t *testing.T) {
	oldVersion, oldCommit, oldDate, oldModified := Version, GitCommit, BuildDate, modified
	t.Cleanup(func() {
		Version, GitCommit, BuildDate, modified = oldVersion, oldCommit, oldDate, oldModified
	})

	Version, GitCommit, BuildDate, modified = "v9.9.9", "unknown", "unknown", false
	fillFromBuildInfo(&debug.BuildInfo{
		Main: debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abcdef0123456789"},
			{Key: "vcs.time", Value: "2024-05-01T12:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	})

	info := GetInfo()
	if info.Version != "v9.9.9" {
		t.Errorf("Version = %q, ldflags value should win", info.Version)
	}
	if info.GitCommit != "abcdef0123456789" || info.BuildDate != "2024-05-01T12:00:00Z" || !info.Modified {
		t.Errorf("GetInfo() = %+v, want vcs settings applied", info)
	}
}

func TestLoggerRegistryInheritsBase(t *testing.T) {
	base := &logger.Config{
		Level:         logger.InfoLevel,
		EnableConsole: true,
		GlobalFields:  map[string]any{"service": "pigbot"},
		SensitiveKeys: []string{"token"},
	}
	r := NewLoggerRegistry(base)

	err := r.InitLoggers(map[string]*logger.Config{
		"transport": {Level: logger.DebugLevel, GlobalFields: map[string]any{"layer": "telegram"}},
		"dao":       nil,
	})
	if err != nil {
		t.Fatalf("InitLoggers() error = %v", err)
	}

	if got := r.Names(); len(got) != 2 || got[0] != "dao" || got[1] != "transport" {
		t.Errorf("Names() = %v, want [dao transport]", got)
	}
	if r.Get("transport") == nil || r.Get("dao") == nil {
		t.Error("Get() should return initialized loggers")
	}
	if len(base.GlobalFields) != 1 || base.Level != logger.InfoLevel {
		t.Errorf("base config modified: %+v", base)
	}
}

func TestLoggerRegistryAllOrNothing(t *testing.T) {
	r := NewLoggerRegistry(&logger.Config{EnableConsole: true})

	err := r.InitLoggers(map[string]*logger.Config{
		"audit": {Level: logger.WarnLevel},
		"file":  {EnableFile: true},
	})
	if err == nil {
		t.Fatal("InitLoggers() should reject file output without a path")
	}
	if names := r.Names(); len(names) != 0 {
		t.Errorf("Names() = %v after failure, want none", names)
	}
}
