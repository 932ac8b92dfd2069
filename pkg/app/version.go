package app

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
)

// 构建时注入：
//
//	go build -ldflags "-X github.com/lk2023060901/pigfarm/pkg/app.Version=v1.2.0 -X ...app.GitCommit=$(git rev-parse HEAD)"
//
// 未注入时从 debug.ReadBuildInfo 的 vcs 信息中补齐。
var (
	Version   = "unknown"
	GitCommit = "unknown"
	BuildDate = "unknown"
	AppName   = ""
)

const (
	defaultAppName = "pigbot"
	shortCommitLen = 12
)

func init() {
	if AppName == "" {
		AppName = defaultAppName
		if execPath, err := os.Executable(); err == nil {
			AppName = strings.TrimSuffix(filepath.Base(execPath), ".test")
		}
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		fillFromBuildInfo(bi)
	}
}

// fillFromBuildInfo 仅覆盖仍为 unknown 的字段
func fillFromBuildInfo(bi *debug.BuildInfo) {
	if Version == "unknown" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if GitCommit == "unknown" && s.Value != "" {
				GitCommit = s.Value
			}
		case "vcs.time":
			if BuildDate == "unknown" && s.Value != "" {
				BuildDate = s.Value
			}
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
}

var modified bool

// Info 版本信息，启动日志与运维接口 /version 共用
type Info struct {
	AppName   string `json:"app_name"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo 获取当前应用信息
func GetInfo() Info {
	return Info{
		AppName:   AppName,
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		Modified:  modified,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// ShortCommit 提交哈希前 12 位，工作区有改动时追加 -dirty
func (i Info) ShortCommit() string {
	commit := i.GitCommit
	if len(commit) > shortCommitLen {
		commit = commit[:shortCommitLen]
	}
	if i.Modified {
		commit += "-dirty"
	}
	return commit
}

// LogFields 启动日志使用的键值对
func (i Info) LogFields() []any {
	return []any{
		"name", i.AppName,
		"version", i.Version,
		"commit", i.ShortCommit(),
		"build_date", i.BuildDate,
		"go_version", i.GoVersion,
	}
}

// String 横幅文本，例如 "pigbot v1.2.0 (3f2a9c1d0b7e, 2024-05-01T12:00:00Z) go1.25.4 linux/amd64"
func (i Info) String() string {
	return fmt.Sprintf("%s %s (%s, %s) %s %s",
		i.AppName, i.Version, i.ShortCommit(), i.BuildDate, i.GoVersion, i.Platform)
}
