package config

import "github.com/cockroachdb/errors"

var (
	// ErrConfigFileNotFound 配置文件未找到
	ErrConfigFileNotFound = errors.New("config file not found")

	// ErrValidationFailed 配置验证失败
	ErrValidationFailed = errors.New("config validation failed")

	// ErrNilConfig 配置为 nil
	ErrNilConfig = errors.New("config cannot be nil")

	// ErrMergeFailed 配置合并失败
	ErrMergeFailed = errors.New("failed to merge configs")

	// ErrEmptyConfig 配置文件为空，常见于编辑器保存过程中的截断
	ErrEmptyConfig = errors.New("config file is empty")

	// ErrMissingKey 配置文件缺少必需的段
	ErrMissingKey = errors.New("config key missing")
)
