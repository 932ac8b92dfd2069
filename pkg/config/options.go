package config

import (
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Option 配置选项函数
type Option func(*manager)

// WithDefaults 设置默认配置值
func WithDefaults(defaults map[string]any) Option {
	return func(m *manager) {
		for key, value := range defaults {
			m.v.SetDefault(key, value)
		}
	}
}

// WithConfigType 设置配置文件类型（yaml、json、toml 等）
func WithConfigType(configType string) Option {
	return func(m *manager) {
		m.v.SetConfigType(configType)
	}
}

// WithEnvPrefix 设置环境变量前缀，等价于 BindEnv
func WithEnvPrefix(prefix string) Option {
	return func(m *manager) {
		m.bindEnv(prefix)
	}
}

// WithDecodeHooks 追加 mapstructure 解码钩子
func WithDecodeHooks(hooks ...mapstructure.DecodeHookFunc) Option {
	return func(m *manager) {
		m.hooks = append(m.hooks, hooks...)
	}
}

// WithViper 使用自定义的 Viper 实例
func WithViper(v *viper.Viper) Option {
	return func(m *manager) {
		m.v = v
	}
}

// WithEnvFallback 当 envs 中任一环境变量非空时，将其作为 key 的默认值
// 配置文件与带前缀的环境变量仍然优先
func WithEnvFallback(key string, envs ...string) Option {
	return func(m *manager) {
		for _, env := range envs {
			if val, ok := os.LookupEnv(env); ok && val != "" {
				m.v.SetDefault(key, val)
				return
			}
		}
	}
}
