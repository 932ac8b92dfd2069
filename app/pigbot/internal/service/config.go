package service

import (
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/growth"
)

// Config game 配置段
type Config struct {
	growth.Tunables `mapstructure:",squash"`

	// FeedDelay 两次喂养的最小间隔（小时），仅在 EnforceFeedDelay 时生效
	FeedDelay float64 `mapstructure:"feed_delay" json:"feed_delay" yaml:"feed_delay" validate:"gte=0"`
	// SaloDelay 产出间隔（小时），当前只作为配置保留
	SaloDelay           float64 `mapstructure:"salo_delay" json:"salo_delay" yaml:"salo_delay" validate:"gte=0"`
	MaxItems            int     `mapstructure:"max_items" json:"max_items" yaml:"max_items" validate:"gte=0"`
	BasePillsChance     float64 `mapstructure:"base_pills_chance" json:"base_pills_chance" yaml:"base_pills_chance" validate:"gte=0,lte=1"`
	BasePillsChanceGrow float64 `mapstructure:"base_pills_chance_grow" json:"base_pills_chance_grow" yaml:"base_pills_chance_grow" validate:"gte=0,lte=1"`
	// StartWeight 新建猪的初始体重
	StartWeight int32 `mapstructure:"start_weight" json:"start_weight" yaml:"start_weight" validate:"gte=1"`
	// EnforceFeedDelay 是否限制喂养间隔
	EnforceFeedDelay bool `mapstructure:"enforce_feed_delay" json:"enforce_feed_delay" yaml:"enforce_feed_delay"`
	// TopSize top 命令展示的条数
	TopSize int `mapstructure:"top_size" json:"top_size" yaml:"top_size" validate:"gte=1"`
	// HotReload 监听配置文件并替换增长系数
	HotReload bool `mapstructure:"hot_reload" json:"hot_reload" yaml:"hot_reload"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Tunables:            growth.DefaultTunables(),
		FeedDelay:           4,
		SaloDelay:           8,
		MaxItems:            15,
		BasePillsChance:     0.33,
		BasePillsChanceGrow: 0.75,
		StartWeight:         10,
		TopSize:             5,
	}
}
