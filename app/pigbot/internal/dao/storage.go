// Package dao 提供猪和战利品的持久化：PostgreSQL 实现、内存实现以及 Redis 排行榜缓存。
//
// 所有实现返回的失败都已用 gameerr.Storage 归类，调用方无需再次包装。
package dao

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/model"
)

var (
	// ErrCreatureNotFound 按 (chat, user) 没有匹配到记录
	ErrCreatureNotFound = errors.New("creature not found")

	// ErrCreatureExists (chat, user) 已存在记录
	ErrCreatureExists = errors.New("creature already exists")
)

// 存储驱动
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Storage 游戏存储网关
type Storage interface {
	// GetCreature 不存在时返回 nil, nil
	GetCreature(ctx context.Context, chatID, userID int64) (*model.Creature, error)
	// CreateCreature 插入并返回带 ID 的记录
	CreateCreature(ctx context.Context, c *model.Creature) (*model.Creature, error)
	// UpdateCreature 按 (chat, user) 整行更新
	UpdateCreature(ctx context.Context, c *model.Creature) (*model.Creature, error)
	// UpdateCreatureIfWeight 仅当当前体重等于 expected 时更新，否则返回 false
	UpdateCreatureIfWeight(ctx context.Context, c *model.Creature, expected int32) (*model.Creature, bool, error)
	RenameCreature(ctx context.Context, chatID, userID int64, name string) error
	// ListCreaturesRanked 按体重降序，同体重按 ID 升序
	ListCreaturesRanked(ctx context.Context, chatID int64) ([]*model.Creature, error)
	CountCreatures(ctx context.Context, chatID int64) (int, error)
	// RankOf 1 起始的名次，不存在时返回 0, false
	RankOf(ctx context.Context, chatID, userID int64) (int, bool, error)
	// FindCreaturesByName 名字包含 substr（忽略大小写），排序同 ListCreaturesRanked
	FindCreaturesByName(ctx context.Context, chatID int64, substr string) ([]*model.Creature, error)
	ListItems(ctx context.Context, chatID, owner int64) ([]*model.Item, error)
	// AddItem UUID 为零值时自动生成
	AddItem(ctx context.Context, item *model.Item) (*model.Item, error)
	Ping(ctx context.Context) error
}

// Config 存储配置
type Config struct {
	// Driver postgres | memory
	Driver string `mapstructure:"driver" json:"driver" yaml:"driver" validate:"omitempty,oneof=postgres memory"`
	// AutoMigrate 启动时执行内置建表语句
	AutoMigrate bool `mapstructure:"auto_migrate" json:"auto_migrate" yaml:"auto_migrate"`
	// LeaderboardTTL 排行榜缓存时长，Redis 未启用时无效
	LeaderboardTTL time.Duration `mapstructure:"leaderboard_ttl" json:"leaderboard_ttl" yaml:"leaderboard_ttl"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Driver:         DriverPostgres,
		LeaderboardTTL: 30 * time.Second,
	}
}
