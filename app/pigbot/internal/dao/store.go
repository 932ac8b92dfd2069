package dao

import (
	"context"

	"github.com/lk2023060901/pigfarm/app/pigbot/internal/model"
)

var (
	_ Storage = (*Store)(nil)

	_ creatureStore = (*CreatureDAO)(nil)
	_ itemStore     = (*ItemDAO)(nil)
	_ creatureStore = (*MemoryStore)(nil)
	_ itemStore     = (*MemoryStore)(nil)
)

type creatureStore interface {
	GetCreature(ctx context.Context, chatID, userID int64) (*model.Creature, error)
	CreateCreature(ctx context.Context, c *model.Creature) (*model.Creature, error)
	UpdateCreature(ctx context.Context, c *model.Creature) (*model.Creature, error)
	UpdateCreatureIfWeight(ctx context.Context, c *model.Creature, expected int32) (*model.Creature, bool, error)
	RenameCreature(ctx context.Context, chatID, userID int64, name string) error
	ListCreaturesRanked(ctx context.Context, chatID int64) ([]*model.Creature, error)
	CountCreatures(ctx context.Context, chatID int64) (int, error)
	RankOf(ctx context.Context, chatID, userID int64) (int, bool, error)
	FindCreaturesByName(ctx context.Context, chatID int64, substr string) ([]*model.Creature, error)
	Ping(ctx context.Context) error
}

type itemStore interface {
	ListItems(ctx context.Context, chatID, owner int64) ([]*model.Item, error)
	AddItem(ctx context.Context, item *model.Item) (*model.Item, error)
}

// Store 组合猪、战利品存储和可选的排行榜缓存
type Store struct {
	creatures creatureStore
	items     itemStore
	// 为 nil 时排行榜直接读底层存储
	leaderboard *LeaderboardCache
}

// NewStore 创建组合存储，leaderboard 可以为 nil
func NewStore(creatures *CreatureDAO, items *ItemDAO, leaderboard *LeaderboardCache) *Store {
	return &Store{creatures: creatures, items: items, leaderboard: leaderboard}
}

// NewMemoryBackedStore 内存存储加可选缓存
func NewMemoryBackedStore(mem *MemoryStore, leaderboard *LeaderboardCache) *Store {
	return &Store{creatures: mem, items: mem, leaderboard: leaderboard}
}

func (s *Store) invalidate(ctx context.Context, chatID int64) {
	if s.leaderboard != nil {
		s.leaderboard.Invalidate(ctx, chatID)
	}
}

// GetCreature 实现 Storage
func (s *Store) GetCreature(ctx context.Context, chatID, userID int64) (*model.Creature, error) {
	return s.creatures.GetCreature(ctx, chatID, userID)
}

// CreateCreature 实现 Storage
func (s *Store) CreateCreature(ctx context.Context, c *model.Creature) (*model.Creature, error) {
	created, err := s.creatures.CreateCreature(ctx, c)
	if err == nil {
		s.invalidate(ctx, c.ChatID)
	}
	return created, err
}

// UpdateCreature 实现 Storage
func (s *Store) UpdateCreature(ctx context.Context, c *model.Creature) (*model.Creature, error) {
	updated, err := s.creatures.UpdateCreature(ctx, c)
	if err == nil {
		s.invalidate(ctx, c.ChatID)
	}
	return updated, err
}

// UpdateCreatureIfWeight 实现 Storage
func (s *Store) UpdateCreatureIfWeight(ctx context.Context, c *model.Creature, expected int32) (*model.Creature, bool, error) {
	updated, ok, err := s.creatures.UpdateCreatureIfWeight(ctx, c, expected)
	if err == nil && ok {
		s.invalidate(ctx, c.ChatID)
	}
	return updated, ok, err
}

// RenameCreature 实现 Storage
func (s *Store) RenameCreature(ctx context.Context, chatID, userID int64, name string) error {
	err := s.creatures.RenameCreature(ctx, chatID, userID, name)
	if err == nil {
		s.invalidate(ctx, chatID)
	}
	return err
}

// ListCreaturesRanked 实现 Storage，优先读缓存
func (s *Store) ListCreaturesRanked(ctx context.Context, chatID int64) ([]*model.Creature, error) {
	if s.leaderboard == nil {
		return s.creatures.ListCreaturesRanked(ctx, chatID)
	}
	return s.leaderboard.Ranked(ctx, chatID, func(ctx context.Context) ([]*model.Creature, error) {
		return s.creatures.ListCreaturesRanked(ctx, chatID)
	})
}

// CountCreatures 实现 Storage
func (s *Store) CountCreatures(ctx context.Context, chatID int64) (int, error) {
	return s.creatures.CountCreatures(ctx, chatID)
}

// RankOf 实现 Storage
func (s *Store) RankOf(ctx context.Context, chatID, userID int64) (int, bool, error) {
	return s.creatures.RankOf(ctx, chatID, userID)
}

// FindCreaturesByName 实现 Storage
func (s *Store) FindCreaturesByName(ctx context.Context, chatID int64, substr string) ([]*model.Creature, error) {
	return s.creatures.FindCreaturesByName(ctx, chatID, substr)
}

// ListItems 实现 Storage
func (s *Store) ListItems(ctx context.Context, chatID, owner int64) ([]*model.Item, error) {
	return s.items.ListItems(ctx, chatID, owner)
}

// AddItem 实现 Storage
func (s *Store) AddItem(ctx context.Context, item *model.Item) (*model.Item, error) {
	return s.items.AddItem(ctx, item)
}

// Ping 实现 Storage
func (s *Store) Ping(ctx context.Context) error {
	return s.creatures.Ping(ctx)
}
