package dao

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/gameerr"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/model"
	"golang.org/x/text/cases"
)

var _ Storage = (*MemoryStore)(nil)

type creatureKey struct {
	chatID int64
	userID int64
}

// MemoryStore 进程内存储，排序语义与 PostgreSQL 实现一致
type MemoryStore struct {
	mu        sync.RWMutex
	creatures map[creatureKey]*model.Creature
	items     []*model.Item
	nextID    int32
	nextItem  int32
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		creatures: make(map[creatureKey]*model.Creature),
	}
}

// GetCreature 实现 Storage
func (s *MemoryStore) GetCreature(_ context.Context, chatID, userID int64) (*model.Creature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creatures[creatureKey{chatID, userID}].Clone(), nil
}

// CreateCreature 实现 Storage
func (s *MemoryStore) CreateCreature(_ context.Context, c *model.Creature) (*model.Creature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := creatureKey{c.ChatID, c.UserID}
	if _, ok := s.creatures[key]; ok {
		return nil, gameerr.Storage(errors.Mark(errors.Newf("duplicate creature chat=%d user=%d", c.ChatID, c.UserID), ErrCreatureExists), "create creature")
	}

	s.nextID++
	stored := c.Clone()
	stored.ID = s.nextID
	s.creatures[key] = stored
	return stored.Clone(), nil
}

// UpdateCreature 实现 Storage
func (s *MemoryStore) UpdateCreature(_ context.Context, c *model.Creature) (*model.Creature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := creatureKey{c.ChatID, c.UserID}
	cur, ok := s.creatures[key]
	if !ok {
		return nil, gameerr.Storage(ErrCreatureNotFound, "update creature")
	}
	return s.replace(key, cur, c), nil
}

// UpdateCreatureIfWeight 实现 Storage
func (s *MemoryStore) UpdateCreatureIfWeight(_ context.Context, c *model.Creature, expected int32) (*model.Creature, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := creatureKey{c.ChatID, c.UserID}
	cur, ok := s.creatures[key]
	if !ok || cur.Weight != expected {
		return nil, false, nil
	}
	return s.replace(key, cur, c), true, nil
}

// replace 调用方持有写锁，ID 保持不变
func (s *MemoryStore) replace(key creatureKey, cur, next *model.Creature) *model.Creature {
	stored := next.Clone()
	stored.ID = cur.ID
	s.creatures[key] = stored
	return stored.Clone()
}

// RenameCreature 实现 Storage
func (s *MemoryStore) RenameCreature(_ context.Context, chatID, userID int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.creatures[creatureKey{chatID, userID}]
	if !ok {
		return gameerr.Storage(ErrCreatureNotFound, "rename creature")
	}
	cur.Name = name
	return nil
}

// ListCreaturesRanked 实现 Storage
func (s *MemoryStore) ListCreaturesRanked(_ context.Context, chatID int64) ([]*model.Creature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ranked(chatID, func(*model.Creature) bool { return true }), nil
}

// CountCreatures 实现 Storage
func (s *MemoryStore) CountCreatures(_ context.Context, chatID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for key := range s.creatures {
		if key.chatID == chatID {
			n++
		}
	}
	return n, nil
}

// RankOf 实现 Storage
func (s *MemoryStore) RankOf(_ context.Context, chatID, userID int64) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, c := range s.ranked(chatID, func(*model.Creature) bool { return true }) {
		if c.UserID == userID {
			return i + 1, true, nil
		}
	}
	return 0, false, nil
}

// FindCreaturesByName 实现 Storage，忽略大小写的子串匹配
func (s *MemoryStore) FindCreaturesByName(_ context.Context, chatID int64, substr string) ([]*model.Creature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Caser 有内部状态，不能跨 goroutine 共享
	fold := cases.Fold()
	needle := fold.String(substr)
	return s.ranked(chatID, func(c *model.Creature) bool {
		return strings.Contains(fold.String(c.Name), needle)
	}), nil
}

// ranked 调用方持有读锁，返回副本
func (s *MemoryStore) ranked(chatID int64, keep func(*model.Creature) bool) []*model.Creature {
	list := make([]*model.Creature, 0)
	for key, c := range s.creatures {
		if key.chatID == chatID && keep(c) {
			list = append(list, c.Clone())
		}
	}
	SortRanked(list)
	return list
}

// ListItems 实现 Storage
func (s *MemoryStore) ListItems(_ context.Context, chatID, owner int64) ([]*model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]*model.Item, 0)
	for _, it := range s.items {
		if it.ChatID == chatID && it.Owner == owner {
			cp := *it
			items = append(items, &cp)
		}
	}
	return items, nil
}

// AddItem 实现 Storage
func (s *MemoryStore) AddItem(_ context.Context, item *model.Item) (*model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepareItem(item)
	s.nextItem++
	stored := *item
	stored.ID = s.nextItem
	s.items = append(s.items, &stored)

	cp := stored
	return &cp, nil
}

// Ping 实现 Storage
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// SortRanked 体重降序，同体重 ID 升序
func SortRanked(list []*model.Creature) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Weight != list[j].Weight {
			return list[i].Weight > list[j].Weight
		}
		return list[i].ID < list[j].ID
	})
}
