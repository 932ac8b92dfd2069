// Package service 实现一次玩家操作内的游戏逻辑：查找、创建、喂养、改名与只读查询。
//
// 写路径都在 (chat, player) 锁内执行，体重写入使用条件更新，冲突时重读并重试一次。
package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/dao"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/gameerr"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/growth"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/metrics"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/model"
	"github.com/lk2023060901/pigfarm/pkg/config"
	"github.com/lk2023060901/pigfarm/pkg/logger"
	"github.com/rivo/uniseg"
)

// MaxNameGraphemes 名字长度上限（不含），按字素簇计数
const MaxNameGraphemes = 32

// growAttempts 条件更新的总尝试次数
const growAttempts = 2

// Locker 按 (chat, player) 串行化
type Locker interface {
	WithLock(ctx context.Context, chatID, userID int64, fn func() error) error
}

// GameService 游戏会话逻辑
type GameService struct {
	config   *Config
	store    dao.Storage
	locker   Locker
	tunables *TunablesProvider
	rng      growth.RNG
	now      func() time.Time
	logger   logger.Logger
	metrics  *metrics.BotMetrics
}

// Option GameService 选项
type Option func(*GameService)

// WithRNG 替换随机源
func WithRNG(rng growth.RNG) Option {
	return func(s *GameService) { s.rng = rng }
}

// WithClock 替换时钟
func WithClock(now func() time.Time) Option {
	return func(s *GameService) { s.now = now }
}

// WithMetrics 设置指标
func WithMetrics(m *metrics.BotMetrics) Option {
	return func(s *GameService) { s.metrics = m }
}

// NewGameService 创建游戏服务
func NewGameService(cfg *Config, store dao.Storage, locker Locker, tunables *TunablesProvider, l logger.Logger, opts ...Option) (*GameService, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge game config")
	}
	if err := config.Validate(newCfg); err != nil {
		return nil, err
	}

	s := &GameService{
		config:   newCfg,
		store:    store,
		locker:   locker,
		tunables: tunables,
		rng:      growth.Default(),
		now:      time.Now,
		logger:   logger.OrDefault(l).Named("service.game"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config 返回生效的配置
func (s *GameService) Config() *Config {
	return s.config
}

// GrowResult 一次喂养的结果
type GrowResult struct {
	Creature *model.Creature
	// Delta 实际体重变化
	Delta int
	// Created 本次操作新建了猪
	Created bool
	Text    string
}

// Grow 喂养；没有猪时先按 nameHint 或随机名创建
func (s *GameService) Grow(ctx context.Context, actor model.Actor, nameHint string) (*GrowResult, error) {
	var res *GrowResult
	err := s.withLock(ctx, actor, func() error {
		c, err := s.store.GetCreature(ctx, actor.ChatID, actor.UserID)
		if err != nil {
			return err
		}

		created := false
		if c == nil {
			if c, err = s.create(ctx, actor, nameHint); err != nil {
				return err
			}
			created = true
		} else if err := s.checkCooldown(c); err != nil {
			return err
		}

		updated, delta, err := s.growCycle(ctx, c)
		if err != nil {
			return err
		}
		res = &GrowResult{
			Creature: updated,
			Delta:    delta,
			Created:  created,
			Text:     GrowText(updated.Name, delta, updated.Weight),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordGrowth(res.Delta)
	s.logger.InfoContext(ctx, "creature fed",
		"chat_id", actor.ChatID,
		"user_id", actor.UserID,
		"delta", res.Delta,
		"weight", res.Creature.Weight,
		"created", res.Created,
	)
	return res, nil
}

func (s *GameService) checkCooldown(c *model.Creature) error {
	if !s.config.EnforceFeedDelay || c.LastFeed <= 0 {
		return nil
	}
	delay := time.Duration(s.config.FeedDelay * float64(time.Hour))
	next := unixTime(c.LastFeed).Add(delay)
	if remaining := next.Sub(s.now()); remaining > 0 {
		return gameerr.Validation(CooldownText(remaining))
	}
	return nil
}

// growCycle 调用方持有锁；返回写入后的记录和实际变化量
func (s *GameService) growCycle(ctx context.Context, c *model.Creature) (*model.Creature, int, error) {
	for attempt := 1; ; attempt++ {
		next, delta, err := s.nextState(ctx, c)
		if err != nil {
			return nil, 0, err
		}

		updated, ok, err := s.store.UpdateCreatureIfWeight(ctx, next, c.Weight)
		if err != nil {
			return nil, 0, err
		}
		if ok {
			return updated, delta, nil
		}

		s.logger.WarnContext(ctx, "weight changed concurrently",
			"chat_id", c.ChatID,
			"user_id", c.UserID,
			"expected_weight", c.Weight,
			"attempt", attempt,
		)
		if attempt >= growAttempts {
			return nil, 0, gameerr.Storage(gameerr.ErrConcurrentUpdate, "grow creature")
		}

		if c, err = s.store.GetCreature(ctx, c.ChatID, c.UserID); err != nil {
			return nil, 0, err
		}
		if c == nil {
			return nil, 0, gameerr.Storage(dao.ErrCreatureNotFound, "grow creature")
		}
	}
}

// nextState 读取名次、计算区间并采样，不做写入
func (s *GameService) nextState(ctx context.Context, c *model.Creature) (*model.Creature, int, error) {
	population, err := s.store.CountCreatures(ctx, c.ChatID)
	if err != nil {
		return nil, 0, err
	}
	rank, ok, err := s.store.RankOf(ctx, c.ChatID, c.UserID)
	if err != nil {
		return nil, 0, err
	}
	if !ok || rank < 1 {
		rank = 1
	}
	if population < rank {
		population = rank
	}

	min, max, err := growth.ComputeRange(float64(c.Weight), rank, population, s.tunables.Get())
	if err != nil {
		return nil, 0, err
	}
	sampled := growth.Sample(min, max, s.rng)

	next := c.Clone()
	next.LastWeight = c.Weight
	next.Weight = int32(growth.Apply(int(c.Weight), sampled))
	next.LastFeed = unixSeconds(s.now())

	s.logger.DebugContext(ctx, "growth sampled",
		"rank", rank,
		"population", population,
		"min", min,
		"max", max,
		"sampled", sampled,
	)
	return next, int(next.Weight - c.Weight), nil
}

// CreateResult 创建结果
type CreateResult struct {
	Creature *model.Creature
	Created  bool
	Text     string
}

// Create 每个 (chat, player) 只会创建一次，已存在时返回提示且不写入
func (s *GameService) Create(ctx context.Context, actor model.Actor, name string) (*CreateResult, error) {
	var res *CreateResult
	err := s.withLock(ctx, actor, func() error {
		c, err := s.store.GetCreature(ctx, actor.ChatID, actor.UserID)
		if err != nil {
			return err
		}
		if c != nil {
			res = &CreateResult{Creature: c, Text: AlreadyExistsText(c)}
			return nil
		}

		if c, err = s.create(ctx, actor, name); err != nil {
			return err
		}
		res = &CreateResult{Creature: c, Created: true, Text: CreatedText(actor.DisplayName, c)}
		return nil
	})
	return res, err
}

// create 调用方持有锁，名字规则与 Rename 相同
func (s *GameService) create(ctx context.Context, actor model.Actor, name string) (*model.Creature, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = RandomName(s.rng)
	} else if err := ValidateName(name); err != nil {
		return nil, err
	}

	c, err := s.store.CreateCreature(ctx, &model.Creature{
		ChatID:    actor.ChatID,
		UserID:    actor.UserID,
		Weight:    s.config.StartWeight,
		Name:      name,
		OwnerName: actor.DisplayName,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "creature created",
		"chat_id", actor.ChatID,
		"user_id", actor.UserID,
		"name", c.Name,
	)
	return c, nil
}

// Rename 改名；没有猪时以该名字创建
func (s *GameService) Rename(ctx context.Context, actor model.Actor, name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return "", err
	}

	var text string
	err := s.withLock(ctx, actor, func() error {
		c, err := s.store.GetCreature(ctx, actor.ChatID, actor.UserID)
		if err != nil {
			return err
		}
		if c == nil {
			if _, err := s.create(ctx, actor, name); err != nil {
				return err
			}
			text = fmt.Sprintf(textCreatedNamed, name)
			return nil
		}

		if err := s.store.RenameCreature(ctx, actor.ChatID, actor.UserID, name); err != nil {
			return err
		}
		text = fmt.Sprintf(textRenamed, name)
		return nil
	})
	return text, err
}

// ValidateName 名字非空且少于 MaxNameGraphemes 个字素簇
func ValidateName(name string) error {
	if name == "" {
		return gameerr.Validation(TextEnterName)
	}
	if uniseg.GraphemeClusterCount(name) >= MaxNameGraphemes {
		return gameerr.Validation(TextNameTooLong)
	}
	return nil
}

// InfoResult my 命令的结果，Creature 为 nil 表示玩家还没有猪
type InfoResult struct {
	Creature *model.Creature
	Rank     int
	Text     string
}

// Info 只读
func (s *GameService) Info(ctx context.Context, actor model.Actor) (*InfoResult, error) {
	c, err := s.store.GetCreature(ctx, actor.ChatID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return &InfoResult{Text: TextNoCreature}, nil
	}

	rank, ok, err := s.store.RankOf(ctx, actor.ChatID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		rank = 1
	}
	return &InfoResult{Creature: c, Rank: rank, Text: InfoText(c, rank)}, nil
}

// Stats 只读；query 非空时按名字查找第一只，否则查看自己的
func (s *GameService) Stats(ctx context.Context, actor model.Actor, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query != "" {
		found, err := s.store.FindCreaturesByName(ctx, actor.ChatID, query)
		if err != nil {
			return "", err
		}
		if len(found) == 0 {
			return fmt.Sprintf(textStatsNotFound, query), nil
		}
		c := found[0]
		return fmt.Sprintf(textStatsByName, c.Name, c.OwnerName, c.Weight, c.Barn), nil
	}

	c, err := s.store.GetCreature(ctx, actor.ChatID, actor.UserID)
	if err != nil {
		return "", err
	}
	if c == nil {
		return TextNoCreatureShort, nil
	}
	return fmt.Sprintf(textStatsOwn, c.Name, c.Weight, c.Barn), nil
}

// Top 只读，取前 TopSize 名
func (s *GameService) Top(ctx context.Context, chatID int64) (string, error) {
	list, err := s.store.ListCreaturesRanked(ctx, chatID)
	if err != nil {
		return "", err
	}
	if len(list) > s.config.TopSize {
		list = list[:s.config.TopSize]
	}
	return TopText(list), nil
}

// Items 只读，最多 MaxItems 件
func (s *GameService) Items(ctx context.Context, actor model.Actor) (string, error) {
	items, err := s.store.ListItems(ctx, actor.ChatID, actor.UserID)
	if err != nil {
		return "", err
	}
	if s.config.MaxItems > 0 && len(items) > s.config.MaxItems {
		items = items[:s.config.MaxItems]
	}
	return ItemsText(items), nil
}

// withLock 锁本身的失败归为存储错误
func (s *GameService) withLock(ctx context.Context, actor model.Actor, fn func() error) error {
	var fnErr error
	err := s.locker.WithLock(ctx, actor.ChatID, actor.UserID, func() error {
		fnErr = fn()
		return fnErr
	})
	if err != nil && fnErr == nil {
		return gameerr.Storage(err, "lock creature")
	}
	return err
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func unixTime(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*float64(time.Second)))
}
