package dao

import (
	"context"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/metrics"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/model"
	"github.com/lk2023060901/pigfarm/pkg/database/redis"
	"github.com/lk2023060901/pigfarm/pkg/logger"
	"golang.org/x/sync/singleflight"
)

const (
	leaderboardKeyPrefix = "pigfarm:leaderboard:"
	leaderboardCacheType = "leaderboard"

	defaultLeaderboardTTL = 30 * time.Second
)

// LeaderboardCache 每个聊天的排行榜 JSON 缓存
//
// 未命中时经 singleflight 合并回源，写操作后由 Store 调用 Invalidate。
// Redis 出错只记日志并按未命中处理，不影响读路径。
type LeaderboardCache struct {
	redis   *redis.Client
	ttl     time.Duration
	group   singleflight.Group
	logger  logger.Logger
	metrics *metrics.BotMetrics
}

// NewLeaderboardCache 创建排行榜缓存，ttl 为 0 时使用默认值
func NewLeaderboardCache(rdb *redis.Client, ttl time.Duration, l logger.Logger, m *metrics.BotMetrics) *LeaderboardCache {
	if ttl <= 0 {
		ttl = defaultLeaderboardTTL
	}
	return &LeaderboardCache{
		redis:   rdb,
		ttl:     ttl,
		logger:  logger.OrDefault(l).Named("dao.leaderboard"),
		metrics: m,
	}
}

func leaderboardKey(chatID int64) string {
	return leaderboardKeyPrefix + strconv.FormatInt(chatID, 10)
}

// Ranked 返回缓存的排行榜，未命中时调用 load 并回填
func (c *LeaderboardCache) Ranked(ctx context.Context, chatID int64, load func(context.Context) ([]*model.Creature, error)) ([]*model.Creature, error) {
	key := leaderboardKey(chatID)

	cached, err := redis.GetObject[[]*model.Creature](c.redis, ctx, key)
	switch {
	case err == nil:
		c.metrics.RecordCacheHit(leaderboardCacheType)
		return *cached, nil
	case errors.Is(err, redis.ErrNil):
	default:
		c.logger.WarnContext(ctx, "failed to read leaderboard cache", "chat_id", chatID, "error", err)
	}
	c.metrics.RecordCacheMiss(leaderboardCacheType)

	v, err, _ := c.group.Do(key, func() (any, error) {
		list, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if err := redis.SetObject(c.redis, ctx, key, list, c.ttl); err != nil {
			c.logger.WarnContext(ctx, "failed to fill leaderboard cache", "chat_id", chatID, "error", err)
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneCreatures(v.([]*model.Creature)), nil
}

// Invalidate 删除聊天的排行榜缓存
func (c *LeaderboardCache) Invalidate(ctx context.Context, chatID int64) {
	if _, err := c.redis.Del(ctx, leaderboardKey(chatID)); err != nil {
		c.logger.WarnContext(ctx, "failed to invalidate leaderboard cache", "chat_id", chatID, "error", err)
	}
}

// singleflight 的结果被多个调用方共享，各自拿到独立副本
func cloneCreatures(list []*model.Creature) []*model.Creature {
	out := make([]*model.Creature, len(list))
	for i, c := range list {
		out[i] = c.Clone()
	}
	return out
}
