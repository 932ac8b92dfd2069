package dao

import (
	"context"
	"os"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lk2023060901/pigfarm/app/pigbot/internal/model"
	"github.com/lk2023060901/pigfarm/pkg/database/postgres"
	"github.com/lk2023060901/pigfarm/pkg/database/redis"
	"github.com/lk2023060901/pigfarm/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDB 连接 PIGFARM_TEST_DATABASE_URL 并建表，未设置时跳过
func newTestDB(t *testing.T) *postgres.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	dsn := os.Getenv("PIGFARM_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("PIGFARM_TEST_DATABASE_URL is not set")
	}

	db, err := postgres.New(&postgres.Config{DSN: dsn, ConnectTimeout: 3 * time.Second})
	if err != nil {
		t.Skipf("postgres unreachable: %v", err)
	}
	t.Cleanup(db.Close)

	require.NoError(t, Migrate(context.Background(), db, logger.NewNoop()))
	return db
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	host := os.Getenv("PIGFARM_TEST_REDIS_HOST")
	if host == "" {
		t.Skip("PIGFARM_TEST_REDIS_HOST is not set")
	}
	port := 6379
	if p, err := strconv.Atoi(os.Getenv("PIGFARM_TEST_REDIS_PORT")); err == nil {
		port = p
	}

	rdb, err := redis.NewClient(&redis.Config{Standalone: &redis.NodeConfig{Host: host, Port: port, DB: 15}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx); err != nil {
		t.Skipf("redis unreachable: %v", err)
	}
	return rdb
}

// uniqueChatID 每次运行使用不同的聊天，避免残留数据影响断言
func uniqueChatID() int64 {
	return -time.Now().UnixNano()
}

func TestPostgresStore(t *testing.T) {
	db := newTestDB(t)
	l := logger.NewNoop()
	store := NewStore(NewCreatureDAO(db, l, nil), NewItemDAO(db, l, nil), nil)
	runStorageContract(t, store, uniqueChatID())
}

func TestLeaderboardCache(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()
	chatID := uniqueChatID()

	mem := NewMemoryStore()
	cache := NewLeaderboardCache(rdb, time.Minute, logger.NewNoop(), nil)
	store := NewMemoryBackedStore(mem, cache)
	t.Cleanup(func() { cache.Invalidate(ctx, chatID) })

	_, err := store.CreateCreature(ctx, &model.Creature{ChatID: chatID, UserID: 1, Name: "a", Weight: 10})
	require.NoError(t, err)

	var loads atomic.Int32
	load := func(ctx context.Context) ([]*model.Creature, error) {
		loads.Add(1)
		return mem.ListCreaturesRanked(ctx, chatID)
	}

	first, err := cache.Ranked(ctx, chatID, load)
	require.NoError(t, err)
	second, err := cache.Ranked(ctx, chatID, load)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), loads.Load())

	// 写操作使缓存失效
	_, err = store.CreateCreature(ctx, &model.Creature{ChatID: chatID, UserID: 2, Name: "b", Weight: 20})
	require.NoError(t, err)

	list, err := store.ListCreaturesRanked(ctx, chatID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].UserID)
}
