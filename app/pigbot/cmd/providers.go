package main

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/admin"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/dao"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/growth"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/handler"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/manager"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/metrics"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/module"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/router"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/service"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/transport"
	"github.com/lk2023060901/pigfarm/pkg/app"
	"github.com/lk2023060901/pigfarm/pkg/config"
	"github.com/lk2023060901/pigfarm/pkg/database/postgres"
	"github.com/lk2023060901/pigfarm/pkg/database/redis"
	"github.com/lk2023060901/pigfarm/pkg/logger"
	"github.com/lk2023060901/pigfarm/pkg/otel"
	"github.com/lk2023060901/pigfarm/pkg/prometheus"
	"github.com/lk2023060901/pigfarm/pkg/sentry"
	"github.com/lk2023060901/pigfarm/pkg/web"
	"github.com/lk2023060901/pigfarm/pkg/web/middleware"
)

const migrateTimeout = 30 * time.Second

// provideAppOptions 提供应用选项
func provideAppOptions(cfg *Config, l logger.Logger) []app.Option {
	return []app.Option{
		app.WithName(app.AppName),
		app.WithLogger(l),
		app.WithLogConfig(&cfg.Log),
		app.WithNamedLoggers(cfg.Loggers),
	}
}

// providePrometheus 提供 Prometheus 客户端
func providePrometheus(cfg *Config, l logger.Logger) (*prometheus.Client, error) {
	return prometheus.New(&cfg.Prometheus, prometheus.WithLogger(l))
}

// provideBotMetrics 提供业务指标
func provideBotMetrics(cfg *Config, client *prometheus.Client) (*metrics.BotMetrics, error) {
	return metrics.New(&cfg.Metrics, client)
}

// provideMetricsReporter 提供指标上报器
func provideMetricsReporter(cfg *Config, m *metrics.BotMetrics, l logger.Logger) (*metrics.Reporter, error) {
	return metrics.NewReporter(&cfg.Metrics.Reporter, m, l)
}

// provideSentry 提供错误上报客户端，未启用时为空操作
func provideSentry(cfg *Config) (*sentry.Client, error) {
	return sentry.New(&cfg.Sentry)
}

// provideTracer 提供 TracerProvider，未启用时为空操作
func provideTracer(cfg *Config) (*otel.TracerProvider, error) {
	return otel.New(&cfg.Otel)
}

// provideRedis 提供 Redis 客户端，未启用时返回 nil
func provideRedis(cfg *Config, l logger.Logger) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	return redis.NewClient(&cfg.Redis, redis.WithLogger(l))
}

// provideStorageConfig 提供补全默认值后的存储配置
func provideStorageConfig(cfg *Config) (*dao.Config, error) {
	storageCfg, err := config.MergeConfig(dao.DefaultConfig(), &cfg.Storage)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge storage config")
	}
	if err := config.Validate(storageCfg); err != nil {
		return nil, err
	}
	return storageCfg, nil
}

// providePostgres 提供 PostgreSQL 客户端，内存驱动时返回 nil
func providePostgres(storageCfg *dao.Config, cfg *Config, l logger.Logger) (*postgres.Client, error) {
	if storageCfg.Driver != dao.DriverPostgres {
		return nil, nil
	}
	db, err := postgres.New(&cfg.Database, postgres.WithLogger(l))
	if err != nil {
		return nil, err
	}
	if storageCfg.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
		defer cancel()
		if err := dao.Migrate(ctx, db, l); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// provideStorage 按驱动组装存储网关，Redis 可用时挂上排行榜缓存
func provideStorage(
	storageCfg *dao.Config,
	db *postgres.Client,
	rdb *redis.Client,
	m *metrics.BotMetrics,
	l logger.Logger,
) dao.Storage {
	var leaderboard *dao.LeaderboardCache
	if rdb != nil {
		leaderboard = dao.NewLeaderboardCache(rdb, storageCfg.LeaderboardTTL, l, m)
	}
	if db == nil {
		l.Warn("using in-memory storage, data is lost on restart")
		return dao.NewMemoryBackedStore(dao.NewMemoryStore(), leaderboard)
	}
	return dao.NewStore(dao.NewCreatureDAO(db, l, m), dao.NewItemDAO(db, l, m), leaderboard)
}

// provideLocker 提供按 (chat, player) 的锁
func provideLocker(cfg *Config, rdb *redis.Client, l logger.Logger) (*manager.CreatureLocker, error) {
	return manager.NewCreatureLocker(&cfg.Lock, rdb, l)
}

// provideTunables 以配置中的 game 段初始化增长系数
func provideTunables(cfg *Config, l logger.Logger) (*service.TunablesProvider, error) {
	gameCfg, err := config.MergeConfig(service.DefaultConfig(), &cfg.Game)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge game config")
	}
	return service.NewTunablesProvider(gameCfg.Tunables, l)
}

// provideTunablesWatcher 开启热更新时监听配置文件，未开启时返回 nil
func provideTunablesWatcher(cfg *Config, tunables *service.TunablesProvider) (*config.Watcher[service.GameFile], error) {
	if !cfg.Game.HotReload {
		return nil, nil
	}
	return tunables.Watch(app.GetConfigPath(), config.WithEnvPrefix(app.EnvPrefix))
}

// provideGameService 提供游戏服务
func provideGameService(
	cfg *Config,
	store dao.Storage,
	locker *manager.CreatureLocker,
	tunables *service.TunablesProvider,
	m *metrics.BotMetrics,
	l logger.Logger,
) (*service.GameService, error) {
	return service.NewGameService(&cfg.Game, store, locker, tunables, l, service.WithMetrics(m))
}

// provideTelegram 提供 Telegram 客户端
func provideTelegram(cfg *Config, l logger.Logger) (*transport.Telegram, error) {
	return transport.NewTelegram(&cfg.Telegram, l)
}

// provideRouter 按固定顺序注册模块：游戏、关键词拦截、表情回应
func provideRouter(
	cfg *Config,
	bot *transport.Telegram,
	game *service.GameService,
	sc *sentry.Client,
	m *metrics.BotMetrics,
	l logger.Logger,
) (*router.Registry, error) {
	modCfg, err := config.MergeConfig(module.DefaultConfig(), &cfg.Modules)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge modules config")
	}

	registry := router.NewRegistry(bot, l, router.WithSentry(sc), router.WithMetrics(m))
	mods := []router.Module{module.NewPigGame(game, l)}
	if modCfg.Blocklist.Enabled {
		mods = append(mods, module.NewBlocklist(modCfg.Blocklist, l))
	}
	if modCfg.Reactions.Enabled {
		reactions, err := module.NewReactions(modCfg.Reactions, growth.Default(), l)
		if err != nil {
			return nil, err
		}
		mods = append(mods, reactions)
	}
	for _, mod := range mods {
		if err := registry.Register(mod); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// providePump 提供事件泵
func providePump(
	cfg *Config,
	registry *router.Registry,
	tp *otel.TracerProvider,
	sc *sentry.Client,
	m *metrics.BotMetrics,
	l logger.Logger,
) (*handler.Pump, error) {
	return handler.NewPump(&cfg.Handler, registry,
		handler.WithLogger(l),
		handler.WithTracer(tp),
		handler.WithSentry(sc),
		handler.WithMetrics(m),
	)
}

// providePoller 提供长轮询
func providePoller(cfg *Config, bot *transport.Telegram, pump *handler.Pump, l logger.Logger) (*transport.Poller, error) {
	return transport.NewPoller(&cfg.Telegram, bot, pump, l)
}

// provideAdminServer 提供运维 HTTP 服务，未启用时返回 nil
func provideAdminServer(
	cfg *Config,
	store dao.Storage,
	tunables *service.TunablesProvider,
	promClient *prometheus.Client,
	tp *otel.TracerProvider,
	m *metrics.BotMetrics,
	rdb *redis.Client,
	db *postgres.Client,
	l logger.Logger,
) (*web.Server, error) {
	if !cfg.Admin.Enabled {
		return nil, nil
	}
	httpMetrics, err := middleware.Metrics(promClient)
	if err != nil {
		return nil, err
	}
	srv, err := web.NewServer(&cfg.Admin,
		web.WithLogger(l),
		web.WithMiddleware(middleware.Tracing(tp), httpMetrics),
	)
	if err != nil {
		return nil, err
	}
	opts := []admin.Option{
		admin.WithMetrics(m),
		admin.WithExporter(promClient.Handler()),
		admin.WithVersion(app.GetInfo()),
	}
	if db != nil {
		opts = append(opts, admin.WithPoolStats("postgres", func() any { return db.Stats() }))
	}
	if rdb != nil {
		opts = append(opts, admin.WithPoolStats("redis", func() any { return rdb.PoolStats() }))
	}
	admin.NewHandler(store, tunables, l, opts...).Register(srv.Router())
	return srv, nil
}

// provideAppComponents 提供应用组件
func provideAppComponents(
	reporter *metrics.Reporter,
	adminServer *web.Server,
	poller *transport.Poller,
	pump *handler.Pump,
	watcher *config.Watcher[service.GameFile],
	promClient *prometheus.Client,
	botMetrics *metrics.BotMetrics,
	sc *sentry.Client,
	tp *otel.TracerProvider,
	rdb *redis.Client,
	db *postgres.Client,
) app.AppComponents {
	servers := []app.Server{reporter}
	if adminServer != nil {
		servers = append(servers, adminServer)
	}
	servers = append(servers, poller)

	// 逆序关闭：先排空事件泵，最后断开数据库
	var closers []app.Closer
	if db != nil {
		closers = append(closers, &postgresCloser{client: db})
	}
	if rdb != nil {
		closers = append(closers, rdb)
	}
	closers = append(closers, tp, sc, promClient, botMetrics)
	if watcher != nil {
		closers = append(closers, watcher)
	}
	closers = append(closers, pump)

	return app.AppComponents{
		Servers: servers,
		Closers: closers,
	}
}

// postgresCloser PostgreSQL 关闭器
type postgresCloser struct {
	client *postgres.Client
}

func (c *postgresCloser) Close() error {
	c.client.Close()
	return nil
}
