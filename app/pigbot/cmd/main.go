package main

import (
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/dao"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/handler"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/manager"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/metrics"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/module"
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
)

// Config 定义 pigbot 的完整配置结构
type Config struct {
	Log     logger.Config             `mapstructure:"log"`
	Loggers map[string]*logger.Config `mapstructure:"loggers"`

	// 游戏参数与增长系数
	Game service.Config `mapstructure:"game"`

	// 存储驱动与排行榜缓存
	Storage dao.Config `mapstructure:"storage"`

	// Database 配置
	Database postgres.Config `mapstructure:"database"`

	// Redis 配置，未启用时排行榜缓存与分布式锁不可用
	Redis redis.Config `mapstructure:"redis"`

	Lock manager.Config `mapstructure:"lock"`

	// Telegram 长轮询
	Telegram transport.Config `mapstructure:"telegram"`

	// 事件泵
	Handler handler.Config `mapstructure:"handler"`

	// 附加模块
	Modules module.Config `mapstructure:"modules"`

	// Prometheus 配置
	Prometheus prometheus.Config `mapstructure:"prometheus"`

	Sentry sentry.Config `mapstructure:"sentry"`
	Otel   otel.Config   `mapstructure:"otel"`

	// 运维 HTTP 服务
	Admin web.Config `mapstructure:"admin"`

	// 指标配置
	Metrics metrics.Config `mapstructure:"metrics"`
}

func main() {
	var cfg Config

	// 1. 加载配置
	if err := app.LoadConfig(&cfg,
		config.WithEnvFallback("database.dsn", "DATABASE_URL"),
		config.WithEnvFallback("telegram.token", "TELEGRAM_TOKEN"),
	); err != nil {
		panic(err)
	}

	// 2. 初始化主日志
	l, err := logger.New(&cfg.Log)
	if err != nil {
		panic(err)
	}

	// 3. 通过 Wire 初始化应用
	application, cleanup, err := InitApp(&cfg, l)
	if err != nil {
		l.Error("failed to initialize application", "error", err)
		return
	}
	defer cleanup()

	// 4. 运行服务
	if err := application.Run(); err != nil {
		l.Error("application exited with error", "error", err)
	}
}
