//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/lk2023060901/pigfarm/pkg/app"
	"github.com/lk2023060901/pigfarm/pkg/logger"
)

func InitApp(cfg *Config, l logger.Logger) (app.Application, func(), error) {
	panic(wire.Build(
		// 1. 基础框架 (BaseApp)
		provideAppOptions,
		app.ProviderSet,

		// 2. 可观测性
		providePrometheus,
		provideBotMetrics,
		provideMetricsReporter,
		provideSentry,
		provideTracer,

		// 3. 存储
		provideRedis,
		provideStorageConfig,
		providePostgres,
		provideStorage,
		provideLocker,

		// 4. 游戏服务
		provideTunables,
		provideTunablesWatcher,
		provideGameService,

		// 5. 传输、路由与事件泵
		provideTelegram,
		provideRouter,
		providePump,
		providePoller,

		// 6. 运维 HTTP
		provideAdminServer,

		// 7. 组装
		provideAppComponents,
	))
}
