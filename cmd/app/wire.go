//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/trailfinder/internal/bootstrap"
	"github.com/yanqian/trailfinder/internal/domain/trails"
	"github.com/yanqian/trailfinder/internal/domain/weather"
	"github.com/yanqian/trailfinder/internal/infra/config"
	httpiface "github.com/yanqian/trailfinder/internal/interface/http"
	"github.com/yanqian/trailfinder/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideTrailsConfig,
		provideWeatherConfig,
		provideChatClient,
		provideTokenCounter,
		provideTrailStore,
		provideTrailRepository,
		provideHealthChecker,
		provideWeatherProvider,
		provideWeatherCache,
		trails.NewService,
		weather.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
