package main

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/trailfinder/internal/domain/trails"
	"github.com/yanqian/trailfinder/internal/domain/weather"
	"github.com/yanqian/trailfinder/internal/infra/breaker"
	"github.com/yanqian/trailfinder/internal/infra/config"
	"github.com/yanqian/trailfinder/internal/infra/llm/chatgpt"
	"github.com/yanqian/trailfinder/internal/infra/llm/tokenizer"
	"github.com/yanqian/trailfinder/internal/infra/trailrepo"
	"github.com/yanqian/trailfinder/internal/infra/weatherapi"
	"github.com/yanqian/trailfinder/internal/infra/weathercache"
	httpiface "github.com/yanqian/trailfinder/internal/interface/http"
)

// trailStore is a trail repository the health endpoint can probe.
type trailStore interface {
	trails.Repository
	httpiface.HealthChecker
}

func provideTrailsConfig(cfg *config.Config) trails.Config {
	return trails.Config{
		Model:              cfg.LLM.Model,
		Temperature:        cfg.LLM.Temperature,
		SystemPrompt:       cfg.Trails.SystemPrompt,
		FallbackToUnranked: cfg.Trails.FallbackToUnranked,
		MinFitnessLevel:    cfg.Trails.MinFitnessLevel,
		MaxFitnessLevel:    cfg.Trails.MaxFitnessLevel,
		MaxPromptTokens:    cfg.Trails.MaxPromptTokens,
	}
}

func provideWeatherConfig(cfg *config.Config) weather.Config {
	return weather.Config{CacheTTL: cfg.Weather.CacheTTL}
}

func provideChatClient(cfg *config.Config, logger *slog.Logger) (trails.ChatClient, error) {
	client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
	if err != nil {
		return nil, err
	}
	cb := breaker.New[chatgpt.ChatCompletionResponse]("chatgpt", cfg.Breaker, logger)
	return chatgpt.NewBreakerClient(client, cb), nil
}

func provideTokenCounter(cfg *config.Config, logger *slog.Logger) trails.TokenCounter {
	return tokenizer.New(cfg.LLM.Model, logger)
}

// provideTrailStore opens Postgres when a DSN is configured and falls back to the seeded memory
// repository otherwise.
func provideTrailStore(cfg *config.Config, logger *slog.Logger) (trailStore, func(), error) {
	fallback := trailrepo.NewMemoryRepository(trailrepo.SampleTrails())
	noop := func() {}
	dsn := strings.TrimSpace(cfg.Database.DSN)
	if dsn == "" {
		logger.Info("database dsn not set, using memory trail repository")
		return fallback, noop, nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory trail repository", "error", err)
		return fallback, noop, nil
	}
	if cfg.Database.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Database.MaxConns
	}
	if cfg.Database.MinConns > 0 {
		poolConfig.MinConns = cfg.Database.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory trail repository", "error", err)
		return fallback, noop, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory trail repository", "error", err)
		pool.Close()
		return fallback, noop, nil
	}

	db := stdlib.OpenDBFromPool(pool)
	cleanup := func() {
		_ = db.Close()
		pool.Close()
	}
	if cfg.Database.AutoMigrate {
		if err := migrate(db); err != nil {
			cleanup()
			return nil, nil, err
		}
		logger.Info("trail migrations applied")
	}
	logger.Info("postgres trail repository enabled")
	return trailrepo.NewPostgresRepository(db), cleanup, nil
}

func migrate(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return trailrepo.RunMigrations(ctx, db)
}

func provideTrailRepository(store trailStore) trails.Repository {
	return store
}

func provideHealthChecker(store trailStore) httpiface.HealthChecker {
	return store
}

func provideWeatherProvider(cfg *config.Config, logger *slog.Logger) weather.Provider {
	cb := breaker.New[weather.Report]("weatherapi", cfg.Breaker, logger)
	return weatherapi.NewClient(cfg.Weather.APIBaseURL, cfg.Weather.APIKey, cfg.Weather.Timeout, cb)
}

func provideWeatherCache(cfg *config.Config, logger *slog.Logger) weather.Cache {
	if cfg.Weather.Redis.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return weathercache.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return weathercache.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
			client.Close()
		} else {
			logger.Info("weather valkey cache enabled", "addr", cfg.Weather.Redis.Addr)
			return weathercache.NewValkeyStore(client, "weather")
		}
	}
	return weathercache.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	if strings.Contains(cfg.Weather.Redis.Addr, "://") {
		return valkey.ParseURL(cfg.Weather.Redis.Addr)
	}
	return valkey.ClientOption{InitAddress: []string{cfg.Weather.Redis.Addr}}, nil
}
