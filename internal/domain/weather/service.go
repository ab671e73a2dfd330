package weather

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/yanqian/trailfinder/pkg/errors"
	"github.com/yanqian/trailfinder/pkg/metrics"
	"github.com/yanqian/trailfinder/pkg/util"
)

// Service exposes current weather lookups.
type Service interface {
	Current(ctx context.Context, coords Coordinates) (Report, error)
}

// Provider fetches current conditions from an upstream API.
type Provider interface {
	Current(ctx context.Context, coords Coordinates) (Report, error)
}

// Cache stores recent reports keyed by rounded coordinates.
type Cache interface {
	Get(ctx context.Context, key string) (Report, bool, error)
	Set(ctx context.Context, key string, report Report, ttl time.Duration) error
}

type service struct {
	cfg      Config
	provider Provider
	cache    Cache
	logger   *slog.Logger
	now      util.Clock
}

// NewService wires up the weather domain.
func NewService(cfg Config, provider Provider, cache Cache, logger *slog.Logger) Service {
	return &service{
		cfg:      cfg,
		provider: provider,
		cache:    cache,
		logger:   logger.With("component", "weather.service"),
		now:      util.NowUTC,
	}
}

func (s *service) Current(ctx context.Context, coords Coordinates) (Report, error) {
	if err := coords.Validate(); err != nil {
		return Report{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
	}

	key := coords.cacheKey()
	if s.cache != nil && s.cfg.CacheTTL > 0 {
		cached, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			metrics.WeatherCacheLookups.WithLabelValues("error").Inc()
			s.logger.Warn("weather cache lookup failed", "key", key, "error", err)
		case ok:
			metrics.WeatherCacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			metrics.WeatherCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	report, err := s.provider.Current(ctx, coords)
	if err != nil {
		return Report{}, apperrors.Wrap(apperrors.CodeWeatherError, "failed to fetch weather", err)
	}
	if report.FetchedAt.IsZero() {
		report.FetchedAt = s.now()
	}
	s.logger.Debug("weather fetched", "key", key, "temp_c", report.Current.TempC)

	if s.cache != nil && s.cfg.CacheTTL > 0 {
		if err := s.cache.Set(ctx, key, report, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("weather cache store failed", "key", key, "error", err)
		}
	}
	return report, nil
}
