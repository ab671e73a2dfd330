package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/trailfinder/internal/domain/trails"
	"github.com/yanqian/trailfinder/internal/domain/weather"
)

// HealthChecker reports whether the trail store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	trailsSvc  trails.Service
	weatherSvc weather.Service
	health     HealthChecker
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(trailsSvc trails.Service, weatherSvc weather.Service, health HealthChecker, logger *slog.Logger) *Handler {
	return &Handler{
		trailsSvc:  trailsSvc,
		weatherSvc: weatherSvc,
		health:     health,
		logger:     logger.With("component", "http.handler"),
	}
}

// RecommendTrails ranks every stored trail for the posted fitness level.
func (h *Handler) RecommendTrails(c *gin.Context) {
	var req trails.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.trailsSvc.Recommend(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "recommendation_failed"))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CurrentWeather proxies the weather lookup for a "lat,lon" path parameter.
func (h *Handler) CurrentWeather(c *gin.Context) {
	coords, err := weather.ParseCoordinates(c.Param("coords"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	report, err := h.weatherSvc.Current(c.Request.Context(), coords)
	if err != nil {
		abortWithError(c, fromDomainError(err, "weather_failed"))
		return
	}

	c.JSON(http.StatusOK, report)
}

// Health reports liveness plus trail store reachability.
func (h *Handler) Health(c *gin.Context) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.health.Ping(ctx); err != nil {
			h.logger.Warn("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
