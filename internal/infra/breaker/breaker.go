package breaker

import (
	"context"
	"errors"
	"log/slog"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/yanqian/trailfinder/internal/infra/config"
	"github.com/yanqian/trailfinder/pkg/metrics"
)

// ErrRejected reports that the breaker refused the call without reaching upstream.
var ErrRejected = errors.New("circuit breaker rejected request")

// New builds a breaker that trips once the failure ratio over the measurement window crosses
// cfg.FailureRatio with at least cfg.MinRequests samples.
func New[T any](name string, cfg config.BreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[T] {
	log := logger.With("component", "breaker", "breaker", name)
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= cfg.FailureRatio {
				log.Warn("opening circuit", "failures", counts.TotalFailures, "requests", counts.Requests)
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info("circuit state transition", "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
		// A caller hanging up is not an upstream failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

// Execute runs fn through cb and records the outcome. Open-state rejections are wrapped with ErrRejected.
func Execute[T any](cb *gobreaker.CircuitBreaker[T], fn func() (T, error)) (T, error) {
	result, err := cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(cb.Name(), "rejected").Inc()
			return result, errors.Join(ErrRejected, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(cb.Name(), "failure").Inc()
		return result, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(cb.Name(), "success").Inc()
	return result, nil
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
