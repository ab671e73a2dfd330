package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/trailfinder/internal/domain/trails"
	"github.com/yanqian/trailfinder/internal/domain/weather"
	"github.com/yanqian/trailfinder/internal/infra/config"
	apperrors "github.com/yanqian/trailfinder/pkg/errors"
)

func TestRouter_RecommendTrailsSuccess(t *testing.T) {
	resp := trails.Response{
		Ranked: true,
		Trails: []trails.RankedTrail{
			{Trail: trails.Trail{ID: 5, Name: "Ridge Route", Difficulty: 4, LengthKm: 12, ElevationGainM: 900}, Explanation: "Good challenge"},
			{Trail: trails.Trail{ID: 2, Name: "Lakeside Loop", Difficulty: 1, LengthKm: 3.2, ElevationGainM: 40}, Explanation: "Warm-up"},
		},
	}
	svc := &stubTrails{
		recommendFn: func(ctx context.Context, req trails.Request) (trails.Response, error) {
			require.Equal(t, 4, req.FitnessLevel)
			return resp, nil
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/trails/recommendations", `{"fitnessLevel":4}`, newRouterUnderTest(t, svc, &stubWeather{}, testConfig()))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NotEmpty(t, recorder.Header().Get("X-Request-Id"))

	var got trails.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, resp, got)

	var raw struct {
		Trails []map[string]any `json:"trails"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &raw))
	require.Equal(t, "Good challenge", raw.Trails[0]["explanation"])
	require.Equal(t, float64(900), raw.Trails[0]["elevation_gain_m"])
}

func TestRouter_LegacyListPath(t *testing.T) {
	calls := 0
	svc := &stubTrails{
		recommendFn: func(ctx context.Context, req trails.Request) (trails.Response, error) {
			calls++
			return trails.Response{Trails: []trails.RankedTrail{}, Ranked: true}, nil
		},
	}

	recorder := performRequest(http.MethodPost, "/api/trails/list", `{"fitnessLevel":3}`, newRouterUnderTest(t, svc, &stubWeather{}, testConfig()))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, 1, calls)
	require.JSONEq(t, `{"trails":[],"ranked":true}`, recorder.Body.String())
}

func TestRouter_RecommendTrailsInvalidJSON(t *testing.T) {
	recorder := performRequest(http.MethodPost, "/api/v1/trails/recommendations", `{"fitnessLevel":"high"}`, newRouterUnderTest(t, &stubTrails{}, &stubWeather{}, testConfig()))
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.NotEmpty(t, errBody["error"]["message"])
}

func TestRouter_RecommendTrailsErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperrors.Wrap(apperrors.CodeInvalidInput, "fitnessLevel must be between 1 and 5", nil), http.StatusBadRequest, "invalid_request"},
		{apperrors.Wrap(apperrors.CodeLLMError, "chatgpt response malformed", errors.New("eof")), http.StatusBadGateway, "llm_error"},
		{apperrors.Wrap(apperrors.CodeTrailStoreError, "failed to load trails", errors.New("down")), http.StatusInternalServerError, "trail_store_error"},
		{errors.New("boom"), http.StatusInternalServerError, "recommendation_failed"},
	}
	for _, tc := range cases {
		svc := &stubTrails{
			recommendFn: func(ctx context.Context, req trails.Request) (trails.Response, error) {
				return trails.Response{}, tc.err
			},
		}
		recorder := performRequest(http.MethodPost, "/api/v1/trails/recommendations", `{"fitnessLevel":9}`, newRouterUnderTest(t, svc, &stubWeather{}, testConfig()))
		require.Equal(t, tc.status, recorder.Code)
		require.Equal(t, tc.code, decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
	}
}

func TestRouter_CurrentWeather(t *testing.T) {
	report := weather.Report{Current: weather.Current{TempC: 21.3, Condition: weather.Condition{Text: "Sunny", Icon: "https://cdn/113.png"}}}
	ws := &stubWeather{
		currentFn: func(ctx context.Context, coords weather.Coordinates) (weather.Report, error) {
			require.Equal(t, weather.Coordinates{Latitude: 37.77, Longitude: -122.42}, coords)
			return report, nil
		},
	}

	recorder := performRequest(http.MethodGet, "/api/v1/weather/37.77,-122.42", "", newRouterUnderTest(t, &stubTrails{}, ws, testConfig()))
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Current map[string]any `json:"current"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, 21.3, body.Current["temp_c"])
	require.Equal(t, "Sunny", body.Current["condition"].(map[string]any)["text"])
}

func TestRouter_CurrentWeatherInvalidCoordinates(t *testing.T) {
	ws := &stubWeather{}
	recorder := performRequest(http.MethodGet, "/api/v1/weather/north,east", "", newRouterUnderTest(t, &stubTrails{}, ws, testConfig()))
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.Zero(t, ws.calls)
}

func TestRouter_CurrentWeatherRetriesTransientFailure(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 3, BaseBackoff: time.Millisecond}
	failuresLeft := 1
	ws := &stubWeather{
		currentFn: func(ctx context.Context, coords weather.Coordinates) (weather.Report, error) {
			if failuresLeft > 0 {
				failuresLeft--
				return weather.Report{}, apperrors.Wrap(apperrors.CodeWeatherError, "failed to fetch weather", errors.New("503"))
			}
			return weather.Report{Current: weather.Current{TempC: 3}}, nil
		},
	}

	recorder := performRequest(http.MethodGet, "/api/v1/weather/1,2", "", newRouterUnderTest(t, &stubTrails{}, ws, cfg))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, 2, ws.calls)
}

func TestRouter_RecommendationsAreNotRetried(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 3, BaseBackoff: time.Millisecond}
	calls := 0
	svc := &stubTrails{
		recommendFn: func(ctx context.Context, req trails.Request) (trails.Response, error) {
			calls++
			return trails.Response{}, apperrors.Wrap(apperrors.CodeLLMError, "chatgpt request failed", nil)
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/trails/recommendations", `{"fitnessLevel":2}`, newRouterUnderTest(t, svc, &stubWeather{}, cfg))
	require.Equal(t, http.StatusBadGateway, recorder.Code)
	require.Equal(t, 1, calls)
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	server := newRouterUnderTest(t, &stubTrails{}, &stubWeather{}, cfg)

	first := performRequest(http.MethodPost, "/api/v1/trails/recommendations", `{"fitnessLevel":2}`, server)
	require.Equal(t, http.StatusOK, first.Code)

	second := performRequest(http.MethodPost, "/api/v1/trails/recommendations", `{"fitnessLevel":2}`, server)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, second.Body.Bytes())["error"]["code"])
}

func TestRouter_Health(t *testing.T) {
	handler := NewHandler(&stubTrails{}, &stubWeather{}, pingFunc(func(context.Context) error { return errors.New("down") }), newTestLogger())
	server := NewRouter(testConfig(), handler, newTestLogger())

	recorder := performRequest(http.MethodGet, "/healthz", "", server)
	require.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.AllowedOrigins = []string{"https://trails.example"}
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/trails/recommendations", nil)
	req.Header.Set("Origin", "https://trails.example")
	rec := httptest.NewRecorder()
	newRouterUnderTest(t, &stubTrails{}, &stubWeather{}, cfg).Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://trails.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestIPRateLimiterRefills(t *testing.T) {
	limiter := newIPRateLimiter(config.RateLimitConfig{RequestsPerMinute: 60, Burst: 1})
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.True(t, limiter.allow("1.1.1.1", now))
	require.False(t, limiter.allow("1.1.1.1", now))
	require.True(t, limiter.allow("2.2.2.2", now))
	require.True(t, limiter.allow("1.1.1.1", now.Add(1100*time.Millisecond)))
}

func performRequest(method, path, body string, server *http.Server) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
}

func newRouterUnderTest(t *testing.T, ts trails.Service, ws weather.Service, cfg *config.Config) *http.Server {
	t.Helper()
	handler := NewHandler(ts, ws, nil, newTestLogger())
	return NewRouter(cfg, handler, newTestLogger())
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubTrails struct {
	recommendFn func(ctx context.Context, req trails.Request) (trails.Response, error)
}

func (s *stubTrails) Recommend(ctx context.Context, req trails.Request) (trails.Response, error) {
	if s.recommendFn != nil {
		return s.recommendFn(ctx, req)
	}
	return trails.Response{Trails: []trails.RankedTrail{}, Ranked: true}, nil
}

type stubWeather struct {
	currentFn func(ctx context.Context, coords weather.Coordinates) (weather.Report, error)
	calls     int
}

func (s *stubWeather) Current(ctx context.Context, coords weather.Coordinates) (weather.Report, error) {
	s.calls++
	if s.currentFn != nil {
		return s.currentFn(ctx, coords)
	}
	return weather.Report{}, nil
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
