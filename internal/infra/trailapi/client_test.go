package trailapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/trailfinder/internal/domain/weather"
)

func TestClientRecommend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/trails/recommendations", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NotEmpty(t, r.Header.Get("X-Request-Id"))

		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, map[string]int{"fitnessLevel": 2}, body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"trails":[{"id":7,"name":"Fern Canyon","description":"Shaded","difficulty":2,"length_km":6.5,"elevation_gain_m":210,"explanation":"Cool and shady"}],"ranked":true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	got, err := client.Recommend(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, int64(7), got[0].ID)
	require.Equal(t, "Cool and shady", got[0].Explanation)
	require.Equal(t, 210, got[0].ElevationGainM)
}

func TestClientRecommendErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":{"code":"llm_error","message":"chatgpt request failed"}}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).Recommend(context.Background(), 3)
	require.Error(t, err)
	require.True(t, IsStatus(err, http.StatusBadGateway))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "llm_error", apiErr.Code)
}

func TestClientRecommendNonJSONFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).Recommend(context.Background(), 3)
	require.True(t, IsStatus(err, http.StatusInternalServerError))
}

func TestClientCurrentWeather(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/v1/weather/46.68,7.86", r.URL.Path)
		_, _ = w.Write([]byte(`{"location":{"name":"Interlaken"},"current":{"temp_c":9.5,"condition":{"text":"Mist","icon":"https://cdn/143.png","code":1030}}}`))
	}))
	defer server.Close()

	report, err := NewClient(server.URL, time.Second).Current(context.Background(), weather.Coordinates{Latitude: 46.68, Longitude: 7.86})
	require.NoError(t, err)
	require.Equal(t, 9.5, report.Current.TempC)
	require.Equal(t, "Mist", report.Current.Condition.Text)
	require.Equal(t, "Interlaken", report.Location.Name)
}

func TestClientHonoursContext(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(server.URL, time.Second).Recommend(ctx, 3)
	require.ErrorIs(t, err, context.Canceled)
}
