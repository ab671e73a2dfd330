package weatherapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/yanqian/trailfinder/internal/domain/weather"
	"github.com/yanqian/trailfinder/internal/infra/breaker"
)

const defaultBaseURL = "https://api.weatherapi.com/v1"

// Client fetches current conditions from a WeatherAPI compatible service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[weather.Report]
}

// NewClient builds an API client. cb may be nil.
func NewClient(baseURL, apiKey string, timeout time.Duration, cb *gobreaker.CircuitBreaker[weather.Report]) *Client {
	u := strings.TrimSpace(baseURL)
	if u == "" {
		u = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(u, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		cb:         cb,
	}
}

// Current retrieves the conditions at coords.
func (c *Client) Current(ctx context.Context, coords weather.Coordinates) (weather.Report, error) {
	if c.cb == nil {
		return c.fetch(ctx, coords)
	}
	return breaker.Execute(c.cb, func() (weather.Report, error) {
		return c.fetch(ctx, coords)
	})
}

func (c *Client) fetch(ctx context.Context, coords weather.Coordinates) (weather.Report, error) {
	query := url.Values{}
	query.Set("q", coords.String())
	if c.apiKey != "" {
		query.Set("key", c.apiKey)
	}
	endpoint := c.baseURL + "/current.json?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return weather.Report{}, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return weather.Report{}, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return weather.Report{}, fmt.Errorf("read weather response: %w", err)
	}

	var raw apiResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		if resp.StatusCode >= 300 {
			return weather.Report{}, fmt.Errorf("weather request error: status=%d body=%s", resp.StatusCode, truncate(body, 4<<10))
		}
		return weather.Report{}, fmt.Errorf("decode weather response: %w", err)
	}
	if raw.Error != nil {
		return weather.Report{}, fmt.Errorf("weather api error: code=%d %s", raw.Error.Code, raw.Error.Message)
	}
	if resp.StatusCode >= 300 {
		return weather.Report{}, fmt.Errorf("weather request error: status=%d", resp.StatusCode)
	}
	if raw.Current == nil {
		return weather.Report{}, fmt.Errorf("weather response missing current conditions")
	}
	return normalize(raw), nil
}

type apiResponse struct {
	Location *apiLocation `json:"location"`
	Current  *apiCurrent  `json:"current"`
	Error    *apiError    `json:"error"`
}

type apiLocation struct {
	Name    string `json:"name"`
	Region  string `json:"region"`
	Country string `json:"country"`
}

type apiCurrent struct {
	LastUpdatedEpoch int64        `json:"last_updated_epoch"`
	TempC            float64      `json:"temp_c"`
	FeelsLikeC       float64      `json:"feelslike_c"`
	WindKph          float64      `json:"wind_kph"`
	Humidity         int          `json:"humidity"`
	Condition        apiCondition `json:"condition"`
}

type apiCondition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
	Code int    `json:"code"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func normalize(raw apiResponse) weather.Report {
	report := weather.Report{
		Current: weather.Current{
			TempC:      raw.Current.TempC,
			FeelsLikeC: raw.Current.FeelsLikeC,
			WindKph:    raw.Current.WindKph,
			Humidity:   raw.Current.Humidity,
			Condition: weather.Condition{
				Text: strings.TrimSpace(raw.Current.Condition.Text),
				Icon: normalizeIcon(raw.Current.Condition.Icon),
				Code: raw.Current.Condition.Code,
			},
		},
	}
	if raw.Current.LastUpdatedEpoch > 0 {
		report.FetchedAt = time.Unix(raw.Current.LastUpdatedEpoch, 0).UTC()
	}
	if raw.Location != nil && raw.Location.Name != "" {
		report.Location = &weather.Location{
			Name:    raw.Location.Name,
			Region:  raw.Location.Region,
			Country: raw.Location.Country,
		}
	}
	return report
}

// normalizeIcon upgrades protocol-relative icon URLs ("//cdn...") to https.
func normalizeIcon(icon string) string {
	icon = strings.TrimSpace(icon)
	if strings.HasPrefix(icon, "//") {
		return "https:" + icon
	}
	return icon
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
