package trailapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/trailfinder/internal/domain/trails"
	"github.com/yanqian/trailfinder/internal/domain/weather"
)

const defaultBaseURL = "http://localhost:8080"

// APIError is a non-success reply from the trailfinder server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("trailfinder api: status=%d", e.Status)
	}
	return fmt.Sprintf("trailfinder api: status=%d code=%s message=%s", e.Status, e.Code, e.Message)
}

// Client talks to the trailfinder HTTP API on behalf of the browser view.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds an API client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	u := strings.TrimSpace(baseURL)
	if u == "" {
		u = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(u, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Recommend posts the fitness level and returns the ranked trails.
func (c *Client) Recommend(ctx context.Context, fitnessLevel int) ([]trails.RankedTrail, error) {
	payload, err := json.Marshal(trails.Request{FitnessLevel: fitnessLevel})
	if err != nil {
		return nil, fmt.Errorf("encode recommendation request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/trails/recommendations", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out trails.Response
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if out.Trails == nil {
		return []trails.RankedTrail{}, nil
	}
	return out.Trails, nil
}

// Current fetches the weather report for coords through the server proxy.
func (c *Client) Current(ctx context.Context, coords weather.Coordinates) (weather.Report, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/weather/"+coords.String(), nil)
	if err != nil {
		return weather.Report{}, err
	}
	var out weather.Report
	if err := c.do(req, &out); err != nil {
		return weather.Report{}, err
	}
	return out, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read %s response: %w", req.URL.Path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func decodeAPIError(status int, body []byte) error {
	apiErr := &APIError{Status: status}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
