// ABOUTME: HTTP client for the Oura v2 usercollection endpoints.
// ABOUTME: Bearer-token GETs with date-range params and defensive decoding.
package oura

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/harperreed/pulse/internal/models"
)

// DefaultBaseURL is the production Oura API root.
const DefaultBaseURL = "https://api.ouraring.com"

// TokenSource supplies a bearer token for API calls.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource returning a fixed token. Used in tests and
// when the caller already holds a fresh access token.
type StaticToken string

func (t StaticToken) AccessToken(context.Context) (string, error) {
	return string(t), nil
}

// Client queries the Oura usercollection API.
type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
}

// NewClient creates a client against the given API root. An empty baseURL
// selects the production API.
func NewClient(baseURL string, tokens TokenSource) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// DailySleep fetches daily sleep summaries for the date range.
func (c *Client) DailySleep(ctx context.Context, start, end models.DateKey) ([]DailySleep, error) {
	return get[DailySleep](ctx, c, "daily_sleep", start, end)
}

// SleepSessions fetches individual sleep sessions for the date range.
func (c *Client) SleepSessions(ctx context.Context, start, end models.DateKey) ([]SleepSession, error) {
	return get[SleepSession](ctx, c, "sleep", start, end)
}

// DailySpO2 fetches daily blood-oxygen summaries for the date range.
func (c *Client) DailySpO2(ctx context.Context, start, end models.DateKey) ([]DailySpO2, error) {
	return get[DailySpO2](ctx, c, "daily_spo2", start, end)
}

// DailyActivity fetches daily activity summaries for the date range.
func (c *Client) DailyActivity(ctx context.Context, start, end models.DateKey) ([]DailyActivity, error) {
	return get[DailyActivity](ctx, c, "daily_activity", start, end)
}

// DailyCardioAge fetches daily vascular-age records for the date range.
func (c *Client) DailyCardioAge(ctx context.Context, start, end models.DateKey) ([]DailyCardioAge, error) {
	return get[DailyCardioAge](ctx, c, "daily_cardiovascular_age", start, end)
}

func get[T any](ctx context.Context, c *Client, endpoint string, start, end models.DateKey) ([]T, error) {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("access token: %w", err)
	}

	u := fmt.Sprintf("%s/v2/usercollection/%s", c.baseURL, endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	q := url.Values{}
	q.Set("start_date", start.String())
	q.Set("end_date", end.String())
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch %s: status %d: %s", endpoint, resp.StatusCode, body)
	}

	var env envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return env.Data, nil
}
