// ABOUTME: Client for the Withings measure API (getmeas).
// ABOUTME: Scales raw values by 10^unit and converts weight to pounds.
package withings

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/pulse/internal/models"
)

// DefaultBaseURL is the production Withings API root.
const DefaultBaseURL = "https://wbsapi.withings.net"

// Measure type codes from the getmeas API.
const (
	measureWeight      = 1
	measureFatRatio    = 6
	measureDiastolicBP = 9
	measureSystolicBP  = 10
)

const lbsPerKg = 2.20462

// TokenSource supplies a bearer token for API calls.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource returning a fixed token.
type StaticToken string

func (t StaticToken) AccessToken(context.Context) (string, error) {
	return string(t), nil
}

// Client queries the Withings measure API.
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

type measureResponse struct {
	Status int `json:"status"`
	Body   struct {
		MeasureGroups []struct {
			Measures []struct {
				Value int64 `json:"value"`
				Type  int   `json:"type"`
				Unit  int   `json:"unit"`
			} `json:"measures"`
		} `json:"measuregrps"`
	} `json:"body"`
}

// BodyComposition fetches scale measurements taken on the target date and
// normalizes them into a canonical record. Later measurements in the day
// win when the scale reports more than one reading.
func (c *Client) BodyComposition(ctx context.Context, target models.DateKey) (models.BodyComposition, error) {
	rec := models.BodyComposition{Date: target}

	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return rec, fmt.Errorf("access token: %w", err)
	}

	startTS := target.Time().Unix()
	form := url.Values{}
	form.Set("action", "getmeas")
	form.Set("meastypes", fmt.Sprintf("%d,%d,%d,%d",
		measureWeight, measureFatRatio, measureDiastolicBP, measureSystolicBP))
	form.Set("startdate", strconv.FormatInt(startTS, 10))
	form.Set("enddate", strconv.FormatInt(startTS+24*60*60, 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/measure", strings.NewReader(form.Encode()))
	if err != nil {
		return rec, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return rec, fmt.Errorf("fetch measures: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return rec, fmt.Errorf("fetch measures: status %d: %s", resp.StatusCode, body)
	}

	var payload measureResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return rec, fmt.Errorf("decode measures: %w", err)
	}
	if payload.Status != 0 {
		return rec, fmt.Errorf("fetch measures: vendor status %d", payload.Status)
	}

	for _, group := range payload.Body.MeasureGroups {
		for _, m := range group.Measures {
			value := float64(m.Value) * math.Pow(10, float64(m.Unit))
			switch m.Type {
			case measureWeight:
				rec.WeightLbs = models.Ptr(int64(value * lbsPerKg))
			case measureFatRatio:
				rec.FatRatio = models.Ptr(math.Round(value*10) / 10)
			case measureDiastolicBP:
				rec.DiastolicBP = models.Ptr(int64(value))
			case measureSystolicBP:
				rec.SystolicBP = models.Ptr(int64(value))
			}
		}
	}

	return rec, nil
}
