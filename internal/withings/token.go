// ABOUTME: Withings OAuth token refresh (action=requesttoken).
// ABOUTME: Vendor wraps OAuth in its own status/body envelope.
package withings

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultTokenURL is the production Withings OAuth endpoint.
const DefaultTokenURL = "https://wbsapi.withings.net/v2/oauth2"

// RefreshTokenSource exchanges a refresh token for access tokens and caches
// the result for the life of the process. OnRotate fires when the vendor
// issues a replacement refresh token.
type RefreshTokenSource struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	RefreshToken string
	OnRotate     func(refreshToken string)

	http *http.Client

	mu     sync.Mutex
	access string
}

// NewRefreshTokenSource builds a source against the production OAuth
// endpoint; tokenURL overrides it when non-empty.
func NewRefreshTokenSource(tokenURL, clientID, clientSecret, refreshToken string) *RefreshTokenSource {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	return &RefreshTokenSource{
		TokenURL:     tokenURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RefreshToken: refreshToken,
		http:         &http.Client{Timeout: 30 * time.Second},
	}
}

// AccessToken returns a valid access token, refreshing on first use.
func (s *RefreshTokenSource) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.access != "" {
		return s.access, nil
	}

	form := url.Values{}
	form.Set("action", "requesttoken")
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", s.ClientID)
	form.Set("client_secret", s.ClientSecret)
	form.Set("refresh_token", s.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("refresh token: status %d: %s", resp.StatusCode, body)
	}

	var payload struct {
		Status int `json:"status"`
		Body   struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"body"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if payload.Status != 0 || payload.Body.AccessToken == "" {
		return "", fmt.Errorf("refresh token: vendor status %d", payload.Status)
	}

	s.access = payload.Body.AccessToken
	if rt := payload.Body.RefreshToken; rt != "" && rt != s.RefreshToken {
		s.RefreshToken = rt
		if s.OnRotate != nil {
			s.OnRotate(rt)
		}
	}
	return s.access, nil
}
