// ABOUTME: OAuth refresh-token flow for the Oura API.
// ABOUTME: Reports refresh-token rotation so the caller can persist it.
package oura

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

// DefaultTokenURL is the production OAuth token endpoint.
const DefaultTokenURL = "https://api.ouraring.com/oauth/token"

// RefreshTokenSource exchanges a refresh token for access tokens and caches
// the result for the life of the process. Oura rotates refresh tokens on
// use; OnRotate fires with the replacement so it can be persisted before
// the old one goes stale.
type RefreshTokenSource struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	RefreshToken string

	// OnRotate is called with the new refresh token when the vendor issues
	// one. May be nil.
	OnRotate func(refreshToken string)

	http *http.Client

	mu     sync.Mutex
	access string
}

// NewRefreshTokenSource builds a source against the production token
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
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", s.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(s.ClientID, s.ClientSecret)
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
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("refresh token: empty access token in response")
	}

	s.access = payload.AccessToken
	if payload.RefreshToken != "" && payload.RefreshToken != s.RefreshToken {
		s.RefreshToken = payload.RefreshToken
		if s.OnRotate != nil {
			s.OnRotate(payload.RefreshToken)
		}
	}
	return s.access, nil
}
