// ABOUTME: Tests for the staging cache.
// ABOUTME: Token round-trips, payload snapshots, and persistence across reopen.
package staging

import (
	"errors"
	"testing"
)

func setupCache(t *testing.T) (*Cache, string) {
	t.Helper()
	dir := t.TempDir()
	c, err := Open(dir)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, dir
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	c, _ := setupCache(t)

	if _, err := c.RefreshToken("oura"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unstaged token, got %v", err)
	}

	if err := c.SetRefreshToken("oura", "rt-1"); err != nil {
		t.Fatalf("SetRefreshToken failed: %v", err)
	}
	got, err := c.RefreshToken("oura")
	if err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}
	if got != "rt-1" {
		t.Errorf("token = %s", got)
	}

	// Rotation overwrites.
	if err := c.SetRefreshToken("oura", "rt-2"); err != nil {
		t.Fatalf("SetRefreshToken failed: %v", err)
	}
	if got, _ := c.RefreshToken("oura"); got != "rt-2" {
		t.Errorf("token after rotation = %s", got)
	}
}

func TestTokensAreVendorScoped(t *testing.T) {
	c, _ := setupCache(t)

	_ = c.SetRefreshToken("oura", "oura-token")
	_ = c.SetRefreshToken("withings", "withings-token")

	if got, _ := c.RefreshToken("oura"); got != "oura-token" {
		t.Errorf("oura token = %s", got)
	}
	if got, _ := c.RefreshToken("withings"); got != "withings-token" {
		t.Errorf("withings token = %s", got)
	}
}

func TestPayloadStash(t *testing.T) {
	c, _ := setupCache(t)

	payload := []byte(`{"data": [{"day": "2024-03-10"}]}`)
	if err := c.StashPayload("sleep", "2024-03-10", payload); err != nil {
		t.Fatalf("StashPayload failed: %v", err)
	}

	got, err := c.Payload("sleep", "2024-03-10")
	if err != nil {
		t.Fatalf("Payload failed: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("payload mismatch: %s", got)
	}

	if _, err := c.Payload("activity", "2024-03-10"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for other group, got %v", err)
	}
}

func TestTokenSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	_ = c.SetRefreshToken("oura", "persisted")
	if err := c.Close(); err != nil {
		t.Fatalf("close cache: %v", err)
	}

	c2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen cache: %v", err)
	}
	defer c2.Close()

	got, err := c2.RefreshToken("oura")
	if err != nil {
		t.Fatalf("RefreshToken after reopen failed: %v", err)
	}
	if got != "persisted" {
		t.Errorf("token = %s", got)
	}
}
