// ABOUTME: Tests for pulse configuration management.
// ABOUTME: Covers load, save, defaults, credential detection, and path expansion.
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDataDirDefault(t *testing.T) {
	cfg := &Config{}
	if got := cfg.GetDataDir(); got == "" {
		t.Error("GetDataDir() returned empty string")
	}
}

func TestGetDataDirExplicit(t *testing.T) {
	cfg := &Config{DataDir: "/tmp/pulse-test"}
	if got := cfg.GetDataDir(); got != "/tmp/pulse-test" {
		t.Errorf("GetDataDir() = %q, want %q", got, "/tmp/pulse-test")
	}
}

func TestGetDataDirExpandsTilde(t *testing.T) {
	home, _ := os.UserHomeDir()

	cfg := &Config{DataDir: "~/pulse-data"}
	got := cfg.GetDataDir()
	want := filepath.Join(home, "pulse-data")
	if got != want {
		t.Errorf("GetDataDir() = %q, want %q", got, want)
	}
}

func TestStagingDirUnderDataDir(t *testing.T) {
	cfg := &Config{DataDir: "/tmp/pulse-test"}
	if got := cfg.StagingDir(); got != "/tmp/pulse-test/staging" {
		t.Errorf("StagingDir() = %q", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	cases := []struct{ in, want string }{
		{"", ""},
		{"~", home},
		{"~/data/pulse", filepath.Join(home, "data/pulse")},
		{"/tmp/foo", "/tmp/foo"},
		{"data/pulse", "data/pulse"},
	}
	for _, c := range cases {
		if got := ExpandPath(c.in); got != c.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if cfg.DataDir != "" {
		t.Errorf("Expected empty DataDir, got %q", cfg.DataDir)
	}
}

func TestSaveAndLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := &Config{
		DataDir:     "/tmp/pulse-data",
		OuraBaseURL: "http://localhost:9999",
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded.DataDir != "/tmp/pulse-data" {
		t.Errorf("DataDir mismatch: got %q", loaded.DataDir)
	}
	if loaded.OuraBaseURL != "http://localhost:9999" {
		t.Errorf("OuraBaseURL mismatch: got %q", loaded.OuraBaseURL)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	configDir := filepath.Join(tmpDir, "pulse")
	_ = os.MkdirAll(configDir, 0755)
	_ = os.WriteFile(filepath.Join(configDir, "config.json"), []byte("invalid json"), 0600)

	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid JSON config")
	}
}

func TestGetConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	got := GetConfigPath()
	want := filepath.Join(tmpDir, "pulse", "config.json")
	if got != want {
		t.Errorf("GetConfigPath() = %q, want %q", got, want)
	}
}

func TestOpenStorage(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := &Config{DataDir: tmpDir}

	store, err := cfg.OpenStorage()
	if err != nil {
		t.Fatalf("OpenStorage() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Join(tmpDir, "pulse.db")); os.IsNotExist(err) {
		t.Error("Expected pulse.db to be created")
	}
}

func TestCredentialsFromEnv(t *testing.T) {
	t.Setenv("OURA_CLIENT_ID", "id")
	t.Setenv("OURA_CLIENT_SECRET", "secret")
	t.Setenv("OURA_REFRESH_TOKEN", "refresh")
	t.Setenv("WITHINGS_CLIENT_ID", "")
	t.Setenv("WITHINGS_CLIENT_SECRET", "")
	t.Setenv("WITHINGS_REFRESH_TOKEN", "")
	t.Setenv("OURA_ACCESS_TOKEN", "")

	creds, err := LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials() failed: %v", err)
	}
	if !creds.HasOura() {
		t.Error("expected HasOura() with full refresh triple")
	}
	if creds.HasWithings() {
		t.Error("expected HasWithings() false with no scale credentials")
	}
}

func TestAccessTokenAloneIsEnough(t *testing.T) {
	creds := &Credentials{OuraAccessToken: "tok"}
	if !creds.HasOura() {
		t.Error("access token alone should satisfy HasOura()")
	}
}

func TestPartialRefreshTripleIsNotEnough(t *testing.T) {
	creds := &Credentials{OuraClientID: "id", OuraRefreshToken: "refresh"}
	if creds.HasOura() {
		t.Error("missing client secret should fail HasOura()")
	}
}
