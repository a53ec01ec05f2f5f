// ABOUTME: Pulse configuration: JSON settings file plus env-sourced credentials.
// ABOUTME: Settings live in XDG config; secrets only ever come from the environment.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"

	"github.com/harperreed/pulse/internal/storage"
)

// Config stores pulse tool configuration. Credentials are deliberately not
// here: the config file is plain JSON on disk and tokens rotate too often
// to live in it.
type Config struct {
	// DataDir is the root directory for data storage. The SQLite database
	// and the staging cache live here. Supports ~ expansion.
	// Defaults to ~/.local/share/pulse.
	DataDir string `json:"data_dir,omitempty"`

	// OuraBaseURL overrides the ring API root, mainly for testing.
	OuraBaseURL string `json:"oura_base_url,omitempty"`

	// WithingsBaseURL overrides the scale API root, mainly for testing.
	WithingsBaseURL string `json:"withings_base_url,omitempty"`
}

// Credentials holds vendor OAuth material, read from the environment.
type Credentials struct {
	OuraAccessToken  string `env:"OURA_ACCESS_TOKEN"`
	OuraClientID     string `env:"OURA_CLIENT_ID"`
	OuraClientSecret string `env:"OURA_CLIENT_SECRET"`
	OuraRefreshToken string `env:"OURA_REFRESH_TOKEN"`

	WithingsClientID     string `env:"WITHINGS_CLIENT_ID"`
	WithingsClientSecret string `env:"WITHINGS_CLIENT_SECRET"`
	WithingsRefreshToken string `env:"WITHINGS_REFRESH_TOKEN"`
}

// LoadCredentials reads credentials from the environment.
func LoadCredentials() (*Credentials, error) {
	var creds Credentials
	if err := env.Parse(&creds); err != nil {
		return nil, fmt.Errorf("parse credentials from environment: %w", err)
	}
	return &creds, nil
}

// HasOura reports whether enough ring credentials are set to fetch:
// either a ready access token or the full refresh-flow triple.
func (c *Credentials) HasOura() bool {
	if c.OuraAccessToken != "" {
		return true
	}
	return c.OuraClientID != "" && c.OuraClientSecret != "" && c.OuraRefreshToken != ""
}

// HasWithings reports whether scale credentials are set.
func (c *Credentials) HasWithings() bool {
	return c.WithingsClientID != "" && c.WithingsClientSecret != "" && c.WithingsRefreshToken != ""
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// StagingDir returns the staging cache directory under the data directory.
func (c *Config) StagingDir() string {
	return filepath.Join(c.GetDataDir(), "staging")
}

// OpenStorage opens the SQLite database under the data directory.
func (c *Config) OpenStorage() (*storage.DB, error) {
	return storage.Open(filepath.Join(c.GetDataDir(), "pulse.db"))
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "pulse", "config.json")
}

// Load reads config from disk.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
