package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Config holds user preferences
type Config struct {
	ServerURL string `json:"server_url"` // base URL of the CodeNest API
	Theme     string `json:"theme"`      // "light" or "dark"
	TimeoutMS int    `json:"timeout_ms"` // per-request timeout, 0 for default
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		ServerURL: "http://localhost:8080/api",
		Theme:     "dark",
	}
}

// Timeout returns the configured request timeout as a duration.
func (c Config) Timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// ConfigDir returns the directory where config is stored
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".codenest"), nil
}

// ConfigFile returns the full path to the config file
func ConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the configuration from disk
func Load() (Config, error) {
	path, err := ConfigFile()
	if err != nil {
		return DefaultConfig(), err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return DefaultConfig(), err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), err
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultConfig().ServerURL
	}

	return cfg, nil
}

// Save writes the configuration to disk
func Save(cfg Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigFile()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
