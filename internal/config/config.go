package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvToken   = "TOKEN"
	EnvDataDir = "ROLEBOT_DATA_DIR"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "rolebot.yaml"

// ErrMissingToken is returned by Validate when no bot token is configured.
var ErrMissingToken = errors.New("bot token is required (set token in config or TOKEN env)")

// Config represents the bot configuration.
type Config struct {
	Token   string `yaml:"token,omitempty"`
	DataDir string `yaml:"data_dir"`
	// GuildIDs limits command registration to these guilds; empty registers globally.
	GuildIDs []string `yaml:"guild_ids,omitempty"`
	LogLevel string   `yaml:"log_level"`
	// RequestTimeoutSeconds bounds platform and store calls made for one interaction.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		DataDir:               ".",
		LogLevel:              "info",
		RequestTimeoutSeconds: 10,
	}
}

// LoadConfig reads the YAML config at path, then applies environment overrides.
// A missing file is not an error: defaults plus environment are used.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if v := os.Getenv(EnvToken); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}

	return cfg, nil
}

// SaveConfig writes cfg to path as YAML. The token is never written.
func SaveConfig(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}

	out := *cfg
	out.Token = ""
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate checks the settings needed to connect.
func (c *Config) Validate() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	if c.DataDir == "" {
		return errors.New("data_dir cannot be empty")
	}
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_seconds must be positive, got %d", c.RequestTimeoutSeconds)
	}
	return nil
}

// RequestTimeout returns RequestTimeoutSeconds as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
