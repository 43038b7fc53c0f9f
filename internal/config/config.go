package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"
)

// DefaultPath is the configuration file used when --config is not given.
const DefaultPath = "configs/moviescout.yaml"

// Default values applied by Validate.
const (
	DefaultBaseURL        = "https://www.omdbapi.com/"
	DefaultTimeout        = 10 * time.Second
	DefaultScrollDebounce = 150 * time.Millisecond
	DefaultLogLevel       = "info"
)

// Config represents the main application configuration
type Config struct {
	// Movie directory
	OMDb OMDbConfig `yaml:"omdb"`

	// Frontends
	Telegram *TelegramConfig `yaml:"telegram,omitempty"`

	// Terminal UI
	UI UIConfig `yaml:"ui"`

	// Application settings
	App AppConfig `yaml:"app"`
}

// OMDbConfig holds OMDb API configuration. APIKey may be empty; OMDb rejects
// the first request in that case.
type OMDbConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken       string  `yaml:"bot_token"`
	AllowedUserIDs []int64 `yaml:"allowed_user_ids,omitempty"`
}

// UIConfig holds terminal UI settings
type UIConfig struct {
	ScrollDebounce time.Duration `yaml:"scroll_debounce,omitempty"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	LogLevel string `yaml:"log_level"`          // "debug", "info", "warn", "error"
	LogFile  string `yaml:"log_file,omitempty"` // interactive commands log here; empty discards
}

// Load loads configuration from a YAML file with .env and environment variable overrides.
// A missing file at DefaultPath is not an error: defaults and the environment are used.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	if data != nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// readConfigFile returns the file contents, or nil when the default file does not exist.
func readConfigFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if path == DefaultPath {
			return nil, nil
		}
		return nil, fmt.Errorf("config file not found: %s", path)
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	case info.IsDir():
		return nil, fmt.Errorf("config path %s is a directory", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return data, nil
}

// applyEnvOverrides overrides config values with environment variables
func (c *Config) applyEnvOverrides() {
	// OMDb
	if v := os.Getenv("MOVIESCOUT_OMDB_API_KEY"); v != "" {
		c.OMDb.APIKey = v
	}
	if v := os.Getenv("MOVIESCOUT_OMDB_BASE_URL"); v != "" {
		c.OMDb.BaseURL = v
	}

	// Telegram
	if v := os.Getenv("MOVIESCOUT_TELEGRAM_BOT_TOKEN"); v != "" {
		if c.Telegram == nil {
			c.Telegram = &TelegramConfig{}
		}
		c.Telegram.BotToken = v
	}

	// App
	if v := os.Getenv("MOVIESCOUT_LOG_LEVEL"); v != "" {
		c.App.LogLevel = v
	}
	if v := os.Getenv("MOVIESCOUT_LOG_FILE"); v != "" {
		c.App.LogFile = v
	}
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "warning": true, "error": true,
}

// Validate validates the configuration and fills defaults.
func (c *Config) Validate() error {
	// OMDb
	if c.OMDb.BaseURL == "" {
		c.OMDb.BaseURL = DefaultBaseURL
	}
	if err := validateURL("omdb.base_url", c.OMDb.BaseURL); err != nil {
		return err
	}
	if c.OMDb.Timeout < 0 {
		return fmt.Errorf("omdb.timeout must not be negative")
	}
	if c.OMDb.Timeout == 0 {
		c.OMDb.Timeout = DefaultTimeout
	}

	// Telegram
	if c.Telegram != nil && c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}

	// UI
	if c.UI.ScrollDebounce < 0 {
		return fmt.Errorf("ui.scroll_debounce must not be negative")
	}
	if c.UI.ScrollDebounce == 0 {
		c.UI.ScrollDebounce = DefaultScrollDebounce
	}

	// App
	if c.App.LogLevel == "" {
		c.App.LogLevel = DefaultLogLevel
	}
	if !validLogLevels[strings.ToLower(c.App.LogLevel)] {
		return fmt.Errorf("app.log_level must be one of debug, info, warn, error")
	}

	return nil
}

// validateURL checks that raw is an absolute http(s) URL.
func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https", field)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing host", field)
	}
	return nil
}
