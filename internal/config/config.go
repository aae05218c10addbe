// Package config resolves application configuration from viper.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/rotto/internal/common"
	"github.com/spf13/viper"
)

// Config is the fully resolved application configuration.
type Config struct {
	API      APIConfig
	Account  AccountConfig
	Display  DisplayConfig
	History  HistoryConfig
	Database DatabaseConfig
	Splash   SplashConfig
	Logging  LoggingConfig
}

// APIConfig describes how to reach the backend.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// AccountConfig names the funding account whose history is shown.
type AccountConfig struct {
	Code string
}

// DisplayConfig controls how timestamps are rendered.
type DisplayConfig struct {
	// Timezone is an IANA zone name or a ±HH:MM offset. Empty means +09:00.
	Timezone string
}

// HistoryConfig controls the refresh flow.
type HistoryConfig struct {
	FailurePolicy string
	RetryAttempts int
}

// DatabaseConfig locates the local SQLite database.
type DatabaseConfig struct {
	Path string
}

// SplashConfig controls the token-check screen.
type SplashConfig struct {
	Delay time.Duration
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string
	Format string
}

// Default configuration values.
const (
	DefaultBaseURL       = "http://localhost:8080"
	DefaultTimeout       = 15 * time.Second
	DefaultFailurePolicy = "keep-stale"
	DefaultRetryAttempts = 3
	DefaultSplashDelay   = 2 * time.Second
)

// DefaultDatabasePath returns ~/.local/share/rotto/rotto.db.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "rotto.db")
	}
	return filepath.Join(home, ".local", "share", "rotto", "rotto.db")
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.timeout", DefaultTimeout)
	v.SetDefault("display.timezone", "")
	v.SetDefault("history.failure_policy", DefaultFailurePolicy)
	v.SetDefault("history.retry_attempts", DefaultRetryAttempts)
	v.SetDefault("database.path", DefaultDatabasePath())
	v.SetDefault("splash.delay", DefaultSplashDelay)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load resolves the configuration from v.
// It follows this precedence:
// 1. Viper configuration (flags, config file, or ROTTO_ env vars)
// 2. Direct environment variables (ROTTO_API_URL, ROTTO_ACCOUNT)
// 3. Default values
func Load(v *viper.Viper) (*Config, error) {
	baseURLSet := v.IsSet("api.base_url")
	SetDefaults(v)

	cfg := &Config{
		API: APIConfig{
			BaseURL: v.GetString("api.base_url"),
			Timeout: v.GetDuration("api.timeout"),
		},
		Account: AccountConfig{
			Code: v.GetString("account.code"),
		},
		Display: DisplayConfig{
			Timezone: v.GetString("display.timezone"),
		},
		History: HistoryConfig{
			FailurePolicy: v.GetString("history.failure_policy"),
			RetryAttempts: v.GetInt("history.retry_attempts"),
		},
		Database: DatabaseConfig{
			Path: ExpandPath(v.GetString("database.path")),
		},
		Splash: SplashConfig{
			Delay: v.GetDuration("splash.delay"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
	}

	if env := os.Getenv("ROTTO_API_URL"); env != "" && !baseURLSet {
		cfg.API.BaseURL = env
	}
	if cfg.Account.Code == "" {
		cfg.Account.Code = os.Getenv("ROTTO_ACCOUNT")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api.base_url must be an http(s) URL, got %q", common.ErrInvalidConfig, c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("%w: api.timeout must be positive", common.ErrInvalidConfig)
	}
	if c.History.RetryAttempts < 1 {
		return fmt.Errorf("%w: history.retry_attempts must be at least 1", common.ErrInvalidConfig)
	}
	if c.Splash.Delay < 0 {
		return fmt.Errorf("%w: splash.delay cannot be negative", common.ErrInvalidConfig)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	return nil
}

// RequireAccount returns the configured account code or a missing-config error.
func (c *Config) RequireAccount() (string, error) {
	if c.Account.Code == "" {
		return "", fmt.Errorf("%w: account.code (set --account or ROTTO_ACCOUNT)", common.ErrMissingConfig)
	}
	return c.Account.Code, nil
}

// ExpandPath expands a leading ~ and any $VAR references in path.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return os.ExpandEnv(path)
}
