package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/rotto/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ROTTO_API_URL", "")
	t.Setenv("ROTTO_ACCOUNT", "")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, DefaultTimeout, cfg.API.Timeout)
	assert.Equal(t, DefaultFailurePolicy, cfg.History.FailurePolicy)
	assert.Equal(t, DefaultRetryAttempts, cfg.History.RetryAttempts)
	assert.Equal(t, DefaultSplashDelay, cfg.Splash.Delay)
	assert.Empty(t, cfg.Display.Timezone)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NotEmpty(t, cfg.Database.Path)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
api:
  base_url: https://api.rotto.example
  timeout: 3s
account:
  code: "1002-77"
display:
  timezone: Asia/Seoul
history:
  failure_policy: retry
  retry_attempts: 5
database:
  path: ` + filepath.Join(dir, "rotto.db") + `
splash:
  delay: 0s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "https://api.rotto.example", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, "1002-77", cfg.Account.Code)
	assert.Equal(t, "Asia/Seoul", cfg.Display.Timezone)
	assert.Equal(t, "retry", cfg.History.FailurePolicy)
	assert.Equal(t, 5, cfg.History.RetryAttempts)
	assert.Equal(t, time.Duration(0), cfg.Splash.Delay)
}

func TestLoad_EnvironmentFallback(t *testing.T) {
	t.Setenv("ROTTO_API_URL", "https://env.rotto.example")
	t.Setenv("ROTTO_ACCOUNT", "env-account")

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "https://env.rotto.example", cfg.API.BaseURL)
	assert.Equal(t, "env-account", cfg.Account.Code)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			API:      APIConfig{BaseURL: "https://api.rotto.example", Timeout: time.Second},
			History:  HistoryConfig{FailurePolicy: "keep-stale", RetryAttempts: 1},
			Database: DatabaseConfig{Path: "/tmp/rotto.db"},
		}
	}

	tests := []struct {
		mutate  func(*Config)
		name    string
		wantErr error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad scheme", mutate: func(c *Config) { c.API.BaseURL = "ftp://x" }, wantErr: common.ErrInvalidConfig},
		{name: "no host", mutate: func(c *Config) { c.API.BaseURL = "http://" }, wantErr: common.ErrInvalidConfig},
		{name: "zero timeout", mutate: func(c *Config) { c.API.Timeout = 0 }, wantErr: common.ErrInvalidConfig},
		{name: "zero attempts", mutate: func(c *Config) { c.History.RetryAttempts = 0 }, wantErr: common.ErrInvalidConfig},
		{name: "negative delay", mutate: func(c *Config) { c.Splash.Delay = -time.Second }, wantErr: common.ErrInvalidConfig},
		{name: "no database", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: common.ErrMissingConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConfig_RequireAccount(t *testing.T) {
	cfg := Config{}
	_, err := cfg.RequireAccount()
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	cfg.Account.Code = "1002-77"
	code, err := cfg.RequireAccount()
	require.NoError(t, err)
	assert.Equal(t, "1002-77", code)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("ROTTO_TEST_DIR", "/data")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "rotto.db"), ExpandPath("~/rotto.db"))
	assert.Equal(t, "/data/rotto.db", ExpandPath("$ROTTO_TEST_DIR/rotto.db"))
}
