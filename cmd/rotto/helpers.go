package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/rotto/internal/common"
	"github.com/Veraticus/rotto/internal/config"
	"github.com/Veraticus/rotto/internal/history"
	"github.com/Veraticus/rotto/internal/rotto"
	"github.com/Veraticus/rotto/internal/service"
	"github.com/Veraticus/rotto/internal/storage"
	"github.com/spf13/viper"
)

// loadConfig resolves the typed configuration from the global viper instance.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// openStorage opens and migrates the local database.
func openStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// sessionTokens returns store when it holds a usable login and nil otherwise,
// so reads against an open backend go out anonymously.
func sessionTokens(ctx context.Context, store service.TokenStore) (service.TokenStore, error) {
	tokens, err := store.LoadTokens(ctx)
	if errors.Is(err, common.ErrNotFound) {
		slog.Debug("No saved login, sending requests without a token")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tokens: %w", err)
	}
	if !tokens.Usable() {
		slog.Debug("Saved login holds placeholder tokens, sending requests without a token")
		return nil, nil
	}
	return store, nil
}

// newClient builds a backend client authorised by tokens.
func newClient(cfg *config.Config, tokens service.TokenStore) (*rotto.Client, error) {
	client, err := rotto.NewClient(rotto.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Tokens:  tokens,
		Logger:  slog.Default(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// retryOptions is the backoff used by the retry failure policy.
func retryOptions(cfg *config.Config) service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  cfg.History.RetryAttempts,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2,
	}
}

// displayZone resolves the configured display time zone.
func displayZone(cfg *config.Config) (*time.Location, error) {
	loc, err := history.DisplayZone(cfg.Display.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid display.timezone: %w", err)
	}
	return loc, nil
}
