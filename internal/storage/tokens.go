package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/rotto/internal/common"
	"github.com/Veraticus/rotto/internal/model"
)

// LoadTokens returns the stored credential pair.
func (s *SQLiteStorage) LoadTokens(ctx context.Context) (*model.TokenPair, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	if tokens := s.getCachedTokens(); tokens != nil {
		return tokens, nil
	}

	return s.loadTokensTx(ctx, s.db)
}

func (s *SQLiteStorage) loadTokensTx(ctx context.Context, q queryable) (*model.TokenPair, error) {
	var tokens model.TokenPair

	err := q.QueryRowContext(ctx, `
		SELECT grant_type, access_token, refresh_token, updated_at
		FROM tokens
		WHERE id = 1
	`).Scan(
		&tokens.GrantType,
		&tokens.AccessToken,
		&tokens.RefreshToken,
		&tokens.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tokens: %w", err)
	}

	s.cacheTokens(&tokens)
	return copyTokens(&tokens), nil
}

// SaveTokens replaces the stored credential pair.
func (s *SQLiteStorage) SaveTokens(ctx context.Context, tokens *model.TokenPair) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTokens(tokens); err != nil {
		return err
	}

	saved := copyTokens(tokens)
	if saved.UpdatedAt.IsZero() {
		saved.UpdatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tokens (id, grant_type, access_token, refresh_token, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			grant_type = excluded.grant_type,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			updated_at = excluded.updated_at
	`, saved.GrantType, saved.AccessToken, saved.RefreshToken, saved.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save tokens: %w", err)
	}

	s.cacheTokens(saved)
	return nil
}

// ClearTokens removes the stored credential pair. Clearing an empty store is not an error.
func (s *SQLiteStorage) ClearTokens(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM tokens WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}

	s.cacheMutex.Lock()
	s.tokenCache = nil
	s.cacheMutex.Unlock()
	return nil
}

func (s *SQLiteStorage) getCachedTokens() *model.TokenPair {
	s.cacheMutex.RLock()
	defer s.cacheMutex.RUnlock()
	if s.tokenCache == nil {
		return nil
	}
	return copyTokens(s.tokenCache)
}

func (s *SQLiteStorage) cacheTokens(tokens *model.TokenPair) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()
	s.tokenCache = copyTokens(tokens)
}

func copyTokens(tokens *model.TokenPair) *model.TokenPair {
	c := *tokens
	return &c
}
