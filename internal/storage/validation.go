// Package storage provides the data persistence layer for rotto.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/rotto/internal/model"
	"github.com/Veraticus/rotto/internal/service"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidTokens    = errors.New("invalid token pair")
	ErrInvalidSnapshot  = errors.New("invalid history snapshot")
	ErrInvalidFilter    = errors.New("invalid history filter")
	ErrInvalidDirection = errors.New("invalid record direction")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTokens validates a token pair before it is persisted.
func validateTokens(tokens *model.TokenPair) error {
	if tokens == nil {
		return fmt.Errorf("%w: tokens", ErrNilParameter)
	}
	if tokens.AccessToken == "" {
		return fmt.Errorf("%w: missing access token", ErrInvalidTokens)
	}
	if tokens.RefreshToken == "" {
		return fmt.Errorf("%w: missing refresh token", ErrInvalidTokens)
	}
	return nil
}

func validateFilter(filter model.Filter) error {
	if !filter.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidFilter, int(filter))
	}
	return nil
}

// validateSnapshot validates a snapshot and every record in it.
func validateSnapshot(snapshot service.Snapshot) error {
	if err := validateString(snapshot.AccountCode, "accountCode"); err != nil {
		return err
	}
	if err := validateFilter(snapshot.Filter); err != nil {
		return err
	}
	if snapshot.FetchedAt.IsZero() {
		return fmt.Errorf("%w: missing fetch time", ErrInvalidSnapshot)
	}

	for i, r := range snapshot.Records {
		if r.Time.IsZero() {
			return fmt.Errorf("%w: record at index %d has no time", ErrInvalidSnapshot, i)
		}
		if r.Amount < 0 {
			return fmt.Errorf("%w: record at index %d has negative amount %d", ErrInvalidSnapshot, i, r.Amount)
		}
		if r.Direction != model.DirectionDeposit && r.Direction != model.DirectionWithdrawal {
			return fmt.Errorf("%w: record at index %d: %q", ErrInvalidDirection, i, r.Direction)
		}
	}
	return nil
}
