// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/rotto/internal/model"
)

// HistoryFetcher retrieves an account's transaction history for one filter.
// Records come back in backend order; implementations never re-sort or cache.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, accountCode string, filter model.Filter) ([]model.TransactionRecord, error)
}

// TokenStore persists the credential pair issued on login.
type TokenStore interface {
	// LoadTokens returns common.ErrNotFound when nothing has been saved.
	LoadTokens(ctx context.Context) (*model.TokenPair, error)
	SaveTokens(ctx context.Context, tokens *model.TokenPair) error
	ClearTokens(ctx context.Context) error
}

// Snapshot is the last successfully displayed history for an account and filter.
type Snapshot struct {
	FetchedAt   time.Time
	AccountCode string
	Records     []model.TransactionRecord
	Filter      model.Filter
}

// SnapshotStore keeps the last-known-good history so a failed fetch can fall back to it.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot Snapshot) error
	// LoadSnapshot returns common.ErrNotFound when no snapshot exists.
	LoadSnapshot(ctx context.Context, accountCode string, filter model.Filter) (*Snapshot, error)
}

// Storage is the full persistence contract.
type Storage interface {
	TokenStore
	SnapshotStore

	Migrate(ctx context.Context) error
	SchemaVersion(ctx context.Context) (int, error)
	Close() error
}

// Navigator moves the user to another screen.
type Navigator interface {
	Navigate(route model.Route)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route model.Route)

// Navigate calls f(route).
func (f NavigatorFunc) Navigate(route model.Route) {
	f(route)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
