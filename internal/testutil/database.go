// Package testutil provides shared test helpers: an isolated SQLite database,
// a scriptable history fetcher, and transaction record fixtures.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/rotto/internal/model"
	"github.com/Veraticus/rotto/internal/service"
	"github.com/Veraticus/rotto/internal/storage"
)

// TestDB represents a migrated in-memory database.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	Tokens         *model.TokenPair
	Snapshots      []service.Snapshot
	SkipMigrations bool
}

// SetupTestDB creates a new in-memory test database.
// It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	_ = db.Storage.SaveTokens(ctx, &model.TokenPair{...})
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// SetupTestDBWithOptions creates a test database with seeded data.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	if opts.Tokens != nil {
		if err := store.SaveTokens(ctx, opts.Tokens); err != nil {
			t.Fatalf("failed to seed tokens: %v", err)
		}
	}

	for _, snap := range opts.Snapshots {
		if err := store.SaveSnapshot(ctx, snap); err != nil {
			t.Fatalf("failed to seed snapshot for %s/%s: %v", snap.AccountCode, snap.Filter, err)
		}
	}

	return &TestDB{Storage: store, t: t}
}

// MustLoadTokens returns the stored tokens or fails the test.
func (db *TestDB) MustLoadTokens() *model.TokenPair {
	db.t.Helper()
	tokens, err := db.Storage.LoadTokens(context.Background())
	if err != nil {
		db.t.Fatalf("failed to load tokens: %v", err)
	}
	return tokens
}
