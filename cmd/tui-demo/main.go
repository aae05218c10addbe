// Package main runs the TUI against an in-process fake backend.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Veraticus/rotto/internal/model"
	"github.com/Veraticus/rotto/internal/rotto"
	"github.com/Veraticus/rotto/internal/rotto/rottotest"
	"github.com/Veraticus/rotto/internal/storage"
	"github.com/Veraticus/rotto/internal/tui"
)

const demoAccount = "DEMO-0001"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()

	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	backend := rottotest.NewBackend(demoAccount, demoRecords())
	backend.Latency = 400 * time.Millisecond
	backend.RequireAuth = true
	server := httptest.NewServer(backend)
	defer server.Close()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	client, err := rotto.NewClient(rotto.Config{
		BaseURL: server.URL,
		Tokens:  store,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	if _, err := client.Login(ctx, backend.PhoneNum, backend.Password); err != nil {
		return fmt.Errorf("failed to log in to demo backend: %w", err)
	}

	return tui.Run(ctx,
		tui.WithFetcher(client),
		tui.WithSnapshots(store),
		tui.WithAccount(demoAccount),
		tui.WithLogger(logger),
		tui.WithSize(100, 32),
	)
}

// demoRecords is a reverse-chronological history spanning several days.
func demoRecords() []model.TransactionRecord {
	entries := []struct {
		at           string
		counterparty string
		direction    model.Direction
		amount       int64
	}{
		{"2024-01-14T09:00:00Z", "커피농장 수익 배당", model.DirectionDeposit, 84000},
		{"2024-01-13T12:45:00Z", "콜롬비아 우일라 농장", model.DirectionWithdrawal, 250000},
		{"2024-01-13T00:05:00Z", "홍길동", model.DirectionDeposit, 30000},
		{"2024-01-12T03:00:00Z", "정산금", model.DirectionDeposit, 52000},
		{"2024-01-11T00:10:00Z", "커피농장 펀딩", model.DirectionWithdrawal, 3000},
		{"2024-01-10T23:30:00Z", "홍길동", model.DirectionDeposit, 15000},
		{"2024-01-10T02:00:00Z", "에티오피아 예가체프 농장", model.DirectionWithdrawal, 120000},
		{"2024-01-10T01:00:00Z", "입금이체", model.DirectionDeposit, 1000000},
	}

	records := make([]model.TransactionRecord, 0, len(entries))
	for _, e := range entries {
		ts, err := time.Parse(time.RFC3339, e.at)
		if err != nil {
			panic(err)
		}
		records = append(records, model.TransactionRecord{
			Time:         ts,
			Counterparty: e.counterparty,
			Direction:    e.direction,
			Amount:       e.amount,
		})
	}
	return records
}
