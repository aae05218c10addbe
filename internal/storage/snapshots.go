package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/rotto/internal/common"
	"github.com/Veraticus/rotto/internal/model"
	"github.com/Veraticus/rotto/internal/service"
)

// snapshotRecord is the stored JSON shape of one record.
type snapshotRecord struct {
	Time         time.Time       `json:"time"`
	Counterparty string          `json:"counterparty"`
	Direction    model.Direction `json:"direction"`
	Amount       int64           `json:"amount"`
}

// SaveSnapshot stores the history for an account and filter, replacing any earlier one.
func (s *SQLiteStorage) SaveSnapshot(ctx context.Context, snapshot service.Snapshot) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSnapshot(snapshot); err != nil {
		return err
	}

	rows := make([]snapshotRecord, len(snapshot.Records))
	for i, r := range snapshot.Records {
		rows[i] = snapshotRecord{
			Time:         r.Time.UTC(),
			Counterparty: r.Counterparty,
			Direction:    r.Direction,
			Amount:       r.Amount,
		}
	}

	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot records: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO history_snapshots (account_code, filter, fetched_at, records, record_count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(account_code, filter) DO UPDATE SET
			fetched_at = excluded.fetched_at,
			records = excluded.records,
			record_count = excluded.record_count
	`, snapshot.AccountCode, snapshot.Filter.String(), snapshot.FetchedAt.UTC(), string(data), len(rows))
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the stored history for an account and filter.
func (s *SQLiteStorage) LoadSnapshot(ctx context.Context, accountCode string, filter model.Filter) (*service.Snapshot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(accountCode, "accountCode"); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	var (
		fetchedAt time.Time
		data      string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT fetched_at, records
		FROM history_snapshots
		WHERE account_code = ? AND filter = ?
	`, accountCode, filter.String()).Scan(&fetchedAt, &data)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var rows []snapshotRecord
	if err := json.Unmarshal([]byte(data), &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot records: %w", err)
	}

	records := make([]model.TransactionRecord, len(rows))
	for i, r := range rows {
		records[i] = model.TransactionRecord{
			Time:         r.Time,
			Counterparty: r.Counterparty,
			Direction:    r.Direction,
			Amount:       r.Amount,
		}
	}

	return &service.Snapshot{
		FetchedAt:   fetchedAt,
		AccountCode: accountCode,
		Records:     records,
		Filter:      filter,
	}, nil
}

// DeleteSnapshots removes every stored snapshot for an account.
func (s *SQLiteStorage) DeleteSnapshots(ctx context.Context, accountCode string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(accountCode, "accountCode"); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM history_snapshots WHERE account_code = ?`, accountCode); err != nil {
		return fmt.Errorf("failed to delete snapshots: %w", err)
	}
	return nil
}
