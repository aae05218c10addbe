// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Direction says whether money entered or left the funding account.
type Direction string

// Direction constants.
const (
	DirectionDeposit    Direction = "DEPOSIT"
	DirectionWithdrawal Direction = "WITHDRAWAL"
)

// depositWireCode is the backend's depositOrWithdrawal value for deposits.
// Every other value is a withdrawal.
const depositWireCode = 1

// DirectionFromCode maps the backend depositOrWithdrawal flag to a Direction.
func DirectionFromCode(code int) Direction {
	if code == depositWireCode {
		return DirectionDeposit
	}
	return DirectionWithdrawal
}

// Code returns the backend flag for the direction.
func (d Direction) Code() int {
	if d == DirectionDeposit {
		return depositWireCode
	}
	return 2
}

// Sign returns the prefix used when displaying an amount.
func (d Direction) Sign() string {
	if d == DirectionDeposit {
		return "+"
	}
	return "-"
}

// TransactionRecord is a single entry of an account's transaction history.
// Records are immutable once fetched.
type TransactionRecord struct {
	Time         time.Time
	Counterparty string
	Direction    Direction
	Amount       int64
}

// IsDeposit reports whether the record added money to the account.
func (r TransactionRecord) IsDeposit() bool {
	return r.Direction == DirectionDeposit
}

// Key identifies a record inside one history listing.
// The backend exposes no ID, so the key is derived from every field.
func (r TransactionRecord) Key() string {
	data := fmt.Sprintf("%s:%s:%s:%d",
		r.Time.UTC().Format(time.RFC3339Nano),
		r.Counterparty,
		r.Direction,
		r.Amount)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash[:8])
}
