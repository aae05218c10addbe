package testutil

import (
	"time"

	"github.com/Veraticus/rotto/internal/model"
)

// RecordBuilder provides a fluent interface for constructing history fixtures.
//
// Example:
//
//	records := testutil.NewRecordBuilder().
//		Deposit("2024-01-11T00:10:00Z", "홍길동", 15000).
//		Withdrawal("2024-01-10T23:30:00Z", "커피농장 펀딩", 3000).
//		Build()
type RecordBuilder struct {
	records []model.TransactionRecord
}

// NewRecordBuilder creates an empty builder.
func NewRecordBuilder() *RecordBuilder {
	return &RecordBuilder{}
}

// Deposit appends a deposit at the RFC3339 instant at.
func (b *RecordBuilder) Deposit(at, counterparty string, amount int64) *RecordBuilder {
	return b.add(at, counterparty, model.DirectionDeposit, amount)
}

// Withdrawal appends a withdrawal at the RFC3339 instant at.
func (b *RecordBuilder) Withdrawal(at, counterparty string, amount int64) *RecordBuilder {
	return b.add(at, counterparty, model.DirectionWithdrawal, amount)
}

// Build returns the records in insertion order.
func (b *RecordBuilder) Build() []model.TransactionRecord {
	out := make([]model.TransactionRecord, len(b.records))
	copy(out, b.records)
	return out
}

func (b *RecordBuilder) add(at, counterparty string, direction model.Direction, amount int64) *RecordBuilder {
	ts, err := time.Parse(time.RFC3339, at)
	if err != nil {
		panic("testutil: bad fixture time " + at + ": " + err.Error())
	}
	b.records = append(b.records, model.TransactionRecord{
		Time:         ts,
		Counterparty: counterparty,
		Direction:    direction,
		Amount:       amount,
	})
	return b
}

// SampleHistory is a reverse-chronological history spanning three display days,
// including a pair that only shares a day after the +09:00 shift.
func SampleHistory() []model.TransactionRecord {
	return NewRecordBuilder().
		Deposit("2024-01-12T03:00:00Z", "정산금", 52000).
		Withdrawal("2024-01-11T00:10:00Z", "커피농장 펀딩", 3000).
		Deposit("2024-01-10T23:30:00Z", "홍길동", 15000).
		Withdrawal("2024-01-10T02:00:00Z", "에티오피아 예가체프 농장", 120000).
		Deposit("2024-01-10T01:00:00Z", "입금이체", 1000000).
		Build()
}
