package history

import (
	"strings"
	"time"

	"github.com/Veraticus/rotto/internal/model"
	"github.com/shopspring/decimal"
)

// Section is one calendar day of history.
type Section struct {
	// Day is local midnight of the section's day.
	Day     time.Time
	Label   string
	Records []model.TransactionRecord
}

// Totals sums a section by direction.
type Totals struct {
	Deposits    decimal.Decimal
	Withdrawals decimal.Decimal
}

// Net is deposits minus withdrawals.
func (t Totals) Net() decimal.Decimal {
	return t.Deposits.Sub(t.Withdrawals)
}

// Totals sums the section's records.
func (s Section) Totals() Totals {
	totals := Totals{Deposits: decimal.Zero, Withdrawals: decimal.Zero}
	for _, r := range s.Records {
		amount := decimal.NewFromInt(r.Amount)
		if r.IsDeposit() {
			totals.Deposits = totals.Deposits.Add(amount)
		} else {
			totals.Withdrawals = totals.Withdrawals.Add(amount)
		}
	}
	return totals
}

// Buckets holds sections in the order their day was first seen.
type Buckets []Section

// GroupByDay partitions records by calendar day in loc.
// Days appear in first-seen order and records keep their source order within a day.
// Nothing is sorted, dropped, or duplicated.
func GroupByDay(records []model.TransactionRecord, loc *time.Location) Buckets {
	if loc == nil {
		loc, _ = DisplayZone("")
	}

	buckets := Buckets{}
	index := make(map[string]int)

	for _, r := range records {
		label := DayLabel(r.Time, loc)
		i, ok := index[label]
		if !ok {
			local := r.Time.In(loc)
			buckets = append(buckets, Section{
				Day:   time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc),
				Label: label,
			})
			i = len(buckets) - 1
			index[label] = i
		}
		buckets[i].Records = append(buckets[i].Records, r)
	}

	return buckets
}

// Lookup returns the section with the given label.
func (b Buckets) Lookup(label string) (Section, bool) {
	for _, s := range b {
		if s.Label == label {
			return s, true
		}
	}
	return Section{}, false
}

// Labels returns section labels in display order.
func (b Buckets) Labels() []string {
	labels := make([]string, len(b))
	for i, s := range b {
		labels[i] = s.Label
	}
	return labels
}

// RecordCount returns the number of records across all sections.
func (b Buckets) RecordCount() int {
	n := 0
	for _, s := range b {
		n += len(s.Records)
	}
	return n
}

// Flatten returns every record in display order.
func (b Buckets) Flatten() []model.TransactionRecord {
	out := make([]model.TransactionRecord, 0, b.RecordCount())
	for _, s := range b {
		out = append(out, s.Records...)
	}
	return out
}

// Search keeps records whose counterparty contains query, dropping emptied sections.
func (b Buckets) Search(query string) Buckets {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return b
	}
	out := Buckets{}
	for _, s := range b {
		var kept []model.TransactionRecord
		for _, r := range s.Records {
			if strings.Contains(strings.ToLower(r.Counterparty), query) {
				kept = append(kept, r)
			}
		}
		if len(kept) > 0 {
			out = append(out, Section{Day: s.Day, Label: s.Label, Records: kept})
		}
	}
	return out
}
