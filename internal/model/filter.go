package model

import (
	"fmt"
	"strings"
)

// Filter selects which slice of the account history is retrieved.
type Filter int

// Filter values, in the order the filter modal lists them.
const (
	FilterAll Filter = iota
	FilterDeposit
	FilterWithdrawal
)

// AllFilters lists every selectable filter.
var AllFilters = []Filter{FilterAll, FilterDeposit, FilterWithdrawal}

// Label returns the text shown on the filter chip.
func (f Filter) Label() string {
	switch f {
	case FilterDeposit:
		return "입금"
	case FilterWithdrawal:
		return "출금"
	default:
		return "전체"
	}
}

// String returns the configuration name of the filter.
func (f Filter) String() string {
	switch f {
	case FilterDeposit:
		return "deposit"
	case FilterWithdrawal:
		return "withdrawal"
	default:
		return "all"
	}
}

// Valid reports whether f is one of the known filters.
func (f Filter) Valid() bool {
	return f >= FilterAll && f <= FilterWithdrawal
}

// Matches reports whether a record belongs to the filtered slice.
func (f Filter) Matches(r TransactionRecord) bool {
	switch f {
	case FilterDeposit:
		return r.Direction == DirectionDeposit
	case FilterWithdrawal:
		return r.Direction == DirectionWithdrawal
	default:
		return true
	}
}

// ParseFilter accepts both configuration names and on-screen labels.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "전체":
		return FilterAll, nil
	case "deposit", "입금":
		return FilterDeposit, nil
	case "withdrawal", "출금":
		return FilterWithdrawal, nil
	default:
		return FilterAll, fmt.Errorf("unknown filter %q: must be all, deposit, or withdrawal", s)
	}
}
