package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectionFromCode(t *testing.T) {
	tests := []struct {
		name string
		want Direction
		code int
	}{
		{name: "one is deposit", code: 1, want: DirectionDeposit},
		{name: "two is withdrawal", code: 2, want: DirectionWithdrawal},
		{name: "zero is withdrawal", code: 0, want: DirectionWithdrawal},
		{name: "unknown is withdrawal", code: 7, want: DirectionWithdrawal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DirectionFromCode(tt.code))
		})
	}
}

func TestDirection_Sign(t *testing.T) {
	assert.Equal(t, "+", DirectionDeposit.Sign())
	assert.Equal(t, "-", DirectionWithdrawal.Sign())
	assert.Equal(t, 1, DirectionDeposit.Code())
	assert.Equal(t, DirectionWithdrawal, DirectionFromCode(DirectionWithdrawal.Code()))
}

func TestTransactionRecord_Key(t *testing.T) {
	at := time.Date(2024, 1, 10, 23, 30, 0, 0, time.UTC)
	a := TransactionRecord{Time: at, Counterparty: "홍길동", Direction: DirectionDeposit, Amount: 15000}
	b := a
	c := a
	c.Amount = 15001

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
	assert.Len(t, a.Key(), 16)
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		input   string
		want    Filter
		wantErr bool
	}{
		{input: "", want: FilterAll},
		{input: "all", want: FilterAll},
		{input: "전체", want: FilterAll},
		{input: "Deposit", want: FilterDeposit},
		{input: "입금", want: FilterDeposit},
		{input: " withdrawal ", want: FilterWithdrawal},
		{input: "출금", want: FilterWithdrawal},
		{input: "refund", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFilter(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilter_LabelsRoundTrip(t *testing.T) {
	for _, f := range AllFilters {
		byLabel, err := ParseFilter(f.Label())
		require.NoError(t, err)
		assert.Equal(t, f, byLabel)

		byName, err := ParseFilter(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, byName)
		assert.True(t, f.Valid())
	}
	assert.False(t, Filter(9).Valid())
}

func TestFilter_Matches(t *testing.T) {
	deposit := TransactionRecord{Direction: DirectionDeposit}
	withdrawal := TransactionRecord{Direction: DirectionWithdrawal}

	assert.True(t, FilterAll.Matches(deposit))
	assert.True(t, FilterAll.Matches(withdrawal))
	assert.True(t, FilterDeposit.Matches(deposit))
	assert.False(t, FilterDeposit.Matches(withdrawal))
	assert.True(t, FilterWithdrawal.Matches(withdrawal))
	assert.False(t, FilterWithdrawal.Matches(deposit))
}

func TestTokenPair_Usable(t *testing.T) {
	tests := []struct {
		pair *TokenPair
		name string
		want bool
	}{
		{name: "nil pair", pair: nil, want: false},
		{name: "both real", pair: &TokenPair{AccessToken: "a.b.c", RefreshToken: "d.e.f"}, want: true},
		{name: "missing access", pair: &TokenPair{RefreshToken: "d.e.f"}, want: false},
		{name: "missing refresh", pair: &TokenPair{AccessToken: "a.b.c"}, want: false},
		{name: "placeholder access", pair: &TokenPair{AccessToken: PlaceholderAccessToken, RefreshToken: "d.e.f"}, want: false},
		{name: "placeholder refresh", pair: &TokenPair{AccessToken: "a.b.c", RefreshToken: PlaceholderRefreshToken}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pair.Usable())
		})
	}
}
