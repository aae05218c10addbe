package rotto

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Veraticus/rotto/internal/common"
	"github.com/Veraticus/rotto/internal/model"
	"github.com/shopspring/decimal"
)

// AccountTimeLayout is the zone-less instant the backend sends; it is UTC.
const AccountTimeLayout = "2006-01-02T15:04:05"

var accountTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// HistoryResponse is the body of every history endpoint.
type HistoryResponse struct {
	Items []HistoryItem `json:"accountHistoryListDtoss"`
}

// HistoryItem is one history entry on the wire.
type HistoryItem struct {
	AccountTime         string              `json:"accountTime"`
	TransferName        string              `json:"transferName"`
	Amount              decimal.NullDecimal `json:"amount"`
	DepositOrWithdrawal int                 `json:"depositOrWithdrawal"`
}

// Record converts the wire item into a domain record.
func (it HistoryItem) Record() (model.TransactionRecord, error) {
	at, err := ParseAccountTime(it.AccountTime)
	if err != nil {
		return model.TransactionRecord{}, err
	}

	if !it.Amount.Valid {
		return model.TransactionRecord{}, fmt.Errorf("%w: missing amount", common.ErrDecode)
	}
	amount := it.Amount.Decimal
	if amount.IsNegative() {
		return model.TransactionRecord{}, fmt.Errorf("%w: negative amount %s", common.ErrDecode, amount)
	}
	if !amount.IsInteger() {
		return model.TransactionRecord{}, fmt.Errorf("%w: fractional amount %s", common.ErrDecode, amount)
	}
	if amount.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return model.TransactionRecord{}, fmt.Errorf("%w: amount %s out of range", common.ErrDecode, amount)
	}

	return model.TransactionRecord{
		Time:         at,
		Counterparty: it.TransferName,
		Direction:    model.DirectionFromCode(it.DepositOrWithdrawal),
		Amount:       amount.IntPart(),
	}, nil
}

// ParseAccountTime parses a backend timestamp. Values without an offset are UTC.
func ParseAccountTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: missing accountTime", common.ErrDecode)
	}
	for _, layout := range accountTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised accountTime %q", common.ErrDecode, s)
}

func decodeHistory(body []byte) ([]model.TransactionRecord, error) {
	var resp HistoryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDecode, err)
	}

	records := make([]model.TransactionRecord, 0, len(resp.Items))
	for i, item := range resp.Items {
		r, err := item.Record()
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		records = append(records, r)
	}
	return records, nil
}

// TokenResponse is the body returned by login and refresh.
type TokenResponse struct {
	GrantType    string `json:"grantType"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginRequest is the body sent to the login endpoint.
type LoginRequest struct {
	PhoneNum string `json:"phoneNum"`
	Password string `json:"password"`
}

func (t TokenResponse) pair(now time.Time) (*model.TokenPair, error) {
	if t.AccessToken == "" || t.RefreshToken == "" {
		return nil, fmt.Errorf("%w: token response is missing a token", common.ErrDecode)
	}
	return &model.TokenPair{
		UpdatedAt:    now,
		GrantType:    t.GrantType,
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
	}, nil
}
