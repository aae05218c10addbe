package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/rotto/internal/model"
	"github.com/Veraticus/rotto/internal/service"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name    string
		str     string
		wantErr bool
	}{
		{name: "valid string", str: "110-123", wantErr: false},
		{name: "empty string", str: "", wantErr: true},
		{name: "whitespace only", str: "  \t", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.str, "accountCode")
			if (err != nil) != tt.wantErr {
				t.Errorf("validateString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrEmptyString) {
				t.Errorf("validateString() error = %v, want ErrEmptyString", err)
			}
		})
	}
}

func TestValidateTokens(t *testing.T) {
	tests := []struct {
		tokens  *model.TokenPair
		wantErr error
		name    string
	}{
		{
			name:   "valid pair",
			tokens: &model.TokenPair{AccessToken: "a", RefreshToken: "r"},
		},
		{
			name:    "nil pair",
			tokens:  nil,
			wantErr: ErrNilParameter,
		},
		{
			name:    "missing access token",
			tokens:  &model.TokenPair{RefreshToken: "r"},
			wantErr: ErrInvalidTokens,
		},
		{
			name:    "missing refresh token",
			tokens:  &model.TokenPair{AccessToken: "a"},
			wantErr: ErrInvalidTokens,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTokens(tt.tokens)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("validateTokens() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validateTokens() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSnapshot(t *testing.T) {
	now := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)
	valid := func() service.Snapshot {
		return service.Snapshot{
			FetchedAt:   now,
			AccountCode: "110-123",
			Filter:      model.FilterAll,
			Records: []model.TransactionRecord{
				{Time: now, Counterparty: "홍길동", Direction: model.DirectionDeposit, Amount: 15000},
			},
		}
	}

	tests := []struct {
		mutate  func(*service.Snapshot)
		wantErr error
		name    string
	}{
		{name: "valid", mutate: func(*service.Snapshot) {}},
		{name: "empty records allowed", mutate: func(s *service.Snapshot) { s.Records = nil }},
		{name: "missing account", mutate: func(s *service.Snapshot) { s.AccountCode = "" }, wantErr: ErrEmptyString},
		{name: "bad filter", mutate: func(s *service.Snapshot) { s.Filter = model.Filter(9) }, wantErr: ErrInvalidFilter},
		{name: "missing fetch time", mutate: func(s *service.Snapshot) { s.FetchedAt = time.Time{} }, wantErr: ErrInvalidSnapshot},
		{name: "record without time", mutate: func(s *service.Snapshot) { s.Records[0].Time = time.Time{} }, wantErr: ErrInvalidSnapshot},
		{name: "negative amount", mutate: func(s *service.Snapshot) { s.Records[0].Amount = -1 }, wantErr: ErrInvalidSnapshot},
		{name: "unknown direction", mutate: func(s *service.Snapshot) { s.Records[0].Direction = "SIDEWAYS" }, wantErr: ErrInvalidDirection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := valid()
			tt.mutate(&snap)
			err := validateSnapshot(snap)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("validateSnapshot() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validateSnapshot() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
