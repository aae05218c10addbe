package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/rotto/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestWithRetry(t *testing.T) {
	tests := []struct {
		name      string
		errs      []error
		wantErr   error
		wantCalls int
	}{
		{
			name:      "succeeds first time",
			errs:      []error{nil},
			wantCalls: 1,
		},
		{
			name:      "recovers after network failure",
			errs:      []error{fmt.Errorf("dial: %w", ErrNetwork), nil},
			wantCalls: 2,
		},
		{
			name:      "gives up after max attempts",
			errs:      []error{ErrServer, ErrServer, ErrServer},
			wantErr:   ErrMaxRetries,
			wantCalls: 3,
		},
		{
			name:      "does not retry not found",
			errs:      []error{ErrAccountNotFound},
			wantErr:   ErrAccountNotFound,
			wantCalls: 1,
		},
		{
			name:      "does not retry explicit non-retryable",
			errs:      []error{&RetryableError{Err: ErrServer, Retryable: false}},
			wantErr:   ErrServer,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithRetry(context.Background(), func() error {
				e := tt.errs[calls]
				calls++
				return e
			}, fastRetry(3))

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWithRetry_KeepsLastError(t *testing.T) {
	err := WithRetry(context.Background(), func() error {
		return ErrNetwork
	}, fastRetry(2))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxRetries)
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := WithRetry(ctx, func() error {
		calls++
		cancel()
		return ErrNetwork
	}, service.RetryOptions{MaxAttempts: 5, InitialDelay: time.Second})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(ErrUnauthorized))
	assert.True(t, IsRetryable(context.DeadlineExceeded))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", ErrNetwork)))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("flaky"), Retryable: true}))
}

func TestUserError(t *testing.T) {
	err := NewUserError("계좌를 찾을 수 없습니다", ErrAccountNotFound)
	assert.Equal(t, "계좌를 찾을 수 없습니다: account not found", err.Error())
	assert.ErrorIs(t, err, ErrAccountNotFound)

	bare := NewUserError("로그인이 필요합니다", nil)
	assert.Equal(t, "로그인이 필요합니다", bare.Error())
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", lvl.String())

	_, err = ParseLevel("loud")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
