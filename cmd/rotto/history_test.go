package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Veraticus/rotto/internal/cli"
	"github.com/Veraticus/rotto/internal/common"
	"github.com/Veraticus/rotto/internal/config"
	"github.com/Veraticus/rotto/internal/history"
	"github.com/Veraticus/rotto/internal/model"
	"github.com/Veraticus/rotto/internal/rotto"
	"github.com/Veraticus/rotto/internal/rotto/rottotest"
	"github.com/Veraticus/rotto/internal/service"
	"github.com/Veraticus/rotto/internal/storage"
	"github.com/Veraticus/rotto/internal/testutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAccount = "ACC-1"

type historyFixture struct {
	backend *rottotest.Backend
	store   *storage.SQLiteStorage
	client  *rotto.Client
	cmd     *cobra.Command
	stderr  *bytes.Buffer
	loc     *time.Location
}

func newHistoryFixture(t *testing.T) *historyFixture {
	t.Helper()
	ctx := context.Background()

	backend := rottotest.NewBackend(testAccount, testutil.SampleHistory())
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if closeErr := store.Close(); closeErr != nil {
			t.Logf("Failed to close store: %v", closeErr)
		}
	})
	require.NoError(t, store.Migrate(ctx))

	client, err := rotto.NewClient(rotto.Config{
		BaseURL: server.URL,
		Tokens:  store,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	_, err = client.Login(ctx, backend.PhoneNum, backend.Password)
	require.NoError(t, err)

	loc, err := history.DisplayZone("")
	require.NoError(t, err)

	var stderr bytes.Buffer
	cmd := historyCmd()
	cmd.SetErr(&stderr)

	return &historyFixture{backend: backend, store: store, client: client, cmd: cmd, stderr: &stderr, loc: loc}
}

func (f *historyFixture) options(policy history.Policy) history.Options {
	return history.Options{
		Location: f.loc,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Retry:    service.RetryOptions{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1},
		Policy:   policy,
	}
}

func TestFetchHistory_StoresSnapshot(t *testing.T) {
	f := newHistoryFixture(t)
	ctx := context.Background()

	view, err := fetchHistory(ctx, f.cmd, f.store, f.client, f.options(history.PolicyKeepStale), testAccount, model.FilterAll)
	require.NoError(t, err)
	assert.False(t, view.Stale)
	assert.Equal(t, 5, view.Sections.RecordCount())
	assert.Equal(t, "2024년 01월 11일", view.Sections[1].Label)

	snapshot, err := f.store.LoadSnapshot(ctx, testAccount, model.FilterAll)
	require.NoError(t, err)
	assert.Equal(t, testutil.SampleHistory(), snapshot.Records)
}

func TestFetchHistory_FallsBackToSnapshot(t *testing.T) {
	f := newHistoryFixture(t)
	ctx := context.Background()
	historyPath := rotto.HistoryPath(testAccount, model.FilterDeposit)

	_, err := fetchHistory(ctx, f.cmd, f.store, f.client, f.options(history.PolicyKeepStale), testAccount, model.FilterDeposit)
	require.NoError(t, err)

	f.backend.FailNext(historyPath, http.StatusInternalServerError)
	view, err := fetchHistory(ctx, f.cmd, f.store, f.client, f.options(history.PolicyKeepStale), testAccount, model.FilterDeposit)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrServer)
	assert.True(t, view.Stale)
	assert.Equal(t, 3, view.Sections.RecordCount())
	assert.Equal(t, model.FilterDeposit, view.Filter)
}

func TestFetchHistory_NoSnapshotFailure(t *testing.T) {
	f := newHistoryFixture(t)

	f.backend.FailNext(rotto.HistoryPath(testAccount, model.FilterAll), http.StatusInternalServerError)
	view, err := fetchHistory(context.Background(), f.cmd, f.store, f.client, f.options(history.PolicyKeepStale), testAccount, model.FilterAll)
	require.Error(t, err)
	assert.True(t, view.Empty())
	assert.False(t, view.Stale)
}

func TestFetchHistory_RetryPolicy(t *testing.T) {
	f := newHistoryFixture(t)

	f.backend.FailNext(rotto.HistoryPath(testAccount, model.FilterAll), http.StatusInternalServerError)
	view, err := fetchHistory(context.Background(), f.cmd, f.store, f.client, f.options(history.PolicyRetry), testAccount, model.FilterAll)
	require.NoError(t, err)
	assert.Equal(t, 5, view.Sections.RecordCount())
}

func TestFetchHistory_UnknownAccount(t *testing.T) {
	f := newHistoryFixture(t)

	_, err := fetchHistory(context.Background(), f.cmd, f.store, f.client, f.options(history.PolicyKeepStale), "NOPE", model.FilterAll)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrAccountNotFound)

	userErr := describeFetchError(err)
	assert.Equal(t, "account NOPE was not found", userMessage(userErr))
}

func TestStoredView(t *testing.T) {
	f := newHistoryFixture(t)
	ctx := context.Background()

	_, err := storedView(ctx, f.store, testAccount, model.FilterAll, f.loc)
	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = fetchHistory(ctx, f.cmd, f.store, f.client, f.options(history.PolicyKeepStale), testAccount, model.FilterAll)
	require.NoError(t, err)

	view, err := storedView(ctx, f.store, testAccount, model.FilterAll, f.loc)
	require.NoError(t, err)
	assert.True(t, view.Stale)
	assert.Equal(t, 3, len(view.Sections))

	var out bytes.Buffer
	require.NoError(t, cli.RenderHistory(&out, cli.HistoryReport{Location: f.loc, View: view}, cli.FormatText))
	assert.Contains(t, out.String(), "저장된 내역")
	assert.Contains(t, out.String(), "+15,000 원")
}

func TestDescribeFetchError(t *testing.T) {
	tests := []struct {
		kind history.ErrorKind
		want string
	}{
		{kind: history.KindNotFound, want: "account ACC-1 was not found"},
		{kind: history.KindUnauthorized, want: "not logged in or session expired; run rotto login"},
		{kind: history.KindServer, want: "the server failed to return the history"},
		{kind: history.KindDecode, want: "the server returned a history this client cannot read"},
		{kind: history.KindCanceled, want: "request canceled"},
		{kind: history.KindNetwork, want: "could not reach the server"},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := fmt.Errorf("refresh: %w", &history.FetchError{Kind: tt.kind, AccountCode: testAccount, Err: common.ErrServer})
			assert.Equal(t, tt.want, userMessage(describeFetchError(err)))
		})
	}

	plain := fmt.Errorf("boom")
	assert.Equal(t, plain, describeFetchError(plain))
}

func TestParseHistoryFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    historyOptions
		wantErr bool
	}{
		{
			name: "defaults",
			want: historyOptions{filter: model.FilterAll, format: cli.FormatText},
		},
		{
			name: "korean filter and json",
			args: []string{"--filter", "출금", "--format", "json", "-q", "농장", "--offline"},
			want: historyOptions{filter: model.FilterWithdrawal, format: cli.FormatJSON, query: "농장", offline: true},
		},
		{
			name:    "bad filter",
			args:    []string{"--filter", "refund"},
			wantErr: true,
		},
		{
			name: "day",
			args: []string{"--day", "2024-01-11"},
			want: historyOptions{filter: model.FilterAll, format: cli.FormatText, day: "2024-01-11"},
		},
		{
			name:    "bad day",
			args:    []string{"--day", "01/11"},
			wantErr: true,
		},
		{
			name:    "bad format",
			args:    []string{"--format", "xml"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := historyCmd()
			require.NoError(t, cmd.ParseFlags(tt.args))

			got, err := parseHistoryFlags(cmd)
			if tt.wantErr {
				var userErr *common.UserError
				assert.ErrorAs(t, err, &userErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSessionTokens(t *testing.T) {
	tests := []struct {
		saved    *model.TokenPair
		name     string
		wantAuth bool
	}{
		{name: "nothing saved"},
		{
			name:  "placeholder tokens",
			saved: &model.TokenPair{AccessToken: model.PlaceholderAccessToken, RefreshToken: model.PlaceholderRefreshToken},
		},
		{
			name:     "real login",
			saved:    &model.TokenPair{GrantType: "Bearer", AccessToken: "access-1", RefreshToken: "refresh-1"},
			wantAuth: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			db := testutil.SetupTestDB(t)
			if tt.saved != nil {
				require.NoError(t, db.Storage.SaveTokens(ctx, tt.saved))
			}

			tokens, err := sessionTokens(ctx, db.Storage)
			require.NoError(t, err)
			if tt.wantAuth {
				assert.NotNil(t, tokens)
			} else {
				assert.Nil(t, tokens)
			}
		})
	}
}

func TestNewClient_AnonymousWithoutLogin(t *testing.T) {
	ctx := context.Background()
	backend := rottotest.NewBackend(testAccount, testutil.SampleHistory())
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)
	db := testutil.SetupTestDB(t)

	tokens, err := sessionTokens(ctx, db.Storage)
	require.NoError(t, err)
	client, err := newClient(&config.Config{API: config.APIConfig{BaseURL: server.URL, Timeout: time.Second}}, tokens)
	require.NoError(t, err)

	records, err := client.FetchHistory(ctx, testAccount, model.FilterDeposit)
	require.NoError(t, err)
	assert.Len(t, records, 3)
	require.Len(t, backend.Requests(), 1)
	assert.Empty(t, backend.Requests()[0].Authorization)
}
