package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/Veraticus/rotto/internal/common"
	"github.com/Veraticus/rotto/internal/history"
	"github.com/Veraticus/rotto/internal/model"
	"github.com/Veraticus/rotto/internal/service"
	"github.com/Veraticus/rotto/internal/testutil"
	"github.com/Veraticus/rotto/internal/tui/components"
	"github.com/Veraticus/rotto/internal/uistate"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAccount = "ACC-1"

type recordingNavigator struct {
	routes []model.Route
	mu     sync.Mutex
}

func (n *recordingNavigator) Navigate(route model.Route) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

func (n *recordingNavigator) Routes() []model.Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.Route(nil), n.routes...)
}

func newTestModel(t *testing.T, fetcher service.HistoryFetcher, opts ...Option) Model {
	t.Helper()
	cfg := defaultConfig()
	cfg.Fetcher = fetcher
	cfg.Account = testAccount
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	WithSize(100, 40)(&cfg)
	for _, opt := range opts {
		opt(&cfg)
	}

	m := newModel(context.Background(), cfg)
	t.Cleanup(m.Close)
	return m
}

// step applies one message without running the resulting commands.
func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

// drive applies msg and then every message its commands produce, until idle.
func drive(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	queue := []tea.Msg{msg}
	for i := 0; len(queue) > 0; i++ {
		require.Less(t, i, 100, "update loop did not settle")
		var cmd tea.Cmd
		m, cmd = step(t, m, queue[0])
		queue = append(queue[1:], collect(cmd)...)
	}
	return m
}

func start(t *testing.T, m Model) Model {
	t.Helper()
	queue := collect(m.Init())
	for _, msg := range queue {
		m = drive(t, m, msg)
	}
	return m
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case nil, spinner.TickMsg, tea.QuitMsg:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_StartsOnHome(t *testing.T) {
	fetcher := testutil.NewFakeFetcher(testutil.SampleHistory())
	m := start(t, newTestModel(t, fetcher))

	assert.Equal(t, TabHome, m.Tab())
	assert.Empty(t, fetcher.Calls(), "home does not load history")

	view := m.View()
	assert.Contains(t, view, components.Logo)
	assert.Contains(t, view, "커피농장 투자")
	assert.Contains(t, view, "알림")
}

func TestModel_FocusMyLoadsHistory(t *testing.T) {
	fetcher := testutil.NewFakeFetcher(testutil.SampleHistory())
	m := start(t, newTestModel(t, fetcher, WithStartTab(TabMy)))

	assert.Equal(t, TabMy, m.Tab())
	assert.Equal(t, []testutil.FetchCall{{AccountCode: testAccount, Filter: model.FilterAll}}, fetcher.Calls())
	assert.False(t, m.history.Loading())

	view := m.View()
	assert.Contains(t, view, "2024년 01월 11일")
	assert.Contains(t, view, "+15,000 원")
	assert.Contains(t, view, "검색")
}

func TestModel_TabSwitchRefreshes(t *testing.T) {
	fetcher := testutil.NewFakeFetcher(testutil.SampleHistory())
	m := start(t, newTestModel(t, fetcher))

	m = drive(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TabMy, m.Tab())
	assert.Len(t, fetcher.Calls(), 1)

	m = drive(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TabHome, m.Tab())

	m = drive(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Len(t, fetcher.Calls(), 2, "every focus refreshes")
}

func TestModel_HomeNavigation(t *testing.T) {
	fetcher := testutil.NewFakeFetcher(testutil.SampleHistory())
	nav := &recordingNavigator{}
	m := start(t, newTestModel(t, fetcher, WithNavigator(nav)))

	m = drive(t, m, keyRunes("a"))
	assert.Equal(t, []model.Route{model.RouteAlertList}, nav.Routes())
	assert.Contains(t, m.View(), "alertList")

	m = drive(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []model.Route{model.RouteAlertList, model.RouteAnnouncement}, nav.Routes())

	m = drive(t, m, keyRunes("p"))
	assert.Equal(t, TabMy, m.Tab(), "profile opens the history tab")
	assert.Len(t, fetcher.Calls(), 1)
}

func TestModel_FilterModalChangesFilter(t *testing.T) {
	fetcher := testutil.NewFakeFetcher(testutil.SampleHistory())
	store := uistate.NewStore()
	m := start(t, newTestModel(t, fetcher, WithStore(store), WithStartTab(TabMy)))

	m = drive(t, m, keyRunes("f"))
	assert.Equal(t, ModalFilter, m.Modal())
	assert.True(t, store.FilterModal())
	assert.Contains(t, m.View(), "거래 구분")

	m = drive(t, m, keyRunes("2"))
	assert.Equal(t, ModalNone, m.Modal())
	assert.False(t, store.FilterModal())
	assert.Equal(t, model.FilterDeposit, store.Filter())

	calls := fetcher.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, model.FilterDeposit, calls[1].Filter)

	assert.Equal(t, model.FilterDeposit, m.history.Filter())
	view := m.View()
	assert.Contains(t, view, "홍길동")
	assert.NotContains(t, view, "커피농장 펀딩", "withdrawals are gone after switching to deposits")
}

func TestModel_ModalSwallowsKeys(t *testing.T) {
	fetcher := testutil.NewFakeFetcher(testutil.SampleHistory())
	m := start(t, newTestModel(t, fetcher, WithStartTab(TabMy)))

	m = drive(t, m, keyRunes("f"))
	require.Equal(t, ModalFilter, m.Modal())

	m = drive(t, m, keyRunes("q"))
	assert.False(t, m.quitting)
	assert.Equal(t, ModalNone, m.Modal())
	assert.Len(t, fetcher.Calls(), 1, "closing without a choice does not refetch")
}

func TestModel_ExternalFilterChange(t *testing.T) {
	fetcher := testutil.NewFakeFetcher(testutil.SampleHistory())
	store := uistate.NewStore()
	m := start(t, newTestModel(t, fetcher, WithStore(store), WithStartTab(TabMy)))

	store.SetFilter(model.FilterWithdrawal)
	m = drive(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	calls := fetcher.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, model.FilterWithdrawal, calls[1].Filter)
	assert.Contains(t, m.View(), "출금 ▾")
}

func TestModel_Search(t *testing.T) {
	fetcher := testutil.NewFakeFetcher(testutil.SampleHistory())
	store := uistate.NewStore()
	m := start(t, newTestModel(t, fetcher, WithStore(store), WithStartTab(TabMy)))

	m = drive(t, m, keyRunes("/"))
	require.Equal(t, ModalSearch, m.Modal())
	assert.True(t, store.SearchModal())

	for _, r := range "농장" {
		m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, ModalNone, m.Modal())
	assert.False(t, store.SearchModal())
	assert.Equal(t, "농장", m.history.Query())
	assert.Equal(t, 2, m.history.Sections().RecordCount())
	assert.Len(t, fetcher.Calls(), 1, "search filters locally")

	view := m.View()
	assert.Contains(t, view, "🔍 농장")
	assert.NotContains(t, view, "홍길동")
}

func TestModel_FailureKeepsStaleView(t *testing.T) {
	fetcher := testutil.NewFakeFetcher(testutil.SampleHistory())
	m := start(t, newTestModel(t, fetcher, WithStartTab(TabMy)))

	fetcher.FailNext(model.FilterAll, fmt.Errorf("%w: connection refused", common.ErrNetwork))
	m = drive(t, m, keyRunes("r"))

	assert.Len(t, fetcher.Calls(), 2)
	view := m.View()
	assert.Contains(t, view, "네트워크 오류")
	assert.Contains(t, view, "홍길동")
}

func TestModel_FailureClearPolicy(t *testing.T) {
	fetcher := testutil.NewFakeFetcher(testutil.SampleHistory())
	m := start(t, newTestModel(t, fetcher,
		WithStartTab(TabMy),
		WithFailurePolicy(history.PolicyClear, service.RetryOptions{})))

	fetcher.FailNext(model.FilterAll, fmt.Errorf("%w: status 500", common.ErrServer))
	m = drive(t, m, keyRunes("r"))

	view := m.View()
	assert.Contains(t, view, "서버 오류")
	assert.NotContains(t, view, "홍길동")
	assert.Equal(t, 0, m.history.Sections().RecordCount())
}

func TestModel_FirstFetchFailsWithoutView(t *testing.T) {
	fetcher := testutil.NewFakeFetcher(nil)
	fetcher.FailNext(model.FilterAll, fmt.Errorf("%w: status 404", common.ErrAccountNotFound))
	m := start(t, newTestModel(t, fetcher, WithStartTab(TabMy)))

	view := m.View()
	assert.Contains(t, view, "계좌를 찾을 수 없습니다")
	assert.NotContains(t, view, components.EmptyHistoryText)
}

func TestModel_EmptyHistory(t *testing.T) {
	fetcher := testutil.NewFakeFetcher(nil)
	m := start(t, newTestModel(t, fetcher, WithStartTab(TabMy)))

	assert.Contains(t, m.View(), components.EmptyHistoryText)
}

func TestModel_SupersededResultIgnored(t *testing.T) {
	fetcher := testutil.NewFakeFetcher(testutil.SampleHistory())
	m := newTestModel(t, fetcher)
	m.tab = TabMy
	m.history.SetLoading(true)

	m, cmd := step(t, m, historyLoadedMsg{err: history.ErrSuperseded})
	assert.Nil(t, collect(cmd))
	assert.True(t, m.history.Loading(), "still waiting for the newer request")
}

func TestModel_ReloadBeforeRefresh(t *testing.T) {
	fetcher := testutil.NewFakeFetcher(testutil.SampleHistory())
	m := newTestModel(t, fetcher)
	m.tab = TabMy

	m = drive(t, m, keyRunes("r"))
	assert.Len(t, fetcher.Calls(), 1)
	assert.Contains(t, m.View(), "홍길동")
}

func TestModel_SavesSnapshot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fetcher := testutil.NewFakeFetcher(testutil.SampleHistory())
	start(t, newTestModel(t, fetcher, WithSnapshots(db.Storage), WithStartTab(TabMy)))

	snapshot, err := db.Storage.LoadSnapshot(context.Background(), testAccount, model.FilterAll)
	require.NoError(t, err)
	assert.Equal(t, testutil.SampleHistory(), snapshot.Records)
}

func TestModel_RestoresSnapshotAfterFailure(t *testing.T) {
	records := testutil.SampleHistory()
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
		Snapshots: []service.Snapshot{{
			AccountCode: testAccount,
			Filter:      model.FilterAll,
			Records:     records,
			FetchedAt:   records[0].Time,
		}},
	})
	fetcher := testutil.NewFakeFetcher(nil)
	fetcher.FailNext(model.FilterAll, fmt.Errorf("%w: timeout", common.ErrNetwork))

	m := start(t, newTestModel(t, fetcher, WithSnapshots(db.Storage), WithStartTab(TabMy)))

	view := m.View()
	assert.Contains(t, view, "홍길동", "stored history is shown")
	assert.Contains(t, view, "네트워크 오류")
}

func TestModel_ClearPolicyIgnoresSnapshot(t *testing.T) {
	records := testutil.SampleHistory()
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
		Snapshots: []service.Snapshot{{
			AccountCode: testAccount,
			Filter:      model.FilterAll,
			Records:     records,
			FetchedAt:   records[0].Time,
		}},
	})
	fetcher := testutil.NewFakeFetcher(nil)
	fetcher.FailNext(model.FilterAll, fmt.Errorf("%w: status 500", common.ErrServer))

	m := start(t, newTestModel(t, fetcher,
		WithSnapshots(db.Storage),
		WithStartTab(TabMy),
		WithFailurePolicy(history.PolicyClear, service.RetryOptions{})))

	view := m.View()
	assert.Contains(t, view, "서버 오류")
	assert.NotContains(t, view, "홍길동")
	assert.Equal(t, 0, m.history.Sections().RecordCount())
}

func TestModel_Quit(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
	}{
		{name: "q", key: keyRunes("q")},
		{name: "ctrl+c", key: tea.KeyMsg{Type: tea.KeyCtrlC}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, testutil.NewFakeFetcher(nil))
			m, cmd := step(t, m, tt.key)
			require.NotNil(t, cmd)
			assert.True(t, m.quitting)
			assert.Empty(t, m.View())
		})
	}
}

func TestModel_Resize(t *testing.T) {
	m := newTestModel(t, testutil.NewFakeFetcher(nil))
	m = drive(t, m, tea.WindowSizeMsg{Width: 60, Height: 30})

	assert.Equal(t, 60, m.width)
	assert.Equal(t, 30, m.height)
	assert.NotEmpty(t, m.View())
}

func TestModel_HelpToggle(t *testing.T) {
	m := newTestModel(t, testutil.NewFakeFetcher(nil))
	assert.False(t, m.help.ShowAll)

	m = drive(t, m, keyRunes("?"))
	assert.True(t, m.help.ShowAll)
	assert.Contains(t, m.View(), "alerts")
}

func TestModel_HiddenHelp(t *testing.T) {
	m := newTestModel(t, testutil.NewFakeFetcher(nil), WithHelp(false))
	assert.NotContains(t, m.View(), "quit")
}

func TestKeyMap_Help(t *testing.T) {
	km := DefaultKeyMap()
	assert.NotEmpty(t, km.ShortHelp())

	total := 0
	for _, group := range km.FullHelp() {
		total += len(group)
	}
	assert.Equal(t, 15, total)
}
