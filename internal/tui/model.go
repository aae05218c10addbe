package tui

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/Veraticus/rotto/internal/history"
	"github.com/Veraticus/rotto/internal/model"
	"github.com/Veraticus/rotto/internal/tui/components"
	"github.com/Veraticus/rotto/internal/tui/themes"
	"github.com/Veraticus/rotto/internal/uistate"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Modal identifies the overlay in front of the current tab.
type Modal int

// Modals.
const (
	ModalNone Modal = iota
	ModalFilter
	ModalSearch
)

// changeQueue carries store notifications into the update loop. The store
// may be mutated from outside the program, so access is locked.
type changeQueue struct {
	items []uistate.Change
	mu    sync.Mutex
}

func (q *changeQueue) push(c uistate.Change) {
	q.mu.Lock()
	q.items = append(q.items, c)
	q.mu.Unlock()
}

func (q *changeQueue) drain() []uistate.Change {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// Model holds the main TUI state.
type Model struct {
	theme       themes.Theme
	ctx         context.Context
	logger      *slog.Logger
	refresher   *history.Refresher
	store       *uistate.Store
	changes     *changeQueue
	unsubscribe func()
	status      string
	header      components.HeaderModel
	banner      components.BannerModel
	history     components.HistoryModel
	filterModal components.FilterModalModel
	searchModal components.SearchModalModel
	help        help.Model
	config      Config
	keymap      KeyMap
	width       int
	height      int
	tab         Tab
	modal       Modal
	quitting    bool
	restored    bool
}

// newModel creates a new model with the given configuration.
func newModel(ctx context.Context, cfg Config) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "tui")

	if cfg.Location == nil {
		cfg.Location, _ = history.DisplayZone("")
	}
	if cfg.Store == nil {
		cfg.Store = uistate.NewStore()
	}

	queue := &changeQueue{}
	unsubscribe := cfg.Store.Subscribe(queue.push)

	m := Model{
		theme:  cfg.Theme,
		ctx:    ctx,
		logger: logger,
		refresher: history.NewRefresher(cfg.Fetcher, history.Options{
			Location: cfg.Location,
			Logger:   logger,
			Retry:    cfg.Retry,
			Policy:   cfg.Policy,
		}),
		store:       cfg.Store,
		changes:     queue,
		unsubscribe: unsubscribe,
		header:      components.NewHeader(cfg.Theme),
		banner:      components.NewBanner(cfg.Theme, cfg.Banner),
		history:     components.NewHistory(cfg.Theme, cfg.Location),
		help:        help.New(),
		config:      cfg,
		keymap:      DefaultKeyMap(),
		width:       cfg.Width,
		height:      cfg.Height,
		tab:         TabHome,
	}
	m.history.SetFilter(cfg.Store.Filter())
	if cfg.StartTab == TabMy {
		m.tab = TabMy
		m.header.SetMode(components.HeaderSearch)
	}
	m.handleResize()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	if m.tab == TabMy {
		return func() tea.Msg { return focusMyMsg{} }
	}
	return nil
}

// Close detaches the model from the shared store.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	changed := m.applyChanges()
	return m, tea.Batch(cmd, changed)
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case focusMyMsg:
		return m.focusMy()

	case historyLoadedMsg:
		return m.handleHistoryLoaded(msg)

	case snapshotLoadedMsg:
		m.handleSnapshot(msg)
		return nil

	case components.NavigateMsg:
		return m.handleNavigate(msg.Route)

	case components.FilterChosenMsg:
		m.store.SetFilter(msg.Filter)
		m.store.SetFilterModal(false)
		return nil

	case components.SearchSubmittedMsg:
		m.history.SetQuery(msg.Query)
		m.header.SetQuery(msg.Query)
		m.store.SetSearchModal(false)
		return nil

	case components.ModalClosedMsg:
		m.store.SetFilterModal(false)
		m.store.SetSearchModal(false)
		return nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		return cmd
	}

	if m.modal == ModalSearch {
		var cmd tea.Cmd
		m.searchModal, cmd = m.searchModal.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keymap.ForceQuit) {
		m.quitting = true
		return tea.Quit
	}

	var cmd tea.Cmd
	switch m.modal {
	case ModalFilter:
		m.filterModal, cmd = m.filterModal.Update(msg)
		return cmd
	case ModalSearch:
		m.searchModal, cmd = m.searchModal.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.handleResize()
		return nil
	case key.Matches(msg, m.keymap.NextTab):
		if m.tab == TabHome {
			return m.focusMy()
		}
		m.focusHome()
		return nil
	}

	if m.tab == TabHome {
		switch {
		case key.Matches(msg, m.keymap.Alerts):
			return m.handleNavigate(model.RouteAlertList)
		case key.Matches(msg, m.keymap.Profile):
			return m.handleNavigate(model.RouteMyPage)
		}
		m.banner, cmd = m.banner.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, m.keymap.Search):
		m.store.SetSearchModal(true)
		return nil
	case key.Matches(msg, m.keymap.Filter):
		m.store.SetFilterModal(true)
		return nil
	case key.Matches(msg, m.keymap.Reload):
		return m.startReload()
	}

	m.history, cmd = m.history.Update(msg)
	return cmd
}

func (m *Model) handleNavigate(route model.Route) tea.Cmd {
	if route == model.RouteMyPage {
		return m.focusMy()
	}
	m.status = "→ " + string(route)
	m.logger.Debug("Navigating", "route", string(route))
	return m.navigate(route)
}

func (m *Model) focusHome() {
	m.tab = TabHome
	m.header.SetMode(components.HeaderIcons)
}

// focusMy shows the history tab and refreshes it.
func (m *Model) focusMy() tea.Cmd {
	m.tab = TabMy
	m.header.SetMode(components.HeaderSearch)
	m.status = ""

	cmds := []tea.Cmd{m.startRefresh(m.store.Filter())}
	if !m.restored {
		m.restored = true
		cmds = append(cmds, m.loadSnapshot(m.store.Filter()))
	}
	return tea.Batch(cmds...)
}

func (m *Model) startRefresh(filter model.Filter) tea.Cmd {
	return tea.Batch(m.history.SetLoading(true), m.refreshHistory(filter))
}

func (m *Model) startReload() tea.Cmd {
	if m.refresher.Latest() == 0 {
		return m.startRefresh(m.store.Filter())
	}
	return tea.Batch(m.history.SetLoading(true), m.reloadHistory())
}

func (m *Model) handleHistoryLoaded(msg historyLoadedMsg) tea.Cmd {
	// A newer refresh is in flight and will deliver its own result.
	if errors.Is(msg.err, history.ErrSuperseded) {
		return nil
	}

	m.history.SetLoading(false)
	m.history.SetError(msg.err)
	if msg.err == nil || msg.view.RequestID != 0 || !msg.view.FetchedAt.IsZero() {
		m.history.SetView(msg.view)
	}
	return nil
}

func (m *Model) handleSnapshot(msg snapshotLoadedMsg) {
	if msg.snapshot == nil || msg.snapshot.Filter != m.store.Filter() {
		return
	}

	m.refresher.Restore(*msg.snapshot)
	_, view, _ := m.refresher.Current()
	if view.Stale && view.RequestID == 0 {
		m.history.SetView(view)
	}
}

// applyChanges reacts to store mutations made since the last update.
func (m *Model) applyChanges() tea.Cmd {
	var cmds []tea.Cmd
	for _, change := range m.changes.drain() {
		switch change.Field {
		case uistate.FieldFilter:
			m.history.SetFilter(change.Filter)
			if m.tab == TabMy {
				cmds = append(cmds, m.startRefresh(change.Filter))
			}
		case uistate.FieldFilterModal:
			if change.Open {
				m.modal = ModalFilter
				m.filterModal = components.NewFilterModal(m.theme, m.store.Filter())
			} else if m.modal == ModalFilter {
				m.modal = ModalNone
			}
		case uistate.FieldSearchModal:
			if change.Open {
				m.modal = ModalSearch
				m.searchModal = components.NewSearchModal(m.theme, m.history.Query())
			} else if m.modal == ModalSearch {
				m.modal = ModalNone
			}
		}
	}
	return tea.Batch(cmds...)
}

// handleResize adjusts component sizes when terminal resizes.
func (m *Model) handleResize() {
	m.header.Resize(m.width)
	m.banner.Resize(m.width)
	m.help.Width = m.width
	// Header, tab bar, status line, help.
	m.history.Resize(m.width, m.height-m.chromeHeight())
}

func (m Model) chromeHeight() int {
	if m.help.ShowAll {
		return 8
	}
	return 4
}

// Tab returns the visible tab.
func (m Model) Tab() Tab {
	return m.tab
}

// Modal returns the open overlay.
func (m Model) Modal() Modal {
	return m.modal
}
