package tui

import (
	"context"
	"errors"
	"time"

	"github.com/Veraticus/rotto/internal/common"
	"github.com/Veraticus/rotto/internal/history"
	"github.com/Veraticus/rotto/internal/model"
	"github.com/Veraticus/rotto/internal/service"
	tea "github.com/charmbracelet/bubbletea"
)

const snapshotTimeout = 5 * time.Second

// refreshHistory fetches the history for filter. Successful results are
// written to the snapshot store so a later failure can fall back to them.
func (m Model) refreshHistory(filter model.Filter) tea.Cmd {
	ctx, refresher, account := m.ctx, m.refresher, m.config.Account
	saver := m.snapshotSaver()

	return func() tea.Msg {
		view, err := refresher.Refresh(ctx, account, filter)
		if err == nil {
			saver(view)
		}
		return historyLoadedMsg{view: view, err: err}
	}
}

// reloadHistory repeats the most recent refresh.
func (m Model) reloadHistory() tea.Cmd {
	ctx, refresher := m.ctx, m.refresher
	saver := m.snapshotSaver()

	return func() tea.Msg {
		view, err := refresher.Reload(ctx)
		if err == nil {
			saver(view)
		}
		return historyLoadedMsg{view: view, err: err}
	}
}

// loadSnapshot reads the stored history for filter, if any.
func (m Model) loadSnapshot(filter model.Filter) tea.Cmd {
	store, account, logger := m.config.Snapshots, m.config.Account, m.logger
	if store == nil || account == "" {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()

		snapshot, err := store.LoadSnapshot(ctx, account, filter)
		if err != nil {
			if !errors.Is(err, common.ErrNotFound) {
				logger.Warn("Failed to load history snapshot", "error", err)
			}
			return snapshotLoadedMsg{}
		}
		return snapshotLoadedMsg{snapshot: snapshot}
	}
}

func (m Model) snapshotSaver() func(history.View) {
	store, logger := m.config.Snapshots, m.logger
	if store == nil {
		return func(history.View) {}
	}

	return func(view history.View) {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()

		err := store.SaveSnapshot(ctx, service.Snapshot{
			FetchedAt:   view.FetchedAt,
			AccountCode: view.AccountCode,
			Records:     view.Records,
			Filter:      view.Filter,
		})
		if err != nil {
			logger.Warn("Failed to save history snapshot", "error", err)
		}
	}
}

// navigate hands route to the configured navigator.
func (m Model) navigate(route model.Route) tea.Cmd {
	nav := m.config.Navigator
	if nav == nil {
		return nil
	}
	return func() tea.Msg {
		nav.Navigate(route)
		return nil
	}
}
