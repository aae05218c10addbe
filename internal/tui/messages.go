package tui

import (
	"github.com/Veraticus/rotto/internal/history"
	"github.com/Veraticus/rotto/internal/service"
)

// historyLoadedMsg carries the outcome of one refresh.
type historyLoadedMsg struct {
	err  error
	view history.View
}

// snapshotLoadedMsg carries the stored last-known-good history, if any.
type snapshotLoadedMsg struct {
	snapshot *service.Snapshot
}

// focusMyMsg opens the history tab once the program is running.
type focusMyMsg struct{}

// Tab is a top-level screen.
type Tab int

// Tabs.
const (
	TabHome Tab = iota
	TabMy
)

func (t Tab) String() string {
	if t == TabMy {
		return "마이"
	}
	return "홈"
}
