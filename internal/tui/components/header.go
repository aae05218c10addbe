package components

import (
	"strings"

	"github.com/Veraticus/rotto/internal/tui/themes"
	"github.com/charmbracelet/lipgloss"
)

// HeaderMode selects which actions the header shows.
type HeaderMode int

// Header modes.
const (
	// HeaderIcons shows the notification and profile shortcuts.
	HeaderIcons HeaderMode = iota
	// HeaderSearch shows the search action.
	HeaderSearch
)

// Logo is the header title.
const Logo = "☕ ROTTO"

// HeaderModel renders the top bar.
type HeaderModel struct {
	theme themes.Theme
	query string
	mode  HeaderMode
	width int
}

// NewHeader creates a header in icon mode.
func NewHeader(theme themes.Theme) HeaderModel {
	return HeaderModel{theme: theme, width: 80}
}

// SetMode switches between icon and search actions.
func (m *HeaderModel) SetMode(mode HeaderMode) {
	m.mode = mode
}

// Mode returns the current mode.
func (m HeaderModel) Mode() HeaderMode {
	return m.mode
}

// SetQuery shows the active search query next to the search action.
func (m *HeaderModel) SetQuery(query string) {
	m.query = query
}

// Resize sets the rendered width.
func (m *HeaderModel) Resize(width int) {
	m.width = width
}

// Actions lists the action labels in display order.
func (m HeaderModel) Actions() []string {
	if m.mode == HeaderSearch {
		if m.query != "" {
			return []string{"🔍 " + m.query}
		}
		return []string{"🔍 검색 (/)"}
	}
	return []string{"🔔 알림 (a)", "👤 마이 (p)"}
}

// View renders the header.
func (m HeaderModel) View() string {
	actions := strings.Join(m.Actions(), "  ")
	// HeaderBar pads one cell on each side.
	inner := max(m.width-2, 0)
	gap := max(inner-lipgloss.Width(Logo)-lipgloss.Width(actions), 1)
	return m.theme.HeaderBar.Render(Logo + strings.Repeat(" ", gap) + actions)
}
