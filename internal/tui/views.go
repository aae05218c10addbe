package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	body := m.renderBody()
	if overlay := m.renderModal(); overlay != "" {
		body = lipgloss.Place(m.width, lipgloss.Height(body), lipgloss.Center, lipgloss.Center, overlay)
	}

	parts := []string{m.header.View(), m.renderTabs(), body, m.renderStatusBar()}
	if m.config.ShowHelp {
		parts = append(parts, m.help.View(m.keymap))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, 2)
	for _, tab := range []Tab{TabHome, TabMy} {
		if tab == m.tab {
			tabs = append(tabs, m.theme.TabActive.Render(tab.String()))
		} else {
			tabs = append(tabs, m.theme.TabInactive.Render(tab.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderBody() string {
	height := max(m.height-m.chromeHeight(), 1)

	var content string
	if m.tab == TabMy {
		content = m.history.View()
	} else {
		content = m.banner.View()
	}
	return lipgloss.NewStyle().Height(height).MaxHeight(height).Render(content)
}

func (m Model) renderModal() string {
	switch m.modal {
	case ModalFilter:
		return m.filterModal.View()
	case ModalSearch:
		return m.searchModal.View()
	default:
		return ""
	}
}

func (m Model) renderStatusBar() string {
	if m.status == "" {
		return ""
	}
	line := m.theme.StatusInfo.Render(m.status)
	if pad := m.width - lipgloss.Width(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	return line
}
