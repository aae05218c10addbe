package components

import (
	"strings"

	"github.com/Veraticus/rotto/internal/model"
	"github.com/Veraticus/rotto/internal/tui/themes"
	tea "github.com/charmbracelet/bubbletea"
)

// FilterModalModel lets the user pick a history filter.
type FilterModalModel struct {
	theme   themes.Theme
	cursor  int
	current model.Filter
}

// NewFilterModal opens with the cursor on current.
func NewFilterModal(theme themes.Theme, current model.Filter) FilterModalModel {
	m := FilterModalModel{theme: theme, current: current}
	for i, f := range model.AllFilters {
		if f == current {
			m.cursor = i
		}
	}
	return m
}

// Cursor returns the highlighted filter.
func (m FilterModalModel) Cursor() model.Filter {
	return model.AllFilters[m.cursor]
}

// Update handles navigation and selection.
func (m FilterModalModel) Update(msg tea.Msg) (FilterModalModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, len(model.AllFilters)-1)
	case "1", "2", "3":
		m.cursor = int(keyMsg.Runes[0] - '1')
		fallthrough
	case "enter":
		chosen := model.AllFilters[m.cursor]
		return m, func() tea.Msg { return FilterChosenMsg{Filter: chosen} }
	case "esc", "q":
		return m, func() tea.Msg { return ModalClosedMsg{} }
	}
	return m, nil
}

// View renders the option list.
func (m FilterModalModel) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("거래 구분"))
	b.WriteString("\n\n")

	for i, f := range model.AllFilters {
		label := f.Label()
		if f == m.current {
			label += " ✓"
		}
		if i == m.cursor {
			b.WriteString(m.theme.Selected.Render("▸ " + label))
		} else {
			b.WriteString(m.theme.Normal.Render("  " + label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.Subtitle.Render("enter 선택 · esc 닫기"))
	return m.theme.Modal.Render(b.String())
}
