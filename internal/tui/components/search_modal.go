package components

import (
	"strings"

	"github.com/Veraticus/rotto/internal/tui/themes"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// SearchModalModel collects a counterparty search query.
type SearchModalModel struct {
	theme themes.Theme
	input textinput.Model
}

// NewSearchModal opens with initial as the editable query.
func NewSearchModal(theme themes.Theme, initial string) SearchModalModel {
	input := textinput.New()
	input.Placeholder = "거래처 이름"
	input.CharLimit = 50
	input.Width = 30
	input.SetValue(initial)
	input.Focus()

	return SearchModalModel{theme: theme, input: input}
}

// Value returns the current query text.
func (m SearchModalModel) Value() string {
	return m.input.Value()
}

// Update handles editing, submission, and dismissal.
func (m SearchModalModel) Update(msg tea.Msg) (SearchModalModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			query := strings.TrimSpace(m.input.Value())
			return m, func() tea.Msg { return SearchSubmittedMsg{Query: query} }
		case "esc":
			return m, func() tea.Msg { return ModalClosedMsg{} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the input box.
func (m SearchModalModel) View() string {
	body := m.theme.Title.Render("거래내역 검색") + "\n\n" +
		m.input.View() + "\n\n" +
		m.theme.Subtitle.Render("enter 검색 · 빈 값은 초기화 · esc 닫기")
	return m.theme.Modal.Render(body)
}
