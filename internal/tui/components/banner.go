package components

import (
	"math"
	"strings"

	"github.com/Veraticus/rotto/internal/model"
	"github.com/Veraticus/rotto/internal/tui/themes"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// BannerPage is one promotional page.
type BannerPage struct {
	Title    string
	Subtitle string
	Color    lipgloss.Color
}

// DefaultBannerPages are the pages shown on the home screen.
var DefaultBannerPages = []BannerPage{
	{Title: "커피농장 투자", Subtitle: "시작해볼까요?", Color: lipgloss.Color("#209FF9")},
	{Title: "커피농장 투자", Subtitle: "시작해볼까요?", Color: lipgloss.Color("#C3A995")},
	{Title: "커피농장 투자", Subtitle: "시작해볼까요?", Color: lipgloss.Color("#4E4E4E")},
}

// PageIndex maps a horizontal scroll offset to the page under it:
// offset/width rounded to the nearest page and clamped to [0, pages-1].
func PageIndex(offset, width, pages int) int {
	if width <= 0 || pages <= 0 {
		return 0
	}
	idx := int(math.Round(float64(offset) / float64(width)))
	return min(max(idx, 0), pages-1)
}

// BannerModel is a paged horizontal carousel.
type BannerModel struct {
	theme  themes.Theme
	pages  []BannerPage
	offset int
	width  int
}

// NewBanner creates a carousel over pages.
func NewBanner(theme themes.Theme, pages []BannerPage) BannerModel {
	return BannerModel{theme: theme, pages: pages, width: 40}
}

// Current returns the index of the page in view.
func (m BannerModel) Current() int {
	return PageIndex(m.offset, m.width, len(m.pages))
}

// Offset returns the scroll offset in cells.
func (m BannerModel) Offset() int {
	return m.offset
}

// ScrollTo moves the carousel, clamped to its content.
func (m *BannerModel) ScrollTo(offset int) {
	limit := max(len(m.pages)-1, 0) * m.width
	m.offset = min(max(offset, 0), limit)
}

// Resize changes the page width and keeps the current page in view.
func (m *BannerModel) Resize(width int) {
	if width <= 0 {
		return
	}
	page := m.Current()
	m.width = width
	m.offset = page * width
}

// Update handles paging and selection keys.
func (m BannerModel) Update(msg tea.Msg) (BannerModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "left", "h":
		m.ScrollTo((m.Current() - 1) * m.width)
	case "right", "l":
		m.ScrollTo((m.Current() + 1) * m.width)
	case "enter":
		return m, func() tea.Msg { return NavigateMsg{Route: model.RouteAnnouncement} }
	}
	return m, nil
}

// View renders the visible page and the indicator dots.
func (m BannerModel) View() string {
	if len(m.pages) == 0 {
		return ""
	}
	page := m.pages[m.Current()]

	card := lipgloss.NewStyle().
		Background(page.Color).
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true).
		Width(max(m.width-2, 10)).
		Height(5).
		Align(lipgloss.Center, lipgloss.Center).
		Render(page.Title + "\n" + page.Subtitle)

	dots := make([]string, len(m.pages))
	for i := range m.pages {
		if i == m.Current() {
			dots[i] = lipgloss.NewStyle().Foreground(m.theme.Primary).Render("●")
		} else {
			dots[i] = lipgloss.NewStyle().Foreground(m.theme.Muted).Render("○")
		}
	}
	indicator := lipgloss.PlaceHorizontal(lipgloss.Width(card), lipgloss.Center, strings.Join(dots, " "))

	return lipgloss.JoinVertical(lipgloss.Left, card, indicator)
}
