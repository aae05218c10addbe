package components

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/rotto/internal/history"
	"github.com/Veraticus/rotto/internal/model"
	"github.com/Veraticus/rotto/internal/tui/themes"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// EmptyHistoryText is shown when a listing has no records.
const EmptyHistoryText = "거래내역이 없습니다."

// HistoryModel shows the day-grouped transaction history.
type HistoryModel struct {
	theme    themes.Theme
	err      error
	loc      *time.Location
	query    string
	view     history.View
	shown    history.Buckets
	spinner  spinner.Model
	viewport viewport.Model
	width    int
	height   int
	filter   model.Filter
	loading  bool
	loaded   bool
}

// NewHistory creates an empty history view rendering days in loc.
func NewHistory(theme themes.Theme, loc *time.Location) HistoryModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.Primary)

	m := HistoryModel{
		theme:    theme,
		loc:      loc,
		spinner:  s,
		viewport: viewport.New(80, 20),
		width:    80,
		height:   24,
	}
	m.refreshContent()
	return m
}

// SetFilter updates the filter chip.
func (m *HistoryModel) SetFilter(filter model.Filter) {
	m.filter = filter
}

// Filter returns the filter shown on the chip.
func (m HistoryModel) Filter() model.Filter {
	return m.filter
}

// SetLoading toggles the spinner. Starting returns the first tick.
func (m *HistoryModel) SetLoading(loading bool) tea.Cmd {
	wasLoading := m.loading
	m.loading = loading
	if loading && !wasLoading {
		return m.spinner.Tick
	}
	return nil
}

// Loading reports whether a fetch is in flight.
func (m HistoryModel) Loading() bool {
	return m.loading
}

// SetView replaces the displayed listing.
func (m *HistoryModel) SetView(v history.View) {
	m.view = v
	m.loaded = true
	m.refreshContent()
	m.viewport.GotoTop()
}

// SetError records the latest failure; nil clears it.
func (m *HistoryModel) SetError(err error) {
	m.err = err
}

// SetQuery narrows the listing to counterparties containing query.
func (m *HistoryModel) SetQuery(query string) {
	m.query = query
	m.refreshContent()
	m.viewport.GotoTop()
}

// Query returns the active search query.
func (m HistoryModel) Query() string {
	return m.query
}

// Sections returns the sections currently rendered.
func (m HistoryModel) Sections() history.Buckets {
	return m.shown
}

// Resize sets the available area.
func (m *HistoryModel) Resize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	// Chip (3 lines) and status line.
	m.viewport.Height = max(height-4, 1)
	m.refreshContent()
}

// Update handles scrolling and the spinner.
func (m HistoryModel) Update(msg tea.Msg) (HistoryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		switch msg.String() {
		case "home", "g":
			m.viewport.GotoTop()
			return m, nil
		case "end", "G":
			m.viewport.GotoBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the chip, the status line, and the sections.
func (m HistoryModel) View() string {
	chip := m.theme.Chip.Render(m.filter.Label() + " ▾")
	hint := m.theme.Subtitle.Render("  f 필터 · r 새로고침")
	top := lipgloss.JoinHorizontal(lipgloss.Center, chip, hint)

	return lipgloss.JoinVertical(lipgloss.Left, top, m.statusLine(), m.viewport.View())
}

func (m HistoryModel) statusLine() string {
	switch {
	case m.loading:
		return m.spinner.View() + m.theme.StatusPending.Render(" 불러오는 중...")
	case m.err != nil:
		return m.theme.StatusError.Render("⚠ " + describeError(m.err))
	case m.view.Stale:
		return m.theme.StatusWarning.Render(fmt.Sprintf("⚠ 저장된 내역 (%s 기준)",
			m.view.FetchedAt.In(m.loc).Format("01/02 15:04")))
	case m.query != "":
		return m.theme.StatusInfo.Render(fmt.Sprintf("'%s' 검색 결과 %d건", m.query, m.shown.RecordCount()))
	case m.loaded:
		return m.theme.Subtitle.Render(fmt.Sprintf("%d건", m.view.Sections.RecordCount()))
	default:
		return ""
	}
}

func (m *HistoryModel) refreshContent() {
	m.shown = m.view.Sections.Search(m.query)
	m.viewport.SetContent(m.renderSections())
}

func (m HistoryModel) renderSections() string {
	if !m.loaded {
		return ""
	}
	if len(m.shown) == 0 {
		return m.theme.Subtitle.Render(EmptyHistoryText)
	}

	var b strings.Builder
	for i, section := range m.shown {
		if i > 0 {
			b.WriteString("\n")
		}
		totals := section.Totals()
		b.WriteString(m.theme.DayHeader.Render(section.Label))
		b.WriteString(m.theme.Subtitle.Render(fmt.Sprintf("  입금 %s · 출금 %s",
			history.FormatNumber(totals.Deposits.IntPart()),
			history.FormatNumber(totals.Withdrawals.IntPart()))))
		b.WriteString("\n")
		for _, r := range section.Records {
			b.WriteString(m.renderRecord(r))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m HistoryModel) renderRecord(r model.TransactionRecord) string {
	amountStyle := m.theme.Withdrawal
	if r.IsDeposit() {
		amountStyle = m.theme.Deposit
	}
	amount := amountStyle.Render(history.FormatRecordAmount(r))
	left := "  ₩ " + m.theme.Bold.Render(r.Counterparty) + "  " +
		m.theme.Subtitle.Render(history.TimeLabel(r.Time, m.loc))

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(amount), 2)
	return left + strings.Repeat(" ", gap) + amount
}

func describeError(err error) string {
	var fetchErr *history.FetchError
	if !errors.As(err, &fetchErr) {
		return err.Error()
	}
	switch fetchErr.Kind {
	case history.KindNotFound:
		return "계좌를 찾을 수 없습니다"
	case history.KindUnauthorized:
		return "로그인이 필요합니다"
	case history.KindServer:
		return "서버 오류로 내역을 불러오지 못했습니다"
	case history.KindDecode:
		return "응답을 해석하지 못했습니다"
	case history.KindCanceled:
		return "요청이 취소되었습니다"
	default:
		return "네트워크 오류로 내역을 불러오지 못했습니다"
	}
}
