package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Veraticus/rotto/internal/common"
	"github.com/Veraticus/rotto/internal/history"
	"github.com/charmbracelet/lipgloss"
)

// EmptyHistoryText is printed for a listing without records.
const EmptyHistoryText = "거래내역이 없습니다."

// OutputFormat selects how history is printed.
type OutputFormat string

// Output formats.
const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --format flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText, "table":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: output format %q must be text or json", common.ErrInvalidConfig, s)
	}
}

// HistoryReport is one rendered history listing.
type HistoryReport struct {
	// Day limits the listing to one display day when non-zero.
	Day      time.Time
	Location *time.Location
	Query    string
	View     history.View
}

func (r HistoryReport) sections() history.Buckets {
	sections := r.View.Sections.Search(r.Query)
	if r.Day.IsZero() {
		return sections
	}
	section, ok := sections.Lookup(history.DayLabel(r.Day, r.Location))
	if !ok {
		return history.Buckets{}
	}
	return history.Buckets{section}
}

// RenderHistory writes the report in the requested format.
func RenderHistory(w io.Writer, report HistoryReport, format OutputFormat) error {
	if report.Location == nil {
		report.Location, _ = history.DisplayZone("")
	}
	switch format {
	case FormatJSON:
		return renderHistoryJSON(w, report)
	default:
		return renderHistoryText(w, report)
	}
}

func renderHistoryText(w io.Writer, report HistoryReport) error {
	view := report.View
	sections := report.sections()

	var b strings.Builder
	title := fmt.Sprintf("거래내역 · %s", view.Filter.Label())
	if view.AccountCode != "" {
		title += " · " + view.AccountCode
	}
	b.WriteString(FormatTitle(title))
	b.WriteString("\n")

	if view.Stale {
		b.WriteString(FormatWarning(fmt.Sprintf("저장된 내역 (%s 기준)",
			view.FetchedAt.In(report.Location).Format("2006-01-02 15:04"))))
		b.WriteString("\n")
	}
	if report.Query != "" {
		b.WriteString(FormatInfo(fmt.Sprintf("'%s' 검색 결과", report.Query)))
		b.WriteString("\n")
	}

	if len(sections) == 0 {
		b.WriteString(SubtleStyle.Render(EmptyHistoryText))
		b.WriteString("\n")
		if !report.Day.IsZero() && len(view.Sections) > 0 {
			b.WriteString(FormatInfo("조회 가능한 날짜: " + strings.Join(view.Sections.Labels(), ", ")))
			b.WriteString("\n")
		}
		_, err := io.WriteString(w, b.String())
		return err
	}

	width := counterpartyWidth(sections)
	var deposits, withdrawals int64
	for _, section := range sections {
		b.WriteString("\n")
		b.WriteString(DayStyle.Render(section.Label))
		b.WriteString("\n")
		for _, r := range section.Records {
			amount := history.FormatRecordAmount(r)
			style := WithdrawalStyle
			if r.IsDeposit() {
				style = DepositStyle
				deposits += r.Amount
			} else {
				withdrawals += r.Amount
			}
			name := r.Counterparty + strings.Repeat(" ", width-lipgloss.Width(r.Counterparty))
			fmt.Fprintf(&b, "  %s  %s  %s  %s\n",
				SubtleStyle.Render(history.TimeLabel(r.Time, report.Location)),
				WonIcon, name, style.Render(amount))
		}
	}

	b.WriteString("\n")
	b.WriteString(SubtleStyle.Render(fmt.Sprintf("%d건 · 입금 %s 원 · 출금 %s 원",
		sections.RecordCount(), history.FormatNumber(deposits), history.FormatNumber(withdrawals))))
	b.WriteString("\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

func counterpartyWidth(sections history.Buckets) int {
	width := 0
	for _, r := range sections.Flatten() {
		width = max(width, lipgloss.Width(r.Counterparty))
	}
	return width
}

type jsonRecord struct {
	ID           string    `json:"id"`
	Time         time.Time `json:"time"`
	TimeLabel    string    `json:"time_label"`
	Counterparty string    `json:"counterparty"`
	Direction    string    `json:"direction"`
	Display      string    `json:"display"`
	Amount       int64     `json:"amount"`
}

type jsonDay struct {
	Label       string       `json:"label"`
	Date        string       `json:"date"`
	Deposits    string       `json:"deposits"`
	Withdrawals string       `json:"withdrawals"`
	Records     []jsonRecord `json:"records"`
}

type jsonHistory struct {
	FetchedAt time.Time `json:"fetched_at"`
	Account   string    `json:"account"`
	Filter    string    `json:"filter"`
	Query     string    `json:"query,omitempty"`
	Days      []jsonDay `json:"days"`
	Stale     bool      `json:"stale"`
}

func renderHistoryJSON(w io.Writer, report HistoryReport) error {
	view := report.View
	out := jsonHistory{
		FetchedAt: view.FetchedAt,
		Account:   view.AccountCode,
		Filter:    view.Filter.String(),
		Query:     report.Query,
		Stale:     view.Stale,
		Days:      []jsonDay{},
	}

	for _, section := range report.sections() {
		totals := section.Totals()
		day := jsonDay{
			Label:       section.Label,
			Date:        section.Day.Format("2006-01-02"),
			Deposits:    totals.Deposits.String(),
			Withdrawals: totals.Withdrawals.String(),
			Records:     make([]jsonRecord, 0, len(section.Records)),
		}
		for _, r := range section.Records {
			day.Records = append(day.Records, jsonRecord{
				ID:           r.Key(),
				Time:         r.Time,
				TimeLabel:    history.TimeLabel(r.Time, report.Location),
				Counterparty: r.Counterparty,
				Direction:    strings.ToLower(string(r.Direction)),
				Display:      history.FormatRecordAmount(r),
				Amount:       r.Amount,
			})
		}
		out.Days = append(out.Days, day)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	return nil
}
