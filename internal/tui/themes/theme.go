// Package themes holds the color palettes used by the terminal UI.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Selected      lipgloss.Style
	Chip          lipgloss.Style
	DayHeader     lipgloss.Style
	Deposit       lipgloss.Style
	Withdrawal    lipgloss.Style
	HeaderBar     lipgloss.Style
	TabActive     lipgloss.Style
	TabInactive   lipgloss.Style
	RoundedBox    lipgloss.Style
	Modal         lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusPending lipgloss.Style
	Primary       lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	Foreground    lipgloss.Color
	Background    lipgloss.Color
	Error         lipgloss.Color
	Warning       lipgloss.Color
	Success       lipgloss.Color
}

// Default is the roasted-orange theme of the mobile app.
var Default = newTheme(palette{
	primary:    "#F26B1D",
	muted:      "#8C8C8C",
	border:     "#4A4A4A",
	foreground: "#FAFAFA",
	background: "#1A1A1A",
	deposit:    "#209FF9",
	withdrawal: "#EF4444",
	warning:    "#F59E0B",
	success:    "#10B981",
})

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = newTheme(palette{
	primary:    "#FAB387",
	muted:      "#6C7086",
	border:     "#45475A",
	foreground: "#CDD6F4",
	background: "#1E1E2E",
	deposit:    "#89B4FA",
	withdrawal: "#F38BA8",
	warning:    "#F9E2AF",
	success:    "#A6E3A1",
})

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}

type palette struct {
	primary, muted, border, foreground, background string
	deposit, withdrawal, warning, success          string
}

func newTheme(p palette) Theme {
	primary := lipgloss.Color(p.primary)
	muted := lipgloss.Color(p.muted)
	border := lipgloss.Color(p.border)
	fg := lipgloss.Color(p.foreground)

	return Theme{
		Primary:    primary,
		Muted:      muted,
		Border:     border,
		Foreground: fg,
		Background: lipgloss.Color(p.background),
		Error:      lipgloss.Color(p.withdrawal),
		Warning:    lipgloss.Color(p.warning),
		Success:    lipgloss.Color(p.success),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(fg),
		Subtitle: lipgloss.NewStyle().
			Foreground(muted),
		Normal: lipgloss.NewStyle().
			Foreground(fg),
		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(fg),
		Selected: lipgloss.NewStyle().
			Background(primary).
			Foreground(fg).
			Bold(true),
		Chip: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1),
		DayHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(muted).
			MarginTop(1),
		Deposit: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.deposit)).
			Bold(true),
		Withdrawal: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.withdrawal)).
			Bold(true),
		HeaderBar: lipgloss.NewStyle().
			Background(primary).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1),
		TabActive: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true).
			Underline(true),
		TabInactive: lipgloss.NewStyle().
			Foreground(muted),
		RoundedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(1, 2),
		StatusInfo: lipgloss.NewStyle().
			Foreground(fg),
		StatusError: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.withdrawal)).
			Bold(true),
		StatusWarning: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.warning)).
			Bold(true),
		StatusPending: lipgloss.NewStyle().
			Foreground(muted).
			Italic(true),
	}
}
