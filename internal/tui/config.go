package tui

import (
	"log/slog"
	"time"

	"github.com/Veraticus/rotto/internal/history"
	"github.com/Veraticus/rotto/internal/service"
	"github.com/Veraticus/rotto/internal/tui/components"
	"github.com/Veraticus/rotto/internal/tui/themes"
	"github.com/Veraticus/rotto/internal/uistate"
)

// Config holds TUI configuration.
type Config struct {
	Theme     themes.Theme
	Fetcher   service.HistoryFetcher
	Snapshots service.SnapshotStore
	Navigator service.Navigator
	Store     *uistate.Store
	Location  *time.Location
	Logger    *slog.Logger
	Account   string
	Banner    []components.BannerPage
	Retry     service.RetryOptions
	Policy    history.Policy
	Width     int
	Height    int
	StartTab  Tab
	ShowHelp  bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:    themes.Default,
		Banner:   components.DefaultBannerPages,
		Width:    80,
		Height:   24,
		StartTab: TabHome,
		ShowHelp: true,
	}
}

// WithFetcher sets the history source.
func WithFetcher(fetcher service.HistoryFetcher) Option {
	return func(c *Config) {
		c.Fetcher = fetcher
	}
}

// WithSnapshots enables last-known-good history restore and save.
func WithSnapshots(store service.SnapshotStore) Option {
	return func(c *Config) {
		c.Snapshots = store
	}
}

// WithNavigator receives routes the TUI does not render itself.
func WithNavigator(nav service.Navigator) Option {
	return func(c *Config) {
		c.Navigator = nav
	}
}

// WithStore shares a UI state store with the caller.
func WithStore(store *uistate.Store) Option {
	return func(c *Config) {
		c.Store = store
	}
}

// WithAccount sets the funding account whose history is shown.
func WithAccount(code string) Option {
	return func(c *Config) {
		c.Account = code
	}
}

// WithLocation sets the zone used for day grouping and times.
func WithLocation(loc *time.Location) Option {
	return func(c *Config) {
		c.Location = loc
	}
}

// WithFailurePolicy sets what the history shows after a failed fetch.
func WithFailurePolicy(policy history.Policy, retry service.RetryOptions) Option {
	return func(c *Config) {
		c.Policy = policy
		c.Retry = retry
	}
}

// WithLogger sets the logger. The TUI owns the terminal, so it should not write to stdout.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithStartTab picks the tab shown first.
func WithStartTab(tab Tab) Option {
	return func(c *Config) {
		c.StartTab = tab
	}
}

// WithBanner replaces the carousel pages.
func WithBanner(pages []components.BannerPage) Option {
	return func(c *Config) {
		c.Banner = pages
	}
}

// WithHelp shows or hides the key help footer.
func WithHelp(show bool) Option {
	return func(c *Config) {
		c.ShowHelp = show
	}
}
