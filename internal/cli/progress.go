package cli

import (
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
)

// Spinner shows an indeterminate progress indicator while a request runs.
type Spinner struct {
	bar *progressbar.ProgressBar
}

// NewSpinner starts a spinner with description on w.
func NewSpinner(w io.Writer, description string) *Spinner {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionClearOnFinish(),
	)
	if err := bar.RenderBlank(); err != nil {
		slog.Warn("Failed to render spinner", "error", err)
	}
	return &Spinner{bar: bar}
}

// Describe replaces the spinner text, e.g. between retry attempts.
func (s *Spinner) Describe(description string) {
	s.bar.Describe("[cyan]" + description + "[reset]")
}

// Stop clears the spinner line.
func (s *Spinner) Stop() {
	if err := s.bar.Finish(); err != nil {
		slog.Warn("Failed to stop spinner", "error", err)
	}
}
