package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Veraticus/rotto/internal/common"
	"golang.org/x/term"
)

// Prompter asks the user for input on a terminal or a piped stream.
type Prompter struct {
	writer io.Writer
	lines  *LineReader
	// secret reads without echo; nil when input is not a terminal.
	secret func() ([]byte, error)
}

// NewPrompter creates a prompter. Passwords are read without echo when
// reader is a terminal.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stderr
	}

	p := &Prompter{
		writer: writer,
		lines:  NewLineReader(reader),
	}
	if f, ok := reader.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		p.secret = func() ([]byte, error) { return term.ReadPassword(fd) }
	}
	return p
}

// Ask prompts until a non-empty answer is given.
func (p *Prompter) Ask(ctx context.Context, prompt string) (string, error) {
	for {
		if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		answer, err := p.lines.ReadLine(ctx)
		if err != nil {
			return "", p.readError(err)
		}
		if answer != "" {
			return answer, nil
		}

		if _, err := fmt.Fprintln(p.writer, FormatError("A value is required.")); err != nil {
			return "", fmt.Errorf("failed to write error message: %w", err)
		}
	}
}

// AskSecret prompts for a value that should not be echoed.
func (p *Prompter) AskSecret(ctx context.Context, prompt string) (string, error) {
	if p.secret == nil {
		return p.Ask(ctx, prompt)
	}

	for {
		if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		raw, err := p.secret()
		if _, werr := fmt.Fprintln(p.writer); werr != nil {
			return "", fmt.Errorf("failed to write newline: %w", werr)
		}
		if err != nil {
			return "", p.readError(err)
		}
		if answer := strings.TrimSpace(string(raw)); answer != "" {
			return answer, nil
		}
		if err := ctx.Err(); err != nil {
			return "", p.readError(ErrInputCanceled)
		}

		if _, err := fmt.Fprintln(p.writer, FormatError("A value is required.")); err != nil {
			return "", fmt.Errorf("failed to write error message: %w", err)
		}
	}
}

// Confirm asks a yes/no question. An empty answer means no.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	for {
		if _, err := fmt.Fprint(p.writer, FormatPrompt(question+" [y/N]")); err != nil {
			return false, fmt.Errorf("failed to write prompt: %w", err)
		}

		answer, err := p.lines.ReadLine(ctx)
		if err != nil {
			return false, p.readError(err)
		}

		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		}

		if _, err := fmt.Fprintln(p.writer, FormatError("Please answer y or n.")); err != nil {
			return false, fmt.Errorf("failed to write error message: %w", err)
		}
	}
}

// Credentials asks for the login phone number and password.
func (p *Prompter) Credentials(ctx context.Context) (phoneNum, password string, err error) {
	phoneNum, err = p.Ask(ctx, "Phone number")
	if err != nil {
		return "", "", err
	}
	password, err = p.AskSecret(ctx, LockIcon+" Password")
	if err != nil {
		return "", "", err
	}
	return phoneNum, password, nil
}

func (p *Prompter) readError(err error) error {
	switch {
	case errors.Is(err, ErrInputCanceled):
		return common.NewUserError("input canceled", err)
	case errors.Is(err, io.EOF):
		return common.NewUserError("input ended before an answer was given", err)
	default:
		return fmt.Errorf("failed to read input: %w", err)
	}
}
