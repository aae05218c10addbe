// Package splash decides which screen follows the splash screen.
package splash

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/rotto/internal/common"
	"github.com/Veraticus/rotto/internal/model"
	"github.com/Veraticus/rotto/internal/service"
)

// DefaultDelay is how long the splash stays up before the token check.
const DefaultDelay = 2 * time.Second

// Checker routes to the main screen when usable tokens are stored and to
// onboarding otherwise.
type Checker struct {
	Tokens service.TokenStore
	Logger *slog.Logger
	// Navigator, when set, is told the chosen route.
	Navigator service.Navigator
	Delay     time.Duration
}

// Run waits for the delay, checks the stored tokens, and returns the next route.
// A canceled context ends the wait and returns RouteNone with the context error.
func (c *Checker) Run(ctx context.Context) (model.Route, error) {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "splash")

	if c.Delay > 0 {
		timer := time.NewTimer(c.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return model.RouteNone, ctx.Err()
		case <-timer.C:
		}
	}

	route, err := c.decide(ctx)
	if err != nil {
		logger.Error("Token check failed", "error", err)
		return model.RouteNone, err
	}

	logger.Debug("Splash finished", "route", string(route))
	if c.Navigator != nil {
		c.Navigator.Navigate(route)
	}
	return route, nil
}

func (c *Checker) decide(ctx context.Context) (model.Route, error) {
	if c.Tokens == nil {
		return model.RouteOnboarding, nil
	}

	tokens, err := c.Tokens.LoadTokens(ctx)
	if errors.Is(err, common.ErrNotFound) {
		return model.RouteOnboarding, nil
	}
	if err != nil {
		return model.RouteNone, fmt.Errorf("failed to load tokens: %w", err)
	}

	if tokens.Usable() {
		return model.RouteMain, nil
	}
	return model.RouteOnboarding, nil
}
