package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/rotto/internal/cli"
	"github.com/Veraticus/rotto/internal/model"
	"github.com/Veraticus/rotto/internal/splash"
	"github.com/spf13/cobra"
)

func splashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "splash",
		Short: "Show the splash screen and decide where to go next",
		Long: `Wait for the splash delay, then check the stored tokens. Prints the next
route: Routers when a real token pair is stored, Onboarding otherwise.`,
		RunE: runSplash,
	}

	cmd.Flags().Duration("delay", -1, "override splash.delay")

	return cmd
}

func runSplash(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	delay := cfg.Splash.Delay
	if override, _ := cmd.Flags().GetDuration("delay"); override >= 0 {
		delay = override
	}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintln(out, cli.FormatTitle("ROTTO")); err != nil {
		return fmt.Errorf("failed to write splash: %w", err)
	}

	var spinner *cli.Spinner
	if delay >= time.Second {
		spinner = cli.NewSpinner(cmd.ErrOrStderr(), "Starting...")
	}
	checker := &splash.Checker{Tokens: store, Delay: delay}
	route, err := checker.Run(ctx)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return fmt.Errorf("token check failed: %w", err)
	}

	msg := cli.FormatSuccess("→ " + string(route))
	if route == model.RouteOnboarding {
		msg = cli.FormatInfo("→ " + string(route) + " (run rotto login)")
	}
	_, err = fmt.Fprintln(out, msg)
	return err
}
