package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Veraticus/rotto/internal/common"
	"github.com/Veraticus/rotto/internal/history"
	"github.com/Veraticus/rotto/internal/model"
	"github.com/Veraticus/rotto/internal/service"
	"github.com/Veraticus/rotto/internal/tui"
	"github.com/Veraticus/rotto/internal/tui/themes"
	"github.com/Veraticus/rotto/internal/uistate"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func tuiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the home screen and history interactively",
		Long: `Start the interactive client. The home tab shows the promotional banner;
the My tab shows the transaction history with filter and search modals.

Logs go to --log-file because the TUI owns the terminal.`,
		RunE: runTUI,
	}

	cmd.Flags().String("theme", "default", "color theme (default, catppuccin-mocha)")
	cmd.Flags().String("log-file", "", "write logs to this file")
	cmd.Flags().StringP("filter", "f", "all", "initial history filter")
	cmd.Flags().Bool("history", false, "start on the history tab")

	return cmd
}

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	themeName, _ := cmd.Flags().GetString("theme")
	logFile, _ := cmd.Flags().GetString("log-file")
	filterFlag, _ := cmd.Flags().GetString("filter")
	startOnHistory, _ := cmd.Flags().GetBool("history")

	filter, err := model.ParseFilter(filterFlag)
	if err != nil {
		return common.NewUserError("invalid --filter", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	loc, err := displayZone(cfg)
	if err != nil {
		return err
	}
	policy, err := history.ParsePolicy(cfg.History.FailurePolicy)
	if err != nil {
		return err
	}

	logger, closeLog, err := tuiLogger(logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	tokens, err := sessionTokens(ctx, store)
	if err != nil {
		return err
	}
	client, err := newClient(cfg, tokens)
	if err != nil {
		return err
	}

	state := uistate.NewStore()
	state.SetFilter(filter)

	startTab := tui.TabHome
	if startOnHistory {
		startTab = tui.TabMy
	}

	return tui.Run(ctx,
		tui.WithFetcher(client),
		tui.WithSnapshots(store),
		tui.WithStore(state),
		tui.WithAccount(cfg.Account.Code),
		tui.WithLocation(loc),
		tui.WithFailurePolicy(policy, retryOptions(cfg)),
		tui.WithTheme(themes.GetTheme(themeName)),
		tui.WithLogger(logger),
		tui.WithStartTab(startTab),
		tui.WithNavigator(service.NavigatorFunc(func(route model.Route) {
			logger.Info("Navigation requested", "route", string(route))
		})),
	)
}

// tuiLogger returns a logger that stays off the terminal.
func tuiLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	level, err := common.ParseLevel(viper.GetString("logging.level"))
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { _ = f.Close() }, nil
}
