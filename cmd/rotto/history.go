package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/rotto/internal/cli"
	"github.com/Veraticus/rotto/internal/common"
	"github.com/Veraticus/rotto/internal/history"
	"github.com/Veraticus/rotto/internal/model"
	"github.com/Veraticus/rotto/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the account's transaction history grouped by day",
		Long: `Fetch the funding account's transaction history and print it grouped by
display day, newest first as returned by the backend.

Every successful fetch is stored locally. When a fetch fails, the failure
policy decides what is printed:
  keep-stale  print the last stored history, marked as stale (default)
  clear       print an empty listing
  retry       retry with backoff, then behave like keep-stale`,
		Example: `  rotto history
  rotto history --filter deposit
  rotto history --filter 출금 --format json
  rotto history --query 농장
  rotto history --day 2024-01-11
  rotto history --offline`,
		RunE: runHistory,
	}

	cmd.Flags().StringP("filter", "f", "all", "history filter (all, deposit, withdrawal)")
	cmd.Flags().String("format", "text", "output format (text, json)")
	cmd.Flags().StringP("query", "q", "", "only show counterparties containing this text")
	cmd.Flags().String("policy", "", "failure policy (keep-stale, clear, retry)")
	cmd.Flags().String("day", "", "only show one display day (YYYY-MM-DD)")
	cmd.Flags().Bool("offline", false, "print the last stored history without contacting the backend")

	_ = viper.BindPFlag("history.failure_policy", cmd.Flags().Lookup("policy"))

	return cmd
}

const dayLayout = "2006-01-02"

type historyOptions struct {
	query   string
	day     string
	filter  model.Filter
	format  cli.OutputFormat
	offline bool
}

func parseHistoryFlags(cmd *cobra.Command) (historyOptions, error) {
	filterFlag, _ := cmd.Flags().GetString("filter")
	formatFlag, _ := cmd.Flags().GetString("format")
	query, _ := cmd.Flags().GetString("query")
	offline, _ := cmd.Flags().GetBool("offline")
	day, _ := cmd.Flags().GetString("day")

	filter, err := model.ParseFilter(filterFlag)
	if err != nil {
		return historyOptions{}, common.NewUserError("invalid --filter", err)
	}
	format, err := cli.ParseOutputFormat(formatFlag)
	if err != nil {
		return historyOptions{}, common.NewUserError("invalid --format", err)
	}
	if day != "" {
		if _, err := time.Parse(dayLayout, day); err != nil {
			return historyOptions{}, common.NewUserError("invalid --day, expected YYYY-MM-DD", err)
		}
	}

	return historyOptions{filter: filter, format: format, query: query, day: day, offline: offline}, nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	opts, err := parseHistoryFlags(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	account, err := cfg.RequireAccount()
	if err != nil {
		return common.NewUserError("no account configured", err)
	}
	loc, err := displayZone(cfg)
	if err != nil {
		return err
	}
	policy, err := history.ParsePolicy(cfg.History.FailurePolicy)
	if err != nil {
		return err
	}

	interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx := interrupts.HandleInterrupts(cmd.Context(), "The last stored history is available with: rotto history --offline")

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	report := cli.HistoryReport{Location: loc, Query: opts.query}
	if opts.day != "" {
		report.Day, _ = time.ParseInLocation(dayLayout, opts.day, loc)
	}

	if opts.offline {
		view, offlineErr := storedView(ctx, store, account, opts.filter, loc)
		if offlineErr != nil {
			return offlineErr
		}
		report.View = view
		return cli.RenderHistory(cmd.OutOrStdout(), report, opts.format)
	}

	tokens, err := sessionTokens(ctx, store)
	if err != nil {
		return err
	}
	client, err := newClient(cfg, tokens)
	if err != nil {
		return err
	}

	view, fetchErr := fetchHistory(ctx, cmd, store, client, history.Options{
		Location: loc,
		Logger:   slog.Default(),
		Retry:    retryOptions(cfg),
		Policy:   policy,
	}, account, opts.filter)
	if fetchErr != nil && interrupts.WasInterrupted() {
		return nil
	}

	report.View = view
	if fetchErr != nil {
		if !view.Stale && view.Empty() && policy != history.PolicyClear {
			return describeFetchError(fetchErr)
		}
		slog.Warn("Showing fallback history", "error", fetchErr, "policy", policy.String())
		if _, err := fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning(userMessage(describeFetchError(fetchErr)))); err != nil {
			return fmt.Errorf("failed to write warning: %w", err)
		}
	}

	return cli.RenderHistory(cmd.OutOrStdout(), report, opts.format)
}

// fetchHistory refreshes once, seeded with the stored snapshot so a failure
// can fall back to it, and stores a successful result.
func fetchHistory(
	ctx context.Context,
	cmd *cobra.Command,
	store service.SnapshotStore,
	fetcher service.HistoryFetcher,
	opts history.Options,
	account string,
	filter model.Filter,
) (history.View, error) {
	refresher := history.NewRefresher(fetcher, opts)

	snapshot, err := store.LoadSnapshot(ctx, account, filter)
	switch {
	case err == nil:
		refresher.Restore(*snapshot)
	case !errors.Is(err, common.ErrNotFound):
		slog.Warn("Failed to load stored history", "error", err)
	}

	spinner := cli.NewSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Fetching %s history...", filter.Label()))
	view, err := refresher.Refresh(ctx, account, filter)
	spinner.Stop()
	if err != nil {
		return view, err
	}

	saveErr := store.SaveSnapshot(ctx, service.Snapshot{
		FetchedAt:   view.FetchedAt,
		AccountCode: view.AccountCode,
		Records:     view.Records,
		Filter:      view.Filter,
	})
	if saveErr != nil {
		slog.Warn("Failed to store history", "error", saveErr)
	}
	return view, nil
}

func storedView(ctx context.Context, store service.SnapshotStore, account string, filter model.Filter, loc *time.Location) (history.View, error) {
	snapshot, err := store.LoadSnapshot(ctx, account, filter)
	if errors.Is(err, common.ErrNotFound) {
		return history.View{}, common.NewUserError(
			fmt.Sprintf("no stored %s history for %s; run rotto history first", filter.String(), account), err)
	}
	if err != nil {
		return history.View{}, fmt.Errorf("failed to load stored history: %w", err)
	}

	return history.View{
		FetchedAt:   snapshot.FetchedAt,
		AccountCode: snapshot.AccountCode,
		Records:     snapshot.Records,
		Sections:    history.GroupByDay(snapshot.Records, loc),
		Filter:      snapshot.Filter,
		Stale:       true,
	}, nil
}

func describeFetchError(err error) error {
	var fetchErr *history.FetchError
	if !errors.As(err, &fetchErr) {
		return err
	}
	switch fetchErr.Kind {
	case history.KindNotFound:
		return common.NewUserError(fmt.Sprintf("account %s was not found", fetchErr.AccountCode), err)
	case history.KindUnauthorized:
		return common.NewUserError("not logged in or session expired; run rotto login", err)
	case history.KindServer:
		return common.NewUserError("the server failed to return the history", err)
	case history.KindDecode:
		return common.NewUserError("the server returned a history this client cannot read", err)
	case history.KindCanceled:
		return common.NewUserError("request canceled", err)
	default:
		return common.NewUserError("could not reach the server", err)
	}
}

func userMessage(err error) string {
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	return err.Error()
}
