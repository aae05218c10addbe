package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/Veraticus/rotto/internal/cli"
	"github.com/Veraticus/rotto/internal/common"
	"github.com/Veraticus/rotto/internal/rotto"
	"github.com/spf13/cobra"
)

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the issued tokens",
		Long: `Log in with your phone number and password. The issued access and refresh
tokens are stored in the local database and used by every other command.

The password can also be supplied through ROTTO_PASSWORD.`,
		RunE: runLogin,
	}

	cmd.Flags().String("phone", "", "phone number used to sign up")

	return cmd
}

func runLogin(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	phone, _ := cmd.Flags().GetString("phone")
	password := os.Getenv("ROTTO_PASSWORD")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if phone == "" || password == "" {
		prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
		if phone == "" {
			if phone, err = prompter.Ask(ctx, "Phone number"); err != nil {
				return err
			}
		}
		if password == "" {
			if password, err = prompter.AskSecret(ctx, cli.LockIcon+" Password"); err != nil {
				return err
			}
		}
	}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	client, err := newClient(cfg, store)
	if err != nil {
		return err
	}

	if _, err := client.Login(ctx, phone, password); err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			return common.NewUserError("login failed: check your phone number and password", err)
		}
		return fmt.Errorf("login failed: %w", err)
	}

	slog.Debug("Stored tokens", "database", store.Path())
	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Logged in"))
	return err
}

func logoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Revoke and forget the stored tokens",
		Long: `Revoke the stored tokens on the backend and remove them from the local
database. Local tokens are removed even when the backend cannot be reached.`,
		RunE: runLogout,
	}

	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	return cmd
}

func runLogout(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	yes, _ := cmd.Flags().GetBool("yes")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !yes {
		prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
		ok, confirmErr := prompter.Confirm(ctx, "Log out?")
		if confirmErr != nil {
			return confirmErr
		}
		if !ok {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Still logged in"))
			return err
		}
	}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	client, err := newClient(cfg, store)
	if err != nil {
		return err
	}

	if err := client.Logout(ctx); err != nil {
		var apiErr *rotto.APIError
		if !errors.As(err, &apiErr) && !errors.Is(err, common.ErrNetwork) {
			return err
		}
		// Tokens are gone locally; only the server-side revocation failed.
		slog.Warn("Server logout failed", "error", err)
		_, werr := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("Logged out locally; the server did not confirm"))
		return werr
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Logged out"))
	return err
}
