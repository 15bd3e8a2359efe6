package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/gdrive-endpoint/internal/google"
)

// getUserInfo is swapped in tests
var getUserInfo = func(ctx context.Context, account string) (*google.UserInfo, error) {
	return google.GetUserInfo(ctx, account)
}

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Google account authorizations",
		Long: `Connect, disconnect and list the Google accounts gdrive-endpoint acts as.

Each account keeps its own OAuth token in the token directory.`,
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthStatusCmd())
	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var (
		account string
		code    string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize Google Drive access for an account",
		Long: `Print the OAuth URL of an account, then prompt for the authorization code
Google shows after access was granted and store the resulting token.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if account == "" {
				account = cfg.Drive.DefaultAccount
			}
			return runAuthLogin(cmd.Context(), cmd.OutOrStdout(), DefaultPrompter, account, code)
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Account name (default: the configured default account)")
	cmd.Flags().StringVar(&code, "code", "", "Authorization code (skips the prompt)")
	return cmd
}

func runAuthLogin(ctx context.Context, out io.Writer, prompter Prompter, account, code string) error {
	if err := google.ValidateAccountName(account); err != nil {
		return err
	}

	if code == "" {
		fmt.Fprintf(out, "Visit this URL to authorize Google Drive access for account %q:\n\n  %s\n\n",
			account, google.GetAuthURLForAccount(account))

		var err error
		code, err = prompter.Input("Authorization code:", "")
		if err != nil {
			return fmt.Errorf("failed to read authorization code: %w", err)
		}
	}

	if err := google.SaveTokenForAccount(ctx, account, strings.TrimSpace(code)); err != nil {
		return fmt.Errorf("failed to save token for account %s: %w", account, err)
	}
	fmt.Fprintf(out, "Account %q connected.\n", account)
	return nil
}

func newAuthLogoutCmd() *cobra.Command {
	var (
		account string
		yes     bool
	)

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Revoke an account's authorization and delete its token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if account == "" {
				account = cfg.Drive.DefaultAccount
			}
			return runAuthLogout(cmd.Context(), cmd.OutOrStdout(), DefaultPrompter, account, yes)
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Account name (default: the configured default account)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func runAuthLogout(ctx context.Context, out io.Writer, prompter Prompter, account string, yes bool) error {
	if !google.HasTokenForAccount(account) {
		return fmt.Errorf("account %s is not connected", account)
	}

	if !yes {
		ok, err := prompter.Confirm(fmt.Sprintf("Revoke the authorization of account %q?", account), false)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	if err := google.RevokeTokenForAccount(ctx, account); err != nil {
		return err
	}
	fmt.Fprintf(out, "Account %q disconnected.\n", account)
	return nil
}

func newAuthStatusCmd() *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "List the connected accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthStatus(cmd.Context(), cmd.OutOrStdout(), cfg.Drive.DefaultAccount, verify)
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "Look up the Google user behind each account")
	return cmd
}

func runAuthStatus(ctx context.Context, out io.Writer, defaultAccount string, verify bool) error {
	accounts, err := google.ListAccounts()
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Fprintln(out, `No accounts connected. Run "gdrive-endpoint auth login" to connect one.`)
		return nil
	}

	for _, account := range accounts {
		marker := " "
		if account == defaultAccount {
			marker = "*"
		}
		line := fmt.Sprintf("%s %s", marker, account)

		if verify {
			info, err := getUserInfo(ctx, account)
			if err != nil {
				line += fmt.Sprintf("  (error: %v)", err)
			} else {
				line += "  " + info.Email
			}
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
