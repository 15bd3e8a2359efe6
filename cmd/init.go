package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/gdrive-endpoint/internal/config"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration file interactively",
		Long: `Prompt for the Google OAuth client and the Drive settings and write
them to the configuration file (see --config).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd.OutOrStdout(), DefaultPrompter, cfg, configPath)
		},
	}
}

func runInit(out io.Writer, prompter Prompter, current *config.Config, path string) error {
	if _, err := os.Stat(path); err == nil {
		overwrite, err := prompter.Confirm(fmt.Sprintf("%s exists. Overwrite?", path), false)
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	next := *current

	var err error
	if next.Google.ClientID, err = prompter.Input("Google OAuth client ID:", current.Google.ClientID); err != nil {
		return err
	}
	secret, err := prompter.Password("Google OAuth client secret (empty keeps the current one):")
	if err != nil {
		return err
	}
	if secret != "" {
		next.Google.ClientSecret = secret
	}
	if next.Drive.DefaultAccount, err = prompter.Input("Default account:", current.Drive.DefaultAccount); err != nil {
		return err
	}
	if next.Drive.StoreDir, err = prompter.Input("File store directory:", current.Drive.StoreDir); err != nil {
		return err
	}
	writes, err := prompter.Confirm("Allow the MCP server to change Drive state?", !current.Server.ReadOnly)
	if err != nil {
		return err
	}
	next.Server.ReadOnly = !writes

	if err := next.Validate(); err != nil {
		return err
	}
	if err := config.Save(&next, path); err != nil {
		return err
	}

	fmt.Fprintf(out, "Configuration written to %s\n", path)
	return nil
}
