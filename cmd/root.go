package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/gdrive-endpoint/internal/config"
	"github.com/teemow/gdrive-endpoint/internal/google"
	"github.com/teemow/gdrive-endpoint/internal/logging"
)

// rootCmd represents the base command for the gdrive-endpoint application
var rootCmd = &cobra.Command{
	Use:   "gdrive-endpoint",
	Short: "Calls the Google Drive REST API v3 by operation name",
	Long: `gdrive-endpoint exposes the Google Drive REST API v3 as a table of named
operations (files.get, permissions.create, ...) together with generic
GET/POST/PUT/PATCH/DELETE requests.

It can run as:
  - A CLI calling one operation at a time (call, operations, auth)
  - An MCP (Model Context Protocol) server for AI assistants (serve)`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

// version will be set by main
var version = "dev"

var (
	configPath string
	logLevel   string
	logFormat  string

	// cfg and logger are set before any subcommand runs
	cfg    *config.Config
	logger *slog.Logger
)

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "gdrive-endpoint version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides the config file)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json (overrides the config file)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCallCmd())
	rootCmd.AddCommand(newRequestCmd())
	rootCmd.AddCommand(newOperationsCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// loadConfig reads the configuration file, applies environment and flag
// overrides and sets up logging and the OAuth client. Logs go to stderr so
// stdout stays free for the stdio transport and command output.
func loadConfig(cmd *cobra.Command) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	loaded.ApplyEnv()

	if logLevel != "" {
		loaded.Logging.Level = logLevel
	}
	if logFormat != "" {
		loaded.Logging.Format = logFormat
	}
	if err := applyServeFlags(cmd, loaded); err != nil {
		return err
	}

	if err := loaded.Validate(); err != nil {
		return err
	}

	l, err := logging.New(os.Stderr, loaded.Logging.Level, loaded.Logging.Format)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	slog.SetDefault(l)

	google.Configure(google.ClientConfig{
		ClientID:     loaded.Google.ClientID,
		ClientSecret: loaded.Google.ClientSecret,
		RedirectURL:  loaded.Google.RedirectURL,
		TokenDir:     loaded.Google.TokenDir,
	})
	if err := google.MigrateDefaultToken(); err != nil {
		l.Warn("failed to migrate legacy token", logging.Err(err))
	}

	cfg = loaded
	logger = l
	return nil
}
