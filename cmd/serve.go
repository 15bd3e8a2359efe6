package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/gdrive-endpoint/internal/config"
	"github.com/teemow/gdrive-endpoint/internal/filestore"
	"github.com/teemow/gdrive-endpoint/internal/instrumentation"
	"github.com/teemow/gdrive-endpoint/internal/logging"
	"github.com/teemow/gdrive-endpoint/internal/resources"
	"github.com/teemow/gdrive-endpoint/internal/server"
	"github.com/teemow/gdrive-endpoint/internal/tools/drive_tools"
	"github.com/teemow/gdrive-endpoint/internal/tools/google_tools"
)

func newServeCmd() *cobra.Command {
	var disableStreaming bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP (Model Context Protocol) server to expose the Drive
operations as tools for AI assistants.

Supports two transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP server with the OAuth callback and
    health endpoints

The server starts in read-only mode. Use --yolo to register the tools that
change Drive state.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg, logger, disableStreaming)
		},
	}

	cmd.Flags().String("transport", config.TransportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().String("http-addr", "", "HTTP server address (for streamable-http transport)")
	cmd.Flags().String("base-url", "", "Public URL of the server, used for the OAuth callback")
	cmd.Flags().String("account", "", "Default account for calls that name none")
	cmd.Flags().Bool("yolo", false, "Enable write operations (default is read-only mode)")
	cmd.Flags().BoolVar(&disableStreaming, "disable-streaming", false, "Disable server-sent event streams (streamable-http transport)")
	cmd.Flags().Bool("metrics-enabled", false, "Serve Prometheus metrics on a dedicated listener")
	cmd.Flags().String("metrics-addr", "", "Metrics server address")
	cmd.Flags().Bool("debug", false, "Enable debug logging")

	return cmd
}

// applyServeFlags copies the serve flags the user set over the loaded
// configuration. Other commands do not define them and are left alone.
func applyServeFlags(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()

	stringFlags := map[string]*string{
		"transport":    &c.Server.Transport,
		"http-addr":    &c.Server.HTTPAddr,
		"base-url":     &c.Server.BaseURL,
		"account":      &c.Drive.DefaultAccount,
		"metrics-addr": &c.Metrics.Addr,
	}
	for name, dst := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = value
	}

	if flags.Changed("yolo") {
		yolo, err := flags.GetBool("yolo")
		if err != nil {
			return err
		}
		c.Server.ReadOnly = !yolo
	}
	if flags.Changed("metrics-enabled") {
		enabled, err := flags.GetBool("metrics-enabled")
		if err != nil {
			return err
		}
		c.Metrics.Enabled = enabled
	}
	if flags.Changed("debug") {
		if debug, _ := flags.GetBool("debug"); debug {
			c.Logging.Level = "debug"
		}
	}
	return nil
}

func runServe(ctx context.Context, c *config.Config, logger *slog.Logger, disableStreaming bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	// The metrics listener is only started next to the HTTP transport
	var metricsServer *server.MetricsServer
	if c.Server.Transport != config.TransportStdio && c.Metrics.Enabled && provider.Enabled() {
		metricsServer, err = startMetricsServer(c.Metrics.Addr, provider, logger)
		if err != nil {
			return err
		}
	}

	store, err := filestore.New(c.Drive.StoreDir)
	if err != nil {
		return fmt.Errorf("failed to open file store: %w", err)
	}

	serverContext, err := server.NewServerContext(shutdownCtx, server.Options{
		Store:          store,
		DriveBaseURL:   c.Drive.BaseURL,
		DefaultAccount: c.Drive.DefaultAccount,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}

	// Set metrics and audit logger on server context for tool instrumentation
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging))
	}
	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("error during metrics server shutdown", logging.Err(err))
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("error during server context shutdown", logging.Err(err))
		}
	}()

	readOnly := c.Server.ReadOnly
	if readOnly {
		logger.Info("starting server in read-only mode (use --yolo to enable write operations)")
	} else {
		logger.Info("starting server with write operations enabled")
	}

	mcpSrv, err := newMCPServer(serverContext, readOnly)
	if err != nil {
		return err
	}

	switch c.Server.Transport {
	case config.TransportStdio:
		return runStdioServer(mcpSrv, logger)
	case config.TransportStreamableHTTP:
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, c, disableStreaming, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", c.Server.Transport)
	}
}

func startMetricsServer(addr string, provider *instrumentation.Provider, logger *slog.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		InstrumentationProvider: provider,
		Logger:                  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	if err := metricsServer.Listen(); err != nil {
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	}
	go func() {
		if err := metricsServer.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", logging.Err(err))
		}
	}()
	logger.Info("metrics server started", "addr", metricsServer.Addr())
	return metricsServer, nil
}

// newMCPServer creates the MCP server with every tool and resource
// registered
func newMCPServer(sc *server.ServerContext, readOnly bool) (*mcpserver.MCPServer, error) {
	mcpSrv := mcpserver.NewMCPServer("gdrive-endpoint", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)

	if err := registerAllTools(mcpSrv, sc, readOnly); err != nil {
		return nil, err
	}
	return mcpSrv, nil
}

// registerAllTools registers all MCP tools and resources
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Google",
			register: func() error {
				return google_tools.RegisterGoogleTools(mcpSrv, sc)
			},
		},
		{
			name: "Drive",
			register: func() error {
				return drive_tools.RegisterDriveTools(mcpSrv, sc, readOnly)
			},
		},
		{
			name: "Resources",
			register: func() error {
				return resources.RegisterResources(mcpSrv, sc)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

func runStdioServer(mcpSrv *mcpserver.MCPServer, logger *slog.Logger) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv,
			mcpserver.WithErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)),
		); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, c *config.Config, disableStreaming bool, logger *slog.Logger) error {
	httpServer, err := server.NewHTTPServer(mcpSrv, sc, server.HTTPConfig{
		BaseURL:          c.Server.BaseURL,
		DisableStreaming: disableStreaming,
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	logger.Info("streamable HTTP server configured",
		"addr", c.Server.HTTPAddr,
		"mcp_endpoint", server.MCPEndpointPath,
		"callback", server.CallbackPath,
		"read_only", c.Server.ReadOnly,
	)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(c.Server.HTTPAddr); err != nil {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}
