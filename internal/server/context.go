package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teemow/gdrive-endpoint/internal/drive"
	"github.com/teemow/gdrive-endpoint/internal/endpoint"
	"github.com/teemow/gdrive-endpoint/internal/filestore"
	"github.com/teemow/gdrive-endpoint/internal/google"
	"github.com/teemow/gdrive-endpoint/internal/instrumentation"
	"github.com/teemow/gdrive-endpoint/internal/logging"
)

// TransportFactory builds the Drive transport of an account
type TransportFactory func(ctx context.Context, account string) (endpoint.Transport, error)

// Options configures a ServerContext
type Options struct {
	// Store holds downloaded, exported and to-be-uploaded files
	Store *filestore.Store

	// DriveBaseURL overrides the Drive API root (tests, proxies)
	DriveBaseURL string

	// DefaultAccount is used when a call names no account
	DefaultAccount string

	// Tokens reports which accounts are connected and authorizes their
	// requests. Defaults to the token files on disk.
	Tokens google.TokenProvider

	// NewTransport overrides how transports are built
	NewTransport TransportFactory

	Logger *slog.Logger
}

// ServerContext holds the per-account endpoints of a running server
type ServerContext struct {
	ctx            context.Context
	cancel         context.CancelFunc
	store          *filestore.Store
	driveBaseURL   string
	defaultAccount string
	tokens         google.TokenProvider
	newTransport   TransportFactory
	endpoints      map[string]*endpoint.Endpoint // Maps account name to endpoint
	metrics        *instrumentation.Metrics
	auditLogger    *instrumentation.AuditLogger
	logger         *slog.Logger
	mu             sync.RWMutex
	shutdown       bool
}

// NewServerContext creates a new server context. Endpoints are created
// lazily when an account is first used.
func NewServerContext(ctx context.Context, opts Options) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:            shutdownCtx,
		cancel:         cancel,
		store:          opts.Store,
		driveBaseURL:   opts.DriveBaseURL,
		defaultAccount: opts.DefaultAccount,
		tokens:         opts.Tokens,
		newTransport:   opts.NewTransport,
		endpoints:      make(map[string]*endpoint.Endpoint),
		logger:         opts.Logger,
	}
	if sc.defaultAccount == "" {
		sc.defaultAccount = google.DefaultAccount
	}
	if sc.tokens == nil {
		sc.tokens = google.NewFileTokenProvider()
	}
	if sc.logger == nil {
		sc.logger = slog.Default()
	}
	if sc.newTransport == nil {
		sc.newTransport = sc.driveTransport
	}

	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// DefaultAccount returns the account used when a call names none
func (sc *ServerContext) DefaultAccount() string {
	return sc.defaultAccount
}

// Store returns the file store shared by all accounts
func (sc *ServerContext) Store() *filestore.Store {
	return sc.store
}

// Logger returns the server logger
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// HasTokenForAccount reports whether the account is connected
func (sc *ServerContext) HasTokenForAccount(account string) bool {
	return sc.tokens.HasTokenForAccount(account)
}

// EndpointForAccount returns the endpoint of an account, creating and
// caching it on first use. It fails when the account is not connected.
func (sc *ServerContext) EndpointForAccount(account string) (*endpoint.Endpoint, error) {
	if account == "" {
		account = sc.defaultAccount
	}

	sc.mu.RLock()
	ep, ok := sc.endpoints[account]
	shutdown := sc.shutdown
	sc.mu.RUnlock()
	if ok {
		return ep, nil
	}
	if shutdown {
		return nil, fmt.Errorf("server is shutting down")
	}

	if !sc.tokens.HasTokenForAccount(account) {
		return nil, fmt.Errorf("%s", google.GetAuthenticationErrorMessage(account))
	}

	transport, err := sc.newTransport(sc.ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive transport for account %s: %w", account, err)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	// Another call may have won the race
	if ep, ok := sc.endpoints[account]; ok {
		return ep, nil
	}
	ep = endpoint.New(transport)
	sc.endpoints[account] = ep
	return ep, nil
}

// Endpoint returns the endpoint of the default account
func (sc *ServerContext) Endpoint() (*endpoint.Endpoint, error) {
	return sc.EndpointForAccount(sc.defaultAccount)
}

// SetEndpointForAccount installs an endpoint for an account
func (sc *ServerContext) SetEndpointForAccount(account string, ep *endpoint.Endpoint) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.endpoints[account] = ep
}

// ForgetAccount drops the cached endpoint, so the next call rebuilds it
// from the stored token
func (sc *ServerContext) ForgetAccount(account string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	delete(sc.endpoints, account)
}

// Disconnect revokes the account's token and drops its endpoint
func (sc *ServerContext) Disconnect(ctx context.Context, account string) error {
	sc.ForgetAccount(account)
	if err := google.RevokeTokenForAccount(ctx, account); err != nil {
		return fmt.Errorf("failed to disconnect account %s: %w", account, err)
	}
	sc.logger.Info("account disconnected", logging.Account(account))
	return nil
}

// handleUnauthorized runs when Google rejects an account's credentials.
// A successful refresh keeps the account; otherwise its token is removed
// locally. The token is not revoked since Google already refused it.
func (sc *ServerContext) handleUnauthorized(account string) {
	sc.ForgetAccount(account)

	err := sc.tokens.RefreshToken(sc.ctx, account)
	if err == nil {
		sc.recordRefresh(instrumentation.OAuthResultSuccess)
		sc.logger.Info("refreshed rejected token", logging.Account(account))
		return
	}

	sc.logger.Warn("token refresh failed, disconnecting account", logging.Account(account), logging.Err(err))
	sc.recordRefresh(instrumentation.OAuthResultExpired)
	if err := sc.tokens.RemoveToken(account); err != nil {
		sc.logger.Error("failed to remove rejected token", logging.Account(account), logging.Err(err))
	}
}

func (sc *ServerContext) recordRefresh(result string) {
	sc.Metrics().RecordOAuthEvent(sc.ctx, instrumentation.OAuthEventRefresh, result)
}

func (sc *ServerContext) driveTransport(ctx context.Context, account string) (endpoint.Transport, error) {
	ts, err := sc.tokens.TokenSource(ctx, account)
	if err != nil {
		return nil, err
	}
	return drive.NewClientForAccount(ctx, drive.Config{
		TokenSource:    ts,
		Account:        account,
		BaseURL:        sc.driveBaseURL,
		Store:          sc.store,
		Metrics:        sc.Metrics(),
		Logger:         sc.logger,
		OnUnauthorized: sc.handleUnauthorized,
	})
}

// SetMetrics sets the metrics recorder for tool and Drive instrumentation
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// Metrics returns the metrics recorder, or nil when instrumentation is off
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger sets the audit logger for tool invocations
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// AuditLogger returns the audit logger, or nil when auditing is off
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.endpoints = make(map[string]*endpoint.Endpoint)
	sc.cancel()
	return nil
}
