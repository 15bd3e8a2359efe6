package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdrive-endpoint/internal/google"
	"github.com/teemow/gdrive-endpoint/internal/instrumentation"
	"github.com/teemow/gdrive-endpoint/internal/logging"
)

const (
	// MCPEndpointPath serves the streamable HTTP MCP transport
	MCPEndpointPath = "/mcp"

	// CallbackPath receives Google's OAuth redirect
	CallbackPath = "/callback"
)

var (
	validate      = validator.New()
	schemaDecoder = schema.NewDecoder()
)

func init() {
	// Google appends authuser, prompt and hd to the redirect
	schemaDecoder.IgnoreUnknownKeys(true)
	_ = validate.RegisterValidation("account", func(fl validator.FieldLevel) bool {
		return google.ValidateAccountName(fl.Field().String()) == nil
	})
}

// HTTPConfig configures the streamable HTTP server
type HTTPConfig struct {
	// BaseURL is the public URL of the server. When set it must be HTTPS
	// unless it points at a loopback address.
	BaseURL string

	// DisableStreaming rejects GET requests for server-sent event streams
	DisableStreaming bool

	// SessionTimeout expires idle sessions. Defaults to 24h.
	SessionTimeout time.Duration

	Logger *slog.Logger
}

// HTTPServer hosts the MCP server over streamable HTTP together with the
// OAuth callback and the health endpoints
type HTTPServer struct {
	mcpServer        *mcpserver.MCPServer
	serverContext    *ServerContext
	sessions         *SessionIDManager
	health           *HealthChecker
	httpServer       *http.Server
	baseURL          string
	disableStreaming bool
	logger           *slog.Logger
}

// NewHTTPServer creates a new streamable HTTP server for MCP
func NewHTTPServer(mcpServer *mcpserver.MCPServer, sc *ServerContext, cfg HTTPConfig) (*HTTPServer, error) {
	if cfg.BaseURL != "" {
		if err := validateHTTPSRequirement(cfg.BaseURL); err != nil {
			return nil, err
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.SessionTimeout == 0 {
		cfg.SessionTimeout = 24 * time.Hour
	}

	sessions := NewSessionIDManagerWithLogger(cfg.SessionTimeout, cfg.Logger)
	if sc != nil {
		sessions.SetMetrics(sc.Metrics())
	}

	return &HTTPServer{
		mcpServer:        mcpServer,
		serverContext:    sc,
		sessions:         sessions,
		health:           NewHealthChecker(sc),
		baseURL:          cfg.BaseURL,
		disableStreaming: cfg.DisableStreaming,
		logger:           cfg.Logger,
	}, nil
}

// Sessions returns the session manager
func (s *HTTPServer) Sessions() *SessionIDManager {
	return s.sessions
}

// Handler builds the HTTP handler serving all endpoints
func (s *HTTPServer) Handler() http.Handler {
	streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer,
		mcpserver.WithEndpointPath(MCPEndpointPath),
		mcpserver.WithSessionIdManager(s.sessions),
		mcpserver.WithHTTPContextFunc(s.accountContext),
		mcpserver.WithDisableStreaming(s.disableStreaming),
		mcpserver.WithLogger(logging.NewSlogAdapter(s.logger, "mcp-http")),
	)

	mux := http.NewServeMux()
	mux.Handle(MCPEndpointPath, streamable)
	mux.HandleFunc(CallbackPath, s.handleCallback)
	s.health.RegisterHealthEndpoints(mux)

	return s.instrumentationMiddleware(mux)
}

// Start starts the HTTP server and blocks until it stops
func (s *HTTPServer) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Event streams and transfers outlive any fixed write timeout
		IdleTimeout: 120 * time.Second,
	}

	s.logger.Info("starting streamable HTTP server", "addr", addr, logging.Path(MCPEndpointPath))
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	s.sessions.Stop()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// accountContext tags the request context with the account it acts as.
// The account header wins and binds the session; later requests of the
// session may omit it.
func (s *HTTPServer) accountContext(ctx context.Context, r *http.Request) context.Context {
	// Initialize requests carry no session header yet, but their session
	// is already in the context
	sessionID := r.Header.Get(mcpserver.HeaderKeySessionID)
	if session := mcpserver.ClientSessionFromContext(ctx); session != nil && session.SessionID() != "" {
		sessionID = session.SessionID()
	}

	if account := strings.TrimSpace(r.Header.Get(AccountHeader)); account != "" {
		if sessionID != "" {
			s.sessions.BindAccount(sessionID, account)
		}
		return WithAccount(ctx, account)
	}

	if sessionID != "" {
		if account := s.sessions.AccountForSession(sessionID); account != "" {
			return WithAccount(ctx, account)
		}
	}
	return ctx
}

// callbackParams is Google's OAuth redirect query. The state carries the
// account name.
type callbackParams struct {
	Code  string `schema:"code" validate:"required_without=Error"`
	State string `schema:"state" validate:"required,account"`
	Scope string `schema:"scope"`
	Error string `schema:"error"`
}

func (s *HTTPServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var params callbackParams
	if err := schemaDecoder.Decode(&params, r.URL.Query()); err != nil {
		s.recordAuth(r.Context(), instrumentation.OAuthResultFailure)
		http.Error(w, "invalid callback parameters", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(params); err != nil {
		s.recordAuth(r.Context(), instrumentation.OAuthResultFailure)
		http.Error(w, formatValidationError(err), http.StatusBadRequest)
		return
	}

	account := params.State
	if params.Error != "" {
		s.logger.Warn("authorization denied", logging.Account(account), "reason", params.Error)
		s.recordAuth(r.Context(), instrumentation.OAuthResultFailure)
		http.Error(w, fmt.Sprintf("authorization failed: %s", params.Error), http.StatusBadRequest)
		return
	}

	if err := google.SaveTokenForAccount(r.Context(), account, params.Code); err != nil {
		s.logger.Error("failed to save token", logging.Account(account), logging.Err(err))
		s.recordAuth(r.Context(), instrumentation.OAuthResultFailure)
		http.Error(w, "failed to exchange authorization code", http.StatusBadGateway)
		return
	}

	s.serverContext.ForgetAccount(account)
	s.recordAuth(r.Context(), instrumentation.OAuthResultSuccess)
	s.logger.Info("account connected", logging.Account(account))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(w, "Google Drive account %q connected. You can close this window.\n", account)
}

func (s *HTTPServer) recordAuth(ctx context.Context, result string) {
	s.serverContext.Metrics().RecordOAuthEvent(ctx, instrumentation.OAuthEventCallback, result)
}

func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required", "required_without":
			msgs = append(msgs, field+" is required")
		case "account":
			msgs = append(msgs, field+" is not a valid account name")
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

// responseWriter captures the status code of a response
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush keeps server-sent events flowing through the wrapper
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// routeLabel bounds the path label to the routes this server serves
func routeLabel(path string) string {
	switch path {
	case MCPEndpointPath, CallbackPath, "/healthz", "/readyz", "/healthz/detailed":
		return path
	default:
		return "other"
	}
}

// instrumentationMiddleware records HTTP request metrics
func (s *HTTPServer) instrumentationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var metrics *instrumentation.Metrics
		if s.serverContext != nil {
			metrics = s.serverContext.Metrics()
		}
		if metrics == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)
		metrics.RecordHTTPRequest(r.Context(), r.Method, routeLabel(r.URL.Path), rw.statusCode, time.Since(start))
	})
}

// validateHTTPSRequirement requires HTTPS for the public URL.
// Allows HTTP only for loopback addresses (localhost, 127.0.0.1, ::1)
func validateHTTPSRequirement(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	switch u.Scheme {
	case "https":
		return nil
	case "http":
		host := u.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			return fmt.Errorf("OAuth callbacks require HTTPS (got: %s). Use HTTPS or localhost for development", baseURL)
		}
		return nil
	default:
		return fmt.Errorf("invalid URL scheme: %q. Must be http (localhost only) or https", u.Scheme)
	}
}
