package drive

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/teemow/gdrive-endpoint/internal/endpoint"
	"github.com/teemow/gdrive-endpoint/internal/filestore"
	"github.com/teemow/gdrive-endpoint/internal/google"
	"github.com/teemow/gdrive-endpoint/internal/instrumentation"
	"github.com/teemow/gdrive-endpoint/internal/logging"
)

// DefaultBaseURL is the root of the Drive REST API v3
const DefaultBaseURL = "https://www.googleapis.com/drive/v3"

// Config configures a Client
type Config struct {
	// Account is the account the client acts for
	Account string

	// BaseURL overrides DefaultBaseURL
	BaseURL string

	// Store receives downloaded and exported files and serves uploads
	Store *filestore.Store

	// Metrics records request counts and latencies (optional)
	Metrics *instrumentation.Metrics

	// Logger defaults to slog.Default()
	Logger *slog.Logger

	// OnUnauthorized is called when Google rejects the account's credentials
	OnUnauthorized func(account string)

	// TokenSource authorizes requests. Nil means the account's stored token.
	TokenSource oauth2.TokenSource
}

// Client is the Drive transport for one account. It implements
// endpoint.Transport.
type Client struct {
	http    *http.Client
	service *drive.Service
	account string
	baseURL string
	store   *filestore.Store
	metrics *instrumentation.Metrics
	logger  *slog.Logger

	onUnauthorized func(account string)
}

var _ endpoint.Transport = (*Client)(nil)

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// Store returns the file store the client writes to
func (c *Client) Store() *filestore.Store {
	return c.store
}

// NewClientForAccount creates a Drive transport authorized with
// cfg.TokenSource, or the account's stored token when that is nil
func NewClientForAccount(ctx context.Context, cfg Config) (*Client, error) {
	ts := cfg.TokenSource
	if ts == nil {
		var err error
		if ts, err = google.GetTokenSourceForAccount(ctx, cfg.Account); err != nil {
			return nil, fmt.Errorf("no valid Google OAuth token found for account %s. Please authorize access first: %w", cfg.Account, err)
		}
	}
	return New(ctx, google.NewHTTPClient(ctx, ts), cfg)
}

// New creates a Drive transport on top of an already authorized HTTP client
func New(ctx context.Context, httpClient *http.Client, cfg Config) (*Client, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("http client is required")
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if baseURL != DefaultBaseURL {
		opts = append(opts, option.WithEndpoint(baseURL+"/"))
	}
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	account := cfg.Account
	if account == "" {
		account = google.DefaultAccount
	}

	return &Client{
		http:           httpClient,
		service:        svc,
		account:        account,
		baseURL:        baseURL,
		store:          cfg.Store,
		metrics:        cfg.Metrics,
		logger:         logging.WithAccount(logger, account),
		onUnauthorized: cfg.OnUnauthorized,
	}, nil
}

// observe runs fn inside a client span and records its outcome
func (c *Client) observe(ctx context.Context, method, resource string, fn func(ctx context.Context) (int, error)) error {
	ctx, span := instrumentation.StartDriveSpan(ctx, method, resource,
		instrumentation.NewSpanAttributeBuilder().WithAccount(c.account).Build()...)
	defer span.End()

	start := time.Now()
	code, err := fn(ctx)
	duration := time.Since(start)
	instrumentation.SetSpanStatusCode(span, code)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
		c.logger.Debug("drive request failed",
			logging.Method(method), logging.Resource(resource),
			logging.StatusCode(code), logging.Duration(duration), logging.Err(err))
	} else {
		instrumentation.SetSpanSuccess(span)
		c.logger.Debug("drive request completed",
			logging.Method(method), logging.Resource(resource),
			logging.StatusCode(code), logging.Duration(duration))
	}
	if c.metrics != nil {
		c.metrics.RecordDriveRequest(ctx, method, resource, status, duration)
	}
	return err
}
