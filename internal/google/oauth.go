package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultAccount is used when no account is named.
const DefaultAccount = "default"

// DefaultRedirectURL receives the authorization code when the server runs
// with its HTTP transport on the default address.
const DefaultRedirectURL = "http://localhost:8080/callback"

// ErrNoToken is returned when an account has not been authorized yet.
var ErrNoToken = errors.New("no Google OAuth token found")

// ClientConfig holds the OAuth client registration and where tokens live.
type ClientConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// TokenDir defaults to <user cache dir>/gdrive-endpoint
	TokenDir string
}

var (
	configMu     sync.RWMutex
	clientConfig ClientConfig

	// revokeURL is Google's token revocation endpoint
	revokeURL = "https://oauth2.googleapis.com/revoke"

	accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// Configure sets the OAuth client used by every function of the package.
func Configure(cfg ClientConfig) {
	configMu.Lock()
	defer configMu.Unlock()
	clientConfig = cfg
}

func currentConfig() ClientConfig {
	configMu.RLock()
	defer configMu.RUnlock()
	return clientConfig
}

// getOAuthConfig returns the OAuth2 configuration for the Drive API
func getOAuthConfig() *oauth2.Config {
	cfg := currentConfig()
	redirect := cfg.RedirectURL
	if redirect == "" {
		redirect = DefaultRedirectURL
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirect,
		Scopes:       DefaultOAuthScopes,
	}
}

func tokenDir() string {
	if dir := currentConfig().TokenDir; dir != "" {
		return dir
	}
	return filepath.Join(userCacheDir(), "gdrive-endpoint")
}

// ValidateAccountName rejects names that cannot be used in a token file name
func ValidateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only letters, digits, hyphens and underscores are allowed", account)
	}
	return nil
}

func getTokenFilePath(account string) string {
	return filepath.Join(tokenDir(), "google-"+account+".token")
}

// HasTokenForAccount checks if a token file exists for the account
func HasTokenForAccount(account string) bool {
	if err := ValidateAccountName(account); err != nil {
		return false
	}
	_, err := os.Stat(getTokenFilePath(account))
	return err == nil
}

// ListAccounts returns the accounts that have a stored token, sorted.
func ListAccounts() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(tokenDir(), "google-*.token"))
	if err != nil {
		return nil, fmt.Errorf("failed to list token files: %w", err)
	}
	accounts := make([]string, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), "google-"), ".token")
		if ValidateAccountName(name) == nil {
			accounts = append(accounts, name)
		}
	}
	sort.Strings(accounts)
	return accounts, nil
}

// GetAuthURLForAccount returns the consent URL for the account. The account
// name travels in the state parameter so the callback knows where to store
// the token.
func GetAuthURLForAccount(account string) string {
	return getOAuthConfig().AuthCodeURL(account, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// SaveTokenForAccount exchanges an authorization code and stores the token
func SaveTokenForAccount(ctx context.Context, account, authCode string) error {
	if err := ValidateAccountName(account); err != nil {
		return err
	}
	if authCode == "" {
		return fmt.Errorf("authorization code is required")
	}

	t, err := getOAuthConfig().Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}

	if err := writeToken(account, t); err != nil {
		return err
	}
	slog.Info("stored Google OAuth token", "account", account)
	return nil
}

func writeToken(account string, t *oauth2.Token) error {
	if err := os.MkdirAll(tokenDir(), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(getTokenFilePath(account), data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// readToken loads a stored token. The legacy "<access> <refresh>" format is
// still accepted.
func readToken(account string) (*oauth2.Token, error) {
	if err := ValidateAccountName(account); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(getTokenFilePath(account))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w for account %s", ErrNoToken, account)
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var t oauth2.Token
	if err := json.Unmarshal(data, &t); err == nil {
		return &t, nil
	}

	f := strings.Fields(strings.TrimSpace(string(data)))
	if len(f) != 2 {
		return nil, fmt.Errorf("invalid token format for account %s", account)
	}
	return &oauth2.Token{
		AccessToken:  f[0],
		TokenType:    "Bearer",
		RefreshToken: f[1],
		Expiry:       time.Unix(1, 0),
	}, nil
}

// persistingTokenSource writes refreshed tokens back to disk
type persistingTokenSource struct {
	account string
	base    oauth2.TokenSource

	mu   sync.Mutex
	last string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if t.AccessToken != s.last {
		s.last = t.AccessToken
		if err := writeToken(s.account, t); err != nil {
			slog.Warn("failed to persist refreshed token", "account", s.account, "error", err)
		}
	}
	return t, nil
}

// GetTokenSourceForAccount returns a token source for the stored token. The
// token is refreshed on demand and refreshed tokens are persisted.
func GetTokenSourceForAccount(ctx context.Context, account string) (oauth2.TokenSource, error) {
	t, err := readToken(account)
	if err != nil {
		return nil, err
	}

	base := getOAuthConfig().TokenSource(ctx, t)
	return oauth2.ReuseTokenSource(t, &persistingTokenSource{
		account: account,
		base:    base,
		last:    t.AccessToken,
	}), nil
}

// NewHTTPClient returns an HTTP client that authorizes requests with ts.
// It speaks HTTP/1.1, which avoids stream resets on long media downloads.
func NewHTTPClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	client := oauth2.NewClient(ctx, ts)
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: false,
		}
	}
	return client
}

// GetHTTPClientForAccount returns an HTTP client authorized with the
// account's stored token
func GetHTTPClientForAccount(ctx context.Context, account string) (*http.Client, error) {
	ts, err := GetTokenSourceForAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	return NewHTTPClient(ctx, ts), nil
}

// RefreshTokenForAccount forces a token refresh. It fails when Google no
// longer accepts the refresh token.
func RefreshTokenForAccount(ctx context.Context, account string) error {
	t, err := readToken(account)
	if err != nil {
		return err
	}
	if t.RefreshToken == "" {
		return fmt.Errorf("no refresh token stored for account %s", account)
	}
	t.Expiry = time.Unix(1, 0)

	fresh, err := getOAuthConfig().TokenSource(ctx, t).Token()
	if err != nil {
		return fmt.Errorf("failed to refresh token for account %s: %w", account, err)
	}
	return writeToken(account, fresh)
}

// RevokeTokenForAccount revokes the account's token at Google and removes it
// from disk. The file is removed even when revocation fails.
func RevokeTokenForAccount(ctx context.Context, account string) error {
	t, err := readToken(account)
	if err != nil {
		return err
	}

	token := t.RefreshToken
	if token == "" {
		token = t.AccessToken
	}
	revokeErr := revoke(ctx, token)
	if revokeErr != nil {
		slog.Warn("failed to revoke token", "account", account, "error", revokeErr)
	}

	if err := RemoveTokenForAccount(account); err != nil {
		return err
	}
	return revokeErr
}

func revoke(ctx context.Context, token string) error {
	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to revoke token: status %d", resp.StatusCode)
	}
	return nil
}

// RemoveTokenForAccount deletes the stored token without contacting Google
func RemoveTokenForAccount(account string) error {
	if err := ValidateAccountName(account); err != nil {
		return err
	}
	if err := os.Remove(getTokenFilePath(account)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// MigrateDefaultToken renames the legacy single-account token file to the
// default account's token file. It is a no-op when there is nothing to
// migrate.
func MigrateDefaultToken() error {
	oldPath := filepath.Join(tokenDir(), "google.token")
	newPath := getTokenFilePath(DefaultAccount)

	if _, err := os.Stat(oldPath); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if _, err := os.Stat(newPath); err == nil {
		return nil
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("failed to migrate token file: %w", err)
	}
	slog.Info("migrated legacy token file", "account", DefaultAccount)
	return nil
}

// GetAuthenticationErrorMessage explains how to authorize the account
func GetAuthenticationErrorMessage(account string) string {
	return fmt.Sprintf(`Google OAuth token not found or invalid for account %q.

To authorize access:
1. Call google_get_auth_url with account %q (or run "gdrive-endpoint auth login --account %s")
2. Open the URL, grant access and copy the authorization code
3. Call google_save_auth_code with the code and account %q`, account, account, account, account)
}

func userCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir
	}
	if runtime.GOOS == "windows" {
		return os.TempDir()
	}
	return filepath.Join(os.Getenv("HOME"), ".cache")
}
