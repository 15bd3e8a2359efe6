package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

// useTempTokenDir points the package at an empty token directory for the test
func useTempTokenDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev := currentConfig()
	Configure(ClientConfig{ClientID: "client-id", ClientSecret: "secret", TokenDir: dir})
	t.Cleanup(func() { Configure(prev) })
	return dir
}

func TestValidateAccountName(t *testing.T) {
	tests := []struct {
		name    string
		account string
		wantErr bool
	}{
		{"valid default", "default", false},
		{"valid work", "work", false},
		{"valid with hyphen", "work-email", false},
		{"valid with underscore", "personal_email", false},
		{"valid alphanumeric", "account123", false},
		{"empty", "", true},
		{"with spaces", "my account", true},
		{"with special chars", "account@work", true},
		{"with slash", "work/personal", true},
		{"with dot", "work.email", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAccountName(tt.account)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAccountName() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetTokenFilePath(t *testing.T) {
	dir := useTempTokenDir(t)

	tests := []struct {
		name    string
		account string
		want    string
	}{
		{"default account", "default", "google-default.token"},
		{"work account", "work", "google-work.token"},
		{"personal account", "personal", "google-personal.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := getTokenFilePath(tt.account)
			if got != filepath.Join(dir, tt.want) {
				t.Errorf("getTokenFilePath() = %v, want %v", got, filepath.Join(dir, tt.want))
			}
		})
	}
}

func TestHasTokenForAccount(t *testing.T) {
	useTempTokenDir(t)

	if HasTokenForAccount("invalid account") {
		t.Error("HasTokenForAccount() should return false for invalid account name")
	}
	if HasTokenForAccount("") {
		t.Error("HasTokenForAccount() should return false for empty account name")
	}
	if HasTokenForAccount("work") {
		t.Error("HasTokenForAccount() should return false before a token is written")
	}

	if err := writeToken("work", &oauth2.Token{AccessToken: "a", RefreshToken: "r"}); err != nil {
		t.Fatal(err)
	}
	if !HasTokenForAccount("work") {
		t.Error("HasTokenForAccount() should return true after a token is written")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	dir := useTempTokenDir(t)

	expiry := time.Now().Add(time.Hour).Round(time.Second)
	want := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer", Expiry: expiry}
	if err := writeToken("work", want); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(filepath.Join(dir, "google-work.token"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("token file mode = %v, want 0600", info.Mode().Perm())
	}

	got, err := readToken("work")
	if err != nil {
		t.Fatal(err)
	}
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken || !got.Expiry.Equal(expiry) {
		t.Errorf("readToken() = %+v, want %+v", got, want)
	}

	// A valid, unexpired token is served without contacting Google
	ts, err := GetTokenSourceForAccount(context.Background(), "work")
	if err != nil {
		t.Fatal(err)
	}
	tok, err := ts.Token()
	if err != nil {
		t.Fatal(err)
	}
	if tok.AccessToken != "access" {
		t.Errorf("token source returned %q", tok.AccessToken)
	}
}

func TestReadLegacyToken(t *testing.T) {
	dir := useTempTokenDir(t)

	if err := os.WriteFile(filepath.Join(dir, "google-default.token"), []byte("old_access old_refresh\n"), 0600); err != nil {
		t.Fatal(err)
	}

	got, err := readToken("default")
	if err != nil {
		t.Fatal(err)
	}
	if got.AccessToken != "old_access" || got.RefreshToken != "old_refresh" {
		t.Errorf("readToken() = %+v", got)
	}
	if got.Valid() {
		t.Error("legacy tokens must be treated as expired")
	}
}

func TestReadTokenMissing(t *testing.T) {
	useTempTokenDir(t)

	_, err := readToken("nobody")
	if err == nil || !strings.Contains(err.Error(), "nobody") {
		t.Fatalf("readToken() error = %v", err)
	}
	if _, err := GetHTTPClientForAccount(context.Background(), "nobody"); err == nil {
		t.Error("GetHTTPClientForAccount() should fail without a token")
	}
}

func TestListAccounts(t *testing.T) {
	dir := useTempTokenDir(t)

	for _, account := range []string{"work", "default"} {
		if err := writeToken(account, &oauth2.Token{AccessToken: "a"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "google-bad.name.token"), []byte("x y"), 0600); err != nil {
		t.Fatal(err)
	}

	accounts, err := ListAccounts()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(accounts, ",") != "default,work" {
		t.Errorf("ListAccounts() = %v", accounts)
	}
}

func TestMigrateDefaultToken(t *testing.T) {
	dir := useTempTokenDir(t)

	oldTokenFile := filepath.Join(dir, "google.token")
	newTokenFile := filepath.Join(dir, "google-default.token")

	tokenData := []byte("test_access_token test_refresh_token")
	if err := os.WriteFile(oldTokenFile, tokenData, 0600); err != nil {
		t.Fatal(err)
	}

	if err := MigrateDefaultToken(); err != nil {
		t.Fatalf("MigrateDefaultToken() error = %v", err)
	}

	if _, err := os.Stat(newTokenFile); os.IsNotExist(err) {
		t.Error("New token file should exist after migration")
	}
	if _, err := os.Stat(oldTokenFile); !os.IsNotExist(err) {
		t.Error("Old token file should be removed after migration")
	}

	newData, err := os.ReadFile(newTokenFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(newData) != string(tokenData) {
		t.Errorf("Token data should be preserved during migration, got %s, want %s", string(newData), string(tokenData))
	}

	// Idempotent
	if err := MigrateDefaultToken(); err != nil {
		t.Fatalf("Second MigrateDefaultToken() error = %v", err)
	}
}

func TestGetAuthURLForAccount(t *testing.T) {
	useTempTokenDir(t)

	raw := GetAuthURLForAccount("work")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()
	if q.Get("state") != "work" {
		t.Errorf("state = %q, want work", q.Get("state"))
	}
	if q.Get("access_type") != "offline" {
		t.Errorf("access_type = %q, want offline", q.Get("access_type"))
	}
	if q.Get("client_id") != "client-id" {
		t.Errorf("client_id = %q", q.Get("client_id"))
	}
	if q.Get("redirect_uri") != DefaultRedirectURL {
		t.Errorf("redirect_uri = %q", q.Get("redirect_uri"))
	}
	if !strings.Contains(q.Get("scope"), "auth/drive") {
		t.Errorf("scope %q should include the drive scope", q.Get("scope"))
	}
}

func TestRevokeTokenForAccount(t *testing.T) {
	useTempTokenDir(t)

	var revoked string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Error(err)
		}
		revoked = r.Form.Get("token")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	prev := revokeURL
	revokeURL = srv.URL
	defer func() { revokeURL = prev }()

	if err := writeToken("work", &oauth2.Token{AccessToken: "a", RefreshToken: "r"}); err != nil {
		t.Fatal(err)
	}

	if err := RevokeTokenForAccount(context.Background(), "work"); err != nil {
		t.Fatalf("RevokeTokenForAccount() error = %v", err)
	}
	if revoked != "r" {
		t.Errorf("revoked token = %q, want the refresh token", revoked)
	}
	if HasTokenForAccount("work") {
		t.Error("token file should be removed after revocation")
	}
}

func TestRevokeFailureStillRemovesToken(t *testing.T) {
	useTempTokenDir(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_token"})
	}))
	defer srv.Close()

	prev := revokeURL
	revokeURL = srv.URL
	defer func() { revokeURL = prev }()

	if err := writeToken("work", &oauth2.Token{AccessToken: "a"}); err != nil {
		t.Fatal(err)
	}

	if err := RevokeTokenForAccount(context.Background(), "work"); err == nil {
		t.Error("RevokeTokenForAccount() should report the revocation failure")
	}
	if HasTokenForAccount("work") {
		t.Error("token file should be removed even when revocation fails")
	}
}

func TestGetAuthenticationErrorMessage(t *testing.T) {
	tests := []struct {
		name    string
		account string
	}{
		{"default account", "default"},
		{"work account", "work"},
		{"personal account", "personal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := GetAuthenticationErrorMessage(tt.account)
			if msg == "" {
				t.Error("GetAuthenticationErrorMessage() should return non-empty message")
			}
			if !strings.Contains(msg, tt.account) {
				t.Errorf("GetAuthenticationErrorMessage() should mention account %s", tt.account)
			}
			if !strings.Contains(msg, "OAuth") {
				t.Error("GetAuthenticationErrorMessage() should mention OAuth")
			}
		})
	}
}
