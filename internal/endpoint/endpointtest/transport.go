// Package endpointtest provides an in-memory endpoint.Transport for tests.
package endpointtest

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/oauth2"

	"github.com/teemow/gdrive-endpoint/internal/endpoint"
)

// Call is one request seen by a Transport.
type Call struct {
	Method     string
	Descriptor endpoint.Descriptor
	// Request holds the transfer request for the custom methods
	Request any
}

// Transport records every request and answers with Result, or with Err
// when it is set.
type Transport struct {
	mu    sync.Mutex
	calls []Call

	Result endpoint.Result
	Err    error
}

var _ endpoint.Transport = (*Transport)(nil)

// New returns a Transport answering {"ok": true}.
func New() *Transport {
	return &Transport{Result: endpoint.Result{"ok": true}}
}

func (t *Transport) record(c Call) (endpoint.Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, c)
	return t.Result, t.Err
}

// Calls returns a copy of the recorded calls.
func (t *Transport) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Call(nil), t.calls...)
}

// Last returns the most recent call, or the zero Call.
func (t *Transport) Last() Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.calls) == 0 {
		return Call{}
	}
	return t.calls[len(t.calls)-1]
}

func (t *Transport) GetRequest(_ context.Context, d endpoint.Descriptor) (endpoint.Result, error) {
	return t.record(Call{Method: "GET", Descriptor: d})
}

func (t *Transport) PostRequest(_ context.Context, d endpoint.Descriptor) (endpoint.Result, error) {
	return t.record(Call{Method: "POST", Descriptor: d})
}

func (t *Transport) PutRequest(_ context.Context, d endpoint.Descriptor) (endpoint.Result, error) {
	return t.record(Call{Method: "PUT", Descriptor: d})
}

func (t *Transport) PatchRequest(_ context.Context, d endpoint.Descriptor) (endpoint.Result, error) {
	return t.record(Call{Method: "PATCH", Descriptor: d})
}

func (t *Transport) DeleteRequest(_ context.Context, d endpoint.Descriptor) (endpoint.Result, error) {
	return t.record(Call{Method: "DELETE", Descriptor: d})
}

func (t *Transport) DownloadFile(_ context.Context, req endpoint.DownloadRequest) (endpoint.Result, error) {
	return t.record(Call{Method: "DOWNLOAD", Request: req})
}

func (t *Transport) UploadFile(_ context.Context, req endpoint.UploadRequest) (endpoint.Result, error) {
	return t.record(Call{Method: "UPLOAD", Request: req})
}

func (t *Transport) ExportFile(_ context.Context, req endpoint.ExportRequest) (endpoint.Result, error) {
	return t.record(Call{Method: "EXPORT", Request: req})
}

func (t *Transport) DownloadExportLink(_ context.Context, req endpoint.ExportLinkRequest) (endpoint.Result, error) {
	return t.record(Call{Method: "EXPORT_LINK", Request: req})
}

// Tokens is a google.TokenProvider over a fixed set of connected accounts.
type Tokens map[string]bool

// TokenSource returns a static token for connected accounts
func (t Tokens) TokenSource(_ context.Context, account string) (oauth2.TokenSource, error) {
	if !t[account] {
		return nil, errors.New("no token for account " + account)
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-" + account, TokenType: "Bearer"}), nil
}

// HasTokenForAccount reports whether the account is in the set
func (t Tokens) HasTokenForAccount(account string) bool {
	return t[account]
}

// RefreshToken succeeds for connected accounts
func (t Tokens) RefreshToken(_ context.Context, account string) error {
	if !t[account] {
		return errors.New("no token for account " + account)
	}
	return nil
}

// RemoveToken drops the account from the set
func (t Tokens) RemoveToken(account string) error {
	delete(t, account)
	return nil
}
