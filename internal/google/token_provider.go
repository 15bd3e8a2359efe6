package google

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenProvider knows which accounts are connected and hands out their
// token sources
type TokenProvider interface {
	HasTokenForAccount(account string) bool
	TokenSource(ctx context.Context, account string) (oauth2.TokenSource, error)
	// RefreshToken forces a refresh of the stored token
	RefreshToken(ctx context.Context, account string) error
	// RemoveToken forgets the account locally without revoking it
	RemoveToken(account string) error
}

// FileTokenProvider serves the tokens stored in the token directory.
// Refreshed tokens are written back.
type FileTokenProvider struct{}

func NewFileTokenProvider() *FileTokenProvider {
	return &FileTokenProvider{}
}

func (FileTokenProvider) HasTokenForAccount(account string) bool {
	return HasTokenForAccount(account)
}

func (FileTokenProvider) TokenSource(ctx context.Context, account string) (oauth2.TokenSource, error) {
	return GetTokenSourceForAccount(ctx, account)
}

func (FileTokenProvider) RefreshToken(ctx context.Context, account string) error {
	return RefreshTokenForAccount(ctx, account)
}

func (FileTokenProvider) RemoveToken(account string) error {
	return RemoveTokenForAccount(account)
}
