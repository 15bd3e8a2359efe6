// Package google manages per-account OAuth2 credentials for the Drive API.
//
// Tokens are stored as JSON files named google-<account>.token in the token
// directory. Refreshed tokens are written back, so a stored refresh token
// keeps an account connected until it is revoked. The package also covers the
// connect and disconnect flow: building the consent URL, exchanging the
// authorization code, revoking tokens and reading the signed-in user's
// profile.
//
// The OAuth client registration is set once with Configure, usually from the
// application configuration.
package google
