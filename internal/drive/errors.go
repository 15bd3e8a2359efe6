package drive

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

var (
	// ErrUnauthorized is returned when Google rejects the account's
	// credentials
	ErrUnauthorized = errors.New("drive credentials rejected")

	// ErrNotFound is returned for 404 responses
	ErrNotFound = errors.New("drive resource not found")

	// ErrNoStore is returned by file transfers when no file store is configured
	ErrNoStore = errors.New("no file store configured")
)

// classify tags API errors with the package's sentinel errors and fires the
// unauthorized hook. The *googleapi.Error stays reachable with errors.As.
func (c *Client) classify(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	switch {
	case apiErr.Code == http.StatusUnauthorized || isInvalidCredentials(apiErr):
		c.unauthorized()
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	case apiErr.Code == http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	default:
		return err
	}
}

// checkTransportError detects refresh failures surfaced by the OAuth2
// transport, which mean the stored refresh token is no longer accepted
func (c *Client) checkTransportError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		c.unauthorized()
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return fmt.Errorf("request failed: %w", err)
}

func isInvalidCredentials(apiErr *googleapi.Error) bool {
	msg := strings.ToLower(apiErr.Message + " " + apiErr.Body)
	return strings.Contains(msg, "invalid credentials") || strings.Contains(msg, "autherror")
}

func (c *Client) unauthorized() {
	c.logger.Warn("drive rejected the account's credentials")
	if c.onUnauthorized != nil {
		c.onUnauthorized(c.account)
	}
}
