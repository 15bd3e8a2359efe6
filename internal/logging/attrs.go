package logging

import (
	"log/slog"
	"net/url"
	"time"
)

// Attribute keys shared by every log line
const (
	KeyComponent  = "component"
	KeyAccount    = "account"
	KeyMethod     = "method"
	KeyResource   = "resource"
	KeyPath       = "path"
	KeyStatusCode = "status_code"
	KeyDuration   = "duration"
	KeyError      = "error"
)

// WithAccount scopes logger to one account
func WithAccount(logger *slog.Logger, account string) *slog.Logger {
	return logger.With(Account(account))
}

func Account(account string) slog.Attr { return slog.String(KeyAccount, account) }

// Method is the HTTP method or the transfer kind of a Drive request
func Method(method string) slog.Attr { return slog.String(KeyMethod, method) }

// Resource is the Drive collection a request addresses
func Resource(resource string) slog.Attr { return slog.String(KeyResource, resource) }

func StatusCode(code int) slog.Attr { return slog.Int(KeyStatusCode, code) }

func Duration(d time.Duration) slog.Attr { return slog.Duration(KeyDuration, d) }

// Path logs a request path or URL without its query, which can hold search
// terms and page tokens
func Path(path string) slog.Attr {
	if u, err := url.Parse(path); err == nil {
		u.RawQuery = ""
		u.Fragment = ""
		path = u.String()
	}
	return slog.String(KeyPath, path)
}

// Err is omitted from the output when err is nil
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
