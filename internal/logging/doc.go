// Package logging builds the process logger and the attributes log lines
// share.
//
// New returns a text or JSON slog logger at a given level. The attribute
// helpers keep key names consistent:
//
//	logger := logging.WithAccount(slog.Default(), "work")
//	logger.Debug("drive request completed",
//		logging.Method("GET"), logging.Resource("files"), logging.StatusCode(200))
//
// Path strips query strings, so search terms and page tokens never reach
// the log. Tokens are never logged.
//
// SlogAdapter feeds the printf-style logs of the MCP transports into slog.
package logging
