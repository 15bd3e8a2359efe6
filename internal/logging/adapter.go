package logging

import (
	"fmt"
	"log/slog"
)

// Logger is the printf-style interface the MCP transports log through.
// It matches github.com/mark3labs/mcp-go/util.Logger.
type Logger interface {
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}

// SlogAdapter routes printf-style transport logs into an slog.Logger,
// tagged with the component that produced them.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter wrapping the given slog.Logger.
// If logger is nil, slog.Default() is used.
func NewSlogAdapter(logger *slog.Logger, component string) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	if component != "" {
		logger = logger.With(slog.String(KeyComponent, component))
	}
	return &SlogAdapter{logger: logger}
}

// Infof logs a formatted message at info level
func (a *SlogAdapter) Infof(format string, v ...any) {
	a.logger.Info(fmt.Sprintf(format, v...))
}

// Errorf logs a formatted message at error level
func (a *SlogAdapter) Errorf(format string, v ...any) {
	a.logger.Error(fmt.Sprintf(format, v...))
}

// Logger returns the underlying slog.Logger for direct access when needed.
func (a *SlogAdapter) Logger() *slog.Logger {
	return a.logger
}
