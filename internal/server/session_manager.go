package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdrive-endpoint/internal/instrumentation"
	"github.com/teemow/gdrive-endpoint/internal/logging"
)

// AccountHeader names the Google account a streamable HTTP client acts as
const AccountHeader = "X-Drive-Account"

// ErrUnknownSession is returned for session IDs this server never issued
var ErrUnknownSession = errors.New("unknown session")

// sessionInfo tracks session metadata for cleanup
type sessionInfo struct {
	account    string
	lastAccess time.Time
}

// SessionIDManager issues MCP session IDs and remembers which Google
// account each session acts as, so several accounts can share one
// server instance.
type SessionIDManager struct {
	sessions       map[string]*sessionInfo // Maps session ID to session info
	mu             sync.RWMutex
	cleanupTicker  *time.Ticker
	cleanupDone    chan struct{}
	stopOnce       sync.Once
	sessionTimeout time.Duration
	logger         *slog.Logger
	metrics        *instrumentation.Metrics
}

var _ mcpserver.SessionIdManager = (*SessionIDManager)(nil)

// NewSessionIDManager creates a new session ID manager with default logger
func NewSessionIDManager() *SessionIDManager {
	return NewSessionIDManagerWithLogger(24*time.Hour, slog.Default())
}

// NewSessionIDManagerWithLogger creates a new session ID manager with custom timeout and logger
func NewSessionIDManagerWithLogger(timeout time.Duration, logger *slog.Logger) *SessionIDManager {
	if logger == nil {
		logger = slog.Default()
	}

	m := &SessionIDManager{
		sessions:       make(map[string]*sessionInfo),
		cleanupTicker:  time.NewTicker(10 * time.Minute),
		cleanupDone:    make(chan struct{}),
		sessionTimeout: timeout,
		logger:         logger,
	}

	go m.cleanupExpiredSessions()

	return m
}

// SetMetrics makes the manager track the number of open sessions
func (m *SessionIDManager) SetMetrics(metrics *instrumentation.Metrics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = metrics
}

// countSessions must be called with m.mu held
func (m *SessionIDManager) countSessions(delta int) {
	m.metrics.AddActiveSessions(context.Background(), int64(delta))
}

// Generate issues a new session ID
func (m *SessionIDManager) Generate() string {
	sessionID := uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = &sessionInfo{lastAccess: time.Now()}
	m.countSessions(1)
	return sessionID
}

// Validate reports whether the session ID was issued here and is still live
func (m *SessionIDManager) Validate(sessionID string) (bool, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return false, ErrUnknownSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.sessions[sessionID]
	if !ok {
		return false, ErrUnknownSession
	}
	info.lastAccess = time.Now()
	return false, nil
}

// Terminate ends a session on the client's request
func (m *SessionIDManager) Terminate(sessionID string) (bool, error) {
	m.RemoveSession(sessionID)
	return false, nil
}

// AccountForSession returns the account bound to a session, or "" when
// the session is unknown or unbound
func (m *SessionIDManager) AccountForSession(sessionID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if info, ok := m.sessions[sessionID]; ok {
		info.lastAccess = time.Now()
		return info.account
	}
	return ""
}

// BindAccount associates an account with a session ID. Later requests of
// the session act as that account even without the account header.
func (m *SessionIDManager) BindAccount(sessionID, account string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	info, ok := m.sessions[sessionID]
	if !ok {
		info = &sessionInfo{}
		m.sessions[sessionID] = info
		m.countSessions(1)
	}
	if info.account != account {
		m.logger.Debug("session bound to account", logging.Account(account))
	}
	info.account = account
	info.lastAccess = time.Now()
}

// RemoveSession removes a session from the manager
func (m *SessionIDManager) RemoveSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sessionID]; ok {
		delete(m.sessions, sessionID)
		m.countSessions(-1)
	}
}

// ListSessions returns all active session IDs
func (m *SessionIDManager) ListSessions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]string, 0, len(m.sessions))
	for sessionID := range m.sessions {
		sessions = append(sessions, sessionID)
	}
	return sessions
}

func (m *SessionIDManager) expire(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	expired := 0
	for sessionID, info := range m.sessions {
		if now.Sub(info.lastAccess) > m.sessionTimeout {
			delete(m.sessions, sessionID)
			expired++
		}
	}
	m.countSessions(-expired)
	return expired
}

// cleanupExpiredSessions periodically removes expired sessions
func (m *SessionIDManager) cleanupExpiredSessions() {
	for {
		select {
		case now := <-m.cleanupTicker.C:
			if n := m.expire(now); n > 0 {
				m.logger.Info("cleaned up expired sessions", "count", n)
			}
		case <-m.cleanupDone:
			return
		}
	}
}

// Stop stops the session cleanup goroutine
func (m *SessionIDManager) Stop() {
	m.stopOnce.Do(func() {
		m.cleanupTicker.Stop()
		close(m.cleanupDone)
	})
}
