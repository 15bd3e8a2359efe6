package server

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionIDManager_Lifecycle(t *testing.T) {
	m := NewSessionIDManager()
	defer m.Stop()

	id := m.Generate()
	require.NotEmpty(t, id)

	terminated, err := m.Validate(id)
	require.NoError(t, err)
	assert.False(t, terminated)

	assert.Empty(t, m.AccountForSession(id))
	m.BindAccount(id, "work")
	assert.Equal(t, "work", m.AccountForSession(id))
	assert.Contains(t, m.ListSessions(), id)

	notAllowed, err := m.Terminate(id)
	require.NoError(t, err)
	assert.False(t, notAllowed)

	_, err = m.Validate(id)
	assert.ErrorIs(t, err, ErrUnknownSession)
	assert.Empty(t, m.AccountForSession(id))
}

func TestSessionIDManager_ValidateRejectsForeignIDs(t *testing.T) {
	m := NewSessionIDManager()
	defer m.Stop()

	_, err := m.Validate("not-a-uuid")
	assert.ErrorIs(t, err, ErrUnknownSession)

	_, err = m.Validate("0b0e8a57-7fd4-4c43-9d1e-2a1f1c1a9e11")
	assert.ErrorIs(t, err, ErrUnknownSession)
}

func TestSessionIDManager_Expire(t *testing.T) {
	m := NewSessionIDManagerWithLogger(time.Minute, slog.Default())
	defer m.Stop()

	id := m.Generate()
	m.BindAccount(id, "personal")

	assert.Equal(t, 0, m.expire(time.Now()))
	assert.Equal(t, 1, m.expire(time.Now().Add(2*time.Minute)))
	assert.Empty(t, m.ListSessions())
}

func TestSessionIDManager_StopTwice(t *testing.T) {
	m := NewSessionIDManager()
	m.Stop()
	m.Stop()
}
