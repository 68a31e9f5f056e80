package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnection_Decide(t *testing.T) {
	conn, err := NewConnection("listing-1", "buyer-1", "seller-1", "interested")
	require.NoError(t, err)
	require.Equal(t, ConnectionPending, conn.Status)

	require.NoError(t, conn.Decide(ConnectionApproved))
	assert.Equal(t, ConnectionApproved, conn.Status)

	err = conn.Decide(ConnectionRejected)
	assert.ErrorIs(t, err, ErrConflict, "a decision is final")

	pending, err := NewConnection("listing-1", "buyer-2", "seller-1", "")
	require.NoError(t, err)
	err = pending.Decide(ConnectionPending)
	assert.ErrorIs(t, err, ErrInvalidInput, "pending is not a decision")
}

func TestConnection_Reopen(t *testing.T) {
	conn, err := NewConnection("listing-1", "buyer-1", "seller-1", "first try")
	require.NoError(t, err)
	require.NoError(t, conn.Decide(ConnectionRejected))

	conn.Reopen("second try")

	assert.Equal(t, ConnectionPending, conn.Status)
	assert.Equal(t, "second try", conn.Intro)
}

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage("conn-1", "user-1", "  Is the lease assignable?  ")
	require.NoError(t, err)
	assert.Equal(t, "Is the lease assignable?", msg.Body)

	_, err = NewMessage("conn-1", "user-1", "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewMessage("conn-1", "user-1", strings.Repeat("a", maxMessageLength+1))
	assert.ErrorIs(t, err, ErrInvalidInput)

	longest, err := NewMessage("conn-1", "user-1", strings.Repeat("a", maxMessageLength))
	require.NoError(t, err)
	assert.Len(t, longest.Body, maxMessageLength)

	_, err = NewMessage("", "user-1", "hello")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
