package ws

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(c *Connection) []Message {
	var msgs []Message
	for {
		select {
		case msg := <-c.sendCh:
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

func TestHubSend(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	conn := NewConnection(nil, zerolog.Nop())
	connID := hub.Register(conn)

	require.NoError(t, hub.Send(connID, Message{Type: TypePong}))
	msgs := drain(conn)
	require.Len(t, msgs, 1)
	assert.Equal(t, TypePong, msgs[0].Type)

	assert.ErrorIs(t, hub.Send(uuid.New(), Message{Type: TypePong}), ErrConnectionNotFound)
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	sessionID := uuid.New()

	a := NewConnection(nil, zerolog.Nop())
	b := NewConnection(nil, zerolog.Nop())
	other := NewConnection(nil, zerolog.Nop())

	aID := hub.Register(a)
	bID := hub.Register(b)
	hub.Register(other)

	hub.Attach(sessionID, aID)
	hub.Attach(sessionID, bID)
	hub.Attach(sessionID, aID) // idempotent

	require.NoError(t, hub.BroadcastToSession(sessionID, Message{Type: TypeSessionSnapshot}))
	assert.Len(t, drain(a), 1)
	assert.Len(t, drain(b), 1)
	assert.Empty(t, drain(other))
}

func TestHubDetach(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	sessionID := uuid.New()

	conn := NewConnection(nil, zerolog.Nop())
	connID := hub.Register(conn)
	hub.Attach(sessionID, connID)
	hub.Detach(sessionID, connID)

	require.NoError(t, hub.BroadcastToSession(sessionID, Message{Type: TypeSessionSnapshot}))
	assert.Empty(t, drain(conn))
}

func TestConnectionSendQueueFull(t *testing.T) {
	conn := NewConnection(nil, zerolog.Nop())
	for i := 0; i < cap(conn.sendCh); i++ {
		require.NoError(t, conn.Send(Message{Type: TypePing}))
	}
	assert.ErrorIs(t, conn.Send(Message{Type: TypePing}), ErrSendQueueFull)
}
