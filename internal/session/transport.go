package session

import (
	"context"
	"errors"

	"ridechat/backend/internal/models"
)

var (
	// ErrNotConnected is returned when an action requires a live connection.
	// Recoverable: the caller reconnects (or waits for the automatic
	// reconnect) and retries.
	ErrNotConnected = errors.New("session: not connected")

	// ErrConnectionFailed wraps transport dial failures. The UI shows
	// "Connecting..." and retries; it is never fatal.
	ErrConnectionFailed = errors.New("session: transport unreachable")
)

// Transport is the connection-level collaborator a session drives. The
// production implementation speaks WebSocket to the ride-chat backend;
// tests plug in a fake.
type Transport interface {
	// Connect establishes connectivity for userID.
	Connect(ctx context.Context, userID string) error
	// Disconnect releases the connection. It must succeed locally even if
	// the transport is already down.
	Disconnect() error

	JoinRoom(roomID string) error
	LeaveRoom(roomID string) error

	SendMessage(msg *models.ChatMessage) error
	SendTyping(roomID, userID string, isTyping bool) error

	// Events returns the channel inbound events arrive on. The channel is
	// closed when the underlying connection drops; after a successful
	// Connect it returns a fresh channel.
	Events() <-chan models.Event
}
