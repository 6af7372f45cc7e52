package session

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"ridechat/backend/internal/models"

	"github.com/gorilla/websocket"
)

const wsWriteWait = 10 * time.Second

// WSTransport implements Transport over a gorilla/websocket connection to
// the ride-chat backend's /ws endpoint.
type WSTransport struct {
	URL    string // e.g. ws://localhost:8080/ws
	Token  string // bearer token from /auth/token
	Dialer *websocket.Dialer

	mu     sync.Mutex // guards conn and all writes
	conn   *websocket.Conn
	events chan models.Event
}

// NewWSTransport creates a transport for the given endpoint and token.
func NewWSTransport(url, token string) *WSTransport {
	return &WSTransport{
		URL:    url,
		Token:  token,
		Dialer: websocket.DefaultDialer,
	}
}

// Connect dials the backend. The server derives the user identity from the
// bearer token; userID is only echoed into the query for log correlation.
func (t *WSTransport) Connect(ctx context.Context, userID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn != nil {
		return nil
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+t.Token)

	conn, resp, err := t.Dialer.DialContext(ctx, t.URL, header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return err
	}

	events := make(chan models.Event, 64)
	t.conn = conn
	t.events = events
	go t.readLoop(conn, events)
	return nil
}

// Disconnect closes the connection. Safe to call when already down.
func (t *WSTransport) Disconnect() error {
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	if conn == nil {
		return nil
	}
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return conn.Close()
}

// Events returns the inbound event channel for the current connection.
func (t *WSTransport) Events() <-chan models.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.events
}

func (t *WSTransport) JoinRoom(roomID string) error {
	return t.writeEvent(models.Event{Type: models.EventJoin, RoomID: roomID})
}

func (t *WSTransport) LeaveRoom(roomID string) error {
	return t.writeEvent(models.Event{Type: models.EventLeave, RoomID: roomID})
}

func (t *WSTransport) SendMessage(msg *models.ChatMessage) error {
	return t.writeEvent(models.Event{
		Type:    models.EventMessage,
		RoomID:  msg.RoomID,
		Message: msg,
	})
}

func (t *WSTransport) SendTyping(roomID, userID string, isTyping bool) error {
	return t.writeEvent(models.Event{
		Type:   models.EventTyping,
		RoomID: roomID,
		Typing: &models.TypingEvent{RoomID: roomID, UserID: userID, IsTyping: isTyping},
	})
}

func (t *WSTransport) writeEvent(ev models.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return ErrNotConnected
	}
	t.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return t.conn.WriteJSON(ev)
}

// readLoop pushes inbound frames onto the events channel until the
// connection drops, then closes the channel so the session can start its
// reconnect cycle.
func (t *WSTransport) readLoop(conn *websocket.Conn, events chan models.Event) {
	defer close(events)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.mu.Lock()
			if t.conn == conn {
				t.conn = nil
			}
			t.mu.Unlock()
			conn.Close()
			return
		}

		// The hub batches queued events into one frame.
		dec := json.NewDecoder(bytes.NewReader(data))
		for {
			var ev models.Event
			if err := dec.Decode(&ev); err != nil {
				break
			}
			events <- ev
		}
	}
}
