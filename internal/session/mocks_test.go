package session_test

import (
	"context"
	"errors"
	"sync"

	"ridechat/backend/internal/models"
)

// fakeTransport is a controllable in-memory Transport double. Tests emit
// inbound events with Emit and simulate a transport drop with Drop.
type fakeTransport struct {
	mu sync.Mutex

	connected    bool
	userID       string
	connectCalls int
	failConnects int // fail this many Connect attempts before succeeding

	joinCalls  map[string]int
	leaveCalls map[string]int
	sent       []models.ChatMessage
	typing     []models.TypingEvent

	events chan models.Event
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		joinCalls:  make(map[string]int),
		leaveCalls: make(map[string]int),
	}
}

func (t *fakeTransport) Connect(ctx context.Context, userID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connectCalls++
	if t.failConnects > 0 {
		t.failConnects--
		return errors.New("dial tcp: connection refused")
	}
	if t.connected {
		return nil
	}
	t.connected = true
	t.userID = userID
	t.events = make(chan models.Event, 16)
	return nil
}

func (t *fakeTransport) Disconnect() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return nil
	}
	t.connected = false
	close(t.events)
	return nil
}

func (t *fakeTransport) JoinRoom(roomID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.joinCalls[roomID]++
	return nil
}

func (t *fakeTransport) LeaveRoom(roomID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.leaveCalls[roomID]++
	return nil
}

func (t *fakeTransport) SendMessage(msg *models.ChatMessage) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return errors.New("transport is down")
	}
	t.sent = append(t.sent, *msg)
	return nil
}

func (t *fakeTransport) SendTyping(roomID, userID string, isTyping bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return errors.New("transport is down")
	}
	t.typing = append(t.typing, models.TypingEvent{RoomID: roomID, UserID: userID, IsTyping: isTyping})
	return nil
}

func (t *fakeTransport) Events() <-chan models.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.events
}

// Emit delivers an inbound event as if the server pushed it.
func (t *fakeTransport) Emit(ev models.Event) {
	t.mu.Lock()
	ch := t.events
	t.mu.Unlock()
	ch <- ev
}

// Drop simulates an unexpected transport drop: the events channel closes
// without a deliberate Disconnect.
func (t *fakeTransport) Drop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.connected {
		t.connected = false
		close(t.events)
	}
}

func (t *fakeTransport) ConnectCalls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connectCalls
}

func (t *fakeTransport) JoinCalls(roomID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.joinCalls[roomID]
}

func (t *fakeTransport) LeaveCalls(roomID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.leaveCalls[roomID]
}

func (t *fakeTransport) SentMessages() []models.ChatMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.ChatMessage, len(t.sent))
	copy(out, t.sent)
	return out
}

func (t *fakeTransport) TypingEvents() []models.TypingEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.TypingEvent, len(t.typing))
	copy(out, t.typing)
	return out
}
