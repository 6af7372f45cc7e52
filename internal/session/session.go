// Package session owns the connection lifecycle for one chat user across
// ride rooms: connect, join, leave, send, typing, and the reconnect loop.
// A Manager is constructed per chat screen/controller and injected into it;
// there is no process-wide singleton.
package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"ridechat/backend/internal/config"
	"ridechat/backend/internal/models"
	"ridechat/backend/internal/store"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// ConnState is the session's connection state, observable by the UI to
// drive the Online/Connecting indicator.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Subscription delivers inbound messages for one room to one handler.
// Subscribing again for the same room replaces the prior subscription;
// Close stops delivery explicitly.
type Subscription struct {
	m      *Manager
	roomID string
	fn     func(models.ChatMessage)
}

// Close unregisters the subscription. Closing twice is a no-op.
func (sub *Subscription) Close() {
	sub.m.mu.Lock()
	defer sub.m.mu.Unlock()
	if sub.m.subs[sub.roomID] == sub {
		delete(sub.m.subs, sub.roomID)
	}
}

// Manager is one logical connection per user, shared across all rooms the
// user chats in. Inbound events and user actions are applied to the store
// as discrete, non-overlapping operations.
type Manager struct {
	transport Transport
	store     *store.Store

	mu        sync.Mutex
	state     ConnState
	userID    string
	userName  string
	userPhoto string
	rooms     map[string]struct{}
	subs      map[string]*Subscription
	onState   func(ConnState)
	runCancel context.CancelFunc
}

// NewManager creates a session over the given transport with an empty store.
func NewManager(t Transport) *Manager {
	return &Manager{
		transport: t,
		store:     store.New(),
		rooms:     make(map[string]struct{}),
		subs:      make(map[string]*Subscription),
	}
}

// SetIdentity sets the sender snapshot stamped onto outgoing messages.
func (m *Manager) SetIdentity(name, photo string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userName = name
	m.userPhoto = photo
}

// Store exposes the read side for the UI: ordered snapshots, typing sets,
// reply resolution.
func (m *Manager) Store() *store.Store { return m.store }

// State returns the current connection state.
func (m *Manager) State() ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// OnStateChange registers a callback invoked on every state transition.
func (m *Manager) OnStateChange(fn func(ConnState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onState = fn
}

func (m *Manager) setState(s ConnState) {
	m.mu.Lock()
	if m.state == s {
		m.mu.Unlock()
		return
	}
	m.state = s
	fn := m.onState
	m.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

// Connect establishes connectivity for userID. Connecting while already
// connected for the same user is a no-op; connecting for a different user
// tears down the prior session first.
func (m *Manager) Connect(ctx context.Context, userID string) error {
	m.mu.Lock()
	if m.state == StateConnected && m.userID == userID {
		m.mu.Unlock()
		return nil
	}
	active := m.state != StateDisconnected
	m.mu.Unlock()
	if active {
		m.Disconnect()
	}

	m.setState(StateConnecting)
	if err := m.transport.Connect(ctx, userID); err != nil {
		m.setState(StateDisconnected)
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	m.userID = userID
	m.runCancel = cancel
	m.mu.Unlock()
	m.setState(StateConnected)

	go m.readLoop(runCtx)
	return nil
}

// Disconnect releases the connection and implicitly leaves all joined rooms.
// It always succeeds locally, even when the transport is already down.
// Message logs survive; membership and typing state do not.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	cancel := m.runCancel
	m.runCancel = nil
	m.rooms = make(map[string]struct{})
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.store.ClearAllTyping()
	if err := m.transport.Disconnect(); err != nil {
		log.Printf("transport disconnect: %v", err)
	}
	m.setState(StateDisconnected)
}

// JoinRoom subscribes the session to a room. Requires an active connection.
// Joining an already-joined room is a no-op.
func (m *Manager) JoinRoom(roomID string) error {
	m.mu.Lock()
	if m.state != StateConnected {
		m.mu.Unlock()
		return ErrNotConnected
	}
	if _, ok := m.rooms[roomID]; ok {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	if err := m.transport.JoinRoom(roomID); err != nil {
		return err
	}

	m.mu.Lock()
	m.rooms[roomID] = struct{}{}
	m.mu.Unlock()
	return nil
}

// LeaveRoom unsubscribes from a room; leaving an unjoined room is a no-op.
// Pending typing-clear timers for the room are cancelled. The room's message
// log is kept, so a clean leave/join cycle loses nothing.
func (m *Manager) LeaveRoom(roomID string) error {
	m.mu.Lock()
	_, member := m.rooms[roomID]
	delete(m.rooms, roomID)
	connected := m.state == StateConnected
	m.mu.Unlock()

	if !member {
		return nil
	}
	m.store.ClearRoomTyping(roomID)
	if connected {
		if err := m.transport.LeaveRoom(roomID); err != nil {
			log.Printf("leave room %s: %v", roomID, err)
		}
	}
	return nil
}

// Rooms returns the rooms the session is currently joined to.
func (m *Manager) Rooms() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		out = append(out, id)
	}
	return out
}

// Send validates, optimistically appends and transmits a text message.
// The returned message carries the assigned ID; the inbound echo of that ID
// is deduplicated by the store.
func (m *Manager) Send(roomID, body, replyToID string) (*models.ChatMessage, error) {
	msg := models.ChatMessage{
		ID:        uuid.New().String(),
		RoomID:    roomID,
		Body:      strings.TrimSpace(body),
		Kind:      models.KindText,
		SentAt:    time.Now(),
		ReplyToID: replyToID,
	}

	m.mu.Lock()
	msg.SenderID = m.userID
	msg.SenderName = m.userName
	msg.SenderPhoto = m.userPhoto
	connected := m.state == StateConnected
	m.mu.Unlock()

	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if !connected {
		return nil, ErrNotConnected
	}

	m.store.Append(msg)
	if err := m.transport.SendMessage(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SetTyping broadcasts the local user's typing state for a room.
func (m *Manager) SetTyping(roomID string, isTyping bool) error {
	m.mu.Lock()
	userID := m.userID
	connected := m.state == StateConnected
	m.mu.Unlock()

	if !connected {
		return ErrNotConnected
	}
	return m.transport.SendTyping(roomID, userID, isTyping)
}

// React toggles the local user's reaction on a message.
func (m *Manager) React(roomID, messageID, emoji string) {
	m.mu.Lock()
	userID := m.userID
	m.mu.Unlock()
	m.store.ToggleReaction(roomID, messageID, emoji, userID)
}

// Subscribe registers a handler for inbound messages in a room, replacing
// any prior subscription for that room.
func (m *Manager) Subscribe(roomID string, fn func(models.ChatMessage)) *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub := &Subscription{m: m, roomID: roomID, fn: fn}
	m.subs[roomID] = sub
	return sub
}

// readLoop consumes inbound events until the session is torn down,
// reconnecting with capped exponential backoff after an unexpected drop.
func (m *Manager) readLoop(ctx context.Context) {
	for {
		for ev := range m.transport.Events() {
			m.dispatch(ev)
		}
		// The events channel closed: either a deliberate disconnect or a
		// transport drop.
		if ctx.Err() != nil {
			return
		}
		if err := m.reconnect(ctx); err != nil {
			m.setState(StateDisconnected)
			return
		}
	}
}

func (m *Manager) reconnect(ctx context.Context) error {
	m.setState(StateConnecting)

	m.mu.Lock()
	userID := m.userID
	m.mu.Unlock()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = config.ReconnectInitialInterval
	b.MaxInterval = config.ReconnectMaxInterval
	b.MaxElapsedTime = 0 // keep trying until the session is torn down

	err := backoff.Retry(func() error {
		return m.transport.Connect(ctx, userID)
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return err
	}

	// Re-establish room subscriptions; join is idempotent server-side.
	for _, roomID := range m.Rooms() {
		if err := m.transport.JoinRoom(roomID); err != nil {
			log.Printf("rejoin room %s: %v", roomID, err)
		}
	}
	m.setState(StateConnected)
	return nil
}

func (m *Manager) dispatch(ev models.Event) {
	switch ev.Type {
	case models.EventMessage:
		if ev.Message == nil {
			return
		}
		if !m.store.Append(*ev.Message) {
			// Echo of a message this session already rendered.
			return
		}
		m.mu.Lock()
		sub := m.subs[ev.Message.RoomID]
		m.mu.Unlock()
		if sub != nil {
			sub.fn(*ev.Message)
		}

	case models.EventTyping:
		if ev.Typing == nil {
			return
		}
		m.mu.Lock()
		self := ev.Typing.UserID == m.userID
		m.mu.Unlock()
		if self {
			return
		}
		m.store.SetTyping(ev.Typing.RoomID, ev.Typing.UserID, ev.Typing.IsTyping)
	}
}
