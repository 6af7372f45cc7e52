// Package store holds the client-side, per-room ordered message log that a
// chat screen renders, plus the transient typing state. Every mutation is
// atomic with respect to readers: snapshots never observe a half-applied
// operation.
package store

import (
	"sort"
	"sync"
	"time"

	"ridechat/backend/internal/config"
	"ridechat/backend/internal/models"
)

// Store is the message log for one client session. It is owned by a single
// session and safe for use from the UI and the event-delivery goroutine.
type Store struct {
	// TypingTTL is how long a typing flag survives without refresh.
	TypingTTL time.Duration

	mu    sync.Mutex
	rooms map[string]*roomLog
}

type roomLog struct {
	messages []models.ChatMessage
	index    map[string]int         // message ID -> position in messages
	typing   map[string]*time.Timer // userID -> auto-clear timer
}

// New creates an empty store.
func New() *Store {
	return &Store{
		TypingTTL: config.TypingTTL,
		rooms:     make(map[string]*roomLog),
	}
}

func (s *Store) room(roomID string) *roomLog {
	r, ok := s.rooms[roomID]
	if !ok {
		r = &roomLog{
			index:  make(map[string]int),
			typing: make(map[string]*time.Timer),
		}
		s.rooms[roomID] = r
	}
	return r
}

// Append inserts a message into its room's log, keeping SentAt order with
// insertion-order tie-break. A message whose ID is already present is
// ignored; this is what makes the inbound echo of an optimistically
// rendered message a no-op. Returns whether the message was inserted.
func (s *Store) Append(msg models.ChatMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.room(msg.RoomID)
	if _, dup := r.index[msg.ID]; dup {
		return false
	}

	// Walk back from the tail; already-delivered messages never move
	// relative to each other.
	pos := len(r.messages)
	for pos > 0 && r.messages[pos-1].SentAt.After(msg.SentAt) {
		pos--
	}

	r.messages = append(r.messages, models.ChatMessage{})
	copy(r.messages[pos+1:], r.messages[pos:])
	r.messages[pos] = msg

	for i := pos; i < len(r.messages); i++ {
		r.index[r.messages[i].ID] = i
	}
	return true
}

// Snapshot returns a copy of the room's messages in delivery order. The
// copies share nothing with the live log, so later mutations never show
// through a snapshot already handed to the UI.
func (s *Store) Snapshot(roomID string) []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]models.ChatMessage, len(r.messages))
	for i := range r.messages {
		out[i] = cloneMessage(r.messages[i])
	}
	return out
}

// cloneMessage copies a message including its reactions, so the returned
// value aliases none of the log's mutable state.
func cloneMessage(m models.ChatMessage) models.ChatMessage {
	if m.Reactions != nil {
		reactions := make(map[string][]string, len(m.Reactions))
		for emoji, users := range m.Reactions {
			reactions[emoji] = append([]string(nil), users...)
		}
		m.Reactions = reactions
	}
	return m
}

// Len returns the number of messages held for a room.
func (s *Store) Len(roomID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomID]
	if !ok {
		return 0
	}
	return len(r.messages)
}

// AddReaction records userID's reaction on a message. Repeating an identical
// call is a no-op. Unknown messages are ignored.
func (s *Store) AddReaction(roomID, messageID, emoji, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addReactionLocked(roomID, messageID, emoji, userID)
}

func (s *Store) addReactionLocked(roomID, messageID, emoji, userID string) {
	msg := s.lookup(roomID, messageID)
	if msg == nil {
		return
	}
	if msg.Reactions == nil {
		msg.Reactions = make(map[string][]string)
	}
	for _, u := range msg.Reactions[emoji] {
		if u == userID {
			return
		}
	}
	msg.Reactions[emoji] = append(msg.Reactions[emoji], userID)
}

// RemoveReaction drops userID's reaction from a message. Removing the last
// user deletes the emoji entry entirely, so no zero-count reaction persists.
// Repeating an identical call is a no-op.
func (s *Store) RemoveReaction(roomID, messageID, emoji, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeReactionLocked(roomID, messageID, emoji, userID)
}

func (s *Store) removeReactionLocked(roomID, messageID, emoji, userID string) {
	msg := s.lookup(roomID, messageID)
	if msg == nil || msg.Reactions == nil {
		return
	}
	// Build a fresh slice: the old one may still be referenced by a
	// previously returned snapshot.
	users := msg.Reactions[emoji]
	kept := make([]string, 0, len(users))
	for _, u := range users {
		if u != userID {
			kept = append(kept, u)
		}
	}
	if len(kept) == 0 {
		delete(msg.Reactions, emoji)
		if len(msg.Reactions) == 0 {
			msg.Reactions = nil
		}
		return
	}
	msg.Reactions[emoji] = kept
}

// ToggleReaction adds the reaction if userID has not reacted with this emoji
// yet, and removes it otherwise. This is the long-press/quick-reaction
// behavior of the chat screen.
func (s *Store) ToggleReaction(roomID, messageID, emoji, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	has := false
	if msg := s.lookup(roomID, messageID); msg != nil {
		for _, u := range msg.Reactions[emoji] {
			if u == userID {
				has = true
				break
			}
		}
	}
	if has {
		s.removeReactionLocked(roomID, messageID, emoji, userID)
	} else {
		s.addReactionLocked(roomID, messageID, emoji, userID)
	}
}

// MarkEdited flags a message as edited. Unknown messages are ignored.
func (s *Store) MarkEdited(roomID, messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg := s.lookup(roomID, messageID); msg != nil {
		msg.Edited = true
	}
}

// ResolveReply looks up the message a reply points at, within the same room.
// The second return value is false when the message itself is unknown, has
// no reply target, or the target is missing (a dangling reference): the
// caller renders "original message unavailable" instead of failing.
func (s *Store) ResolveReply(roomID, messageID string) (*models.ChatMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.lookup(roomID, messageID)
	if msg == nil || msg.ReplyToID == "" {
		return nil, false
	}
	target := s.lookup(roomID, msg.ReplyToID)
	if target == nil {
		return nil, false
	}
	cp := cloneMessage(*target)
	return &cp, true
}

// lookup returns a pointer into the room's backing slice. Callers must hold
// s.mu and must not retain the pointer past the critical section.
func (s *Store) lookup(roomID, messageID string) *models.ChatMessage {
	r, ok := s.rooms[roomID]
	if !ok {
		return nil
	}
	pos, ok := r.index[messageID]
	if !ok {
		return nil
	}
	return &r.messages[pos]
}

// sortedUsers is a helper for stable typing snapshots.
func sortedUsers(set map[string]*time.Timer) []string {
	out := make([]string, 0, len(set))
	for u := range set {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}
