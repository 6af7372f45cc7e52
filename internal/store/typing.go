package store

import "time"

// SetTyping records a typing-state change for a user in a room. A true flag
// arms (or re-arms) an auto-clear timer of TypingTTL, so the flag disappears
// even if the explicit false event is lost on the way.
func (s *Store) SetTyping(roomID, userID string, isTyping bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.room(roomID)
	if timer, ok := r.typing[userID]; ok {
		timer.Stop()
		delete(r.typing, userID)
	}
	if !isTyping {
		return
	}

	// The closure clears the flag only while its own timer is still the
	// active one: a stale timer that lost the Stop race must not wipe a
	// freshly re-armed flag.
	var timer *time.Timer
	timer = time.AfterFunc(s.TypingTTL, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if r, ok := s.rooms[roomID]; ok && r.typing[userID] == timer {
			delete(r.typing, userID)
		}
	})
	r.typing[userID] = timer
}

// TypingUsers returns the users currently typing in a room, sorted for
// stable rendering.
func (s *Store) TypingUsers(roomID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[roomID]
	if !ok {
		return nil
	}
	return sortedUsers(r.typing)
}

// ClearRoomTyping cancels every pending typing-clear timer for a room. The
// session calls this when the local user leaves the room.
func (s *Store) ClearRoomTyping(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.rooms[roomID]; ok {
		for u, timer := range r.typing {
			timer.Stop()
			delete(r.typing, u)
		}
	}
}

// ClearAllTyping cancels every typing timer in every room, as happens on
// disconnect. Message logs are left untouched.
func (s *Store) ClearAllTyping() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.rooms {
		for u, timer := range r.typing {
			timer.Stop()
			delete(r.typing, u)
		}
	}
}
