package models

// Event types carried over the WebSocket connection and the Redis bridge.
const (
	EventMessage = "message"
	EventTyping  = "typing"
	EventJoin    = "join"
	EventLeave   = "leave"
)

// Event is the wire envelope for everything a chat connection carries.
// Exactly one of Message or Typing is set, depending on Type.
type Event struct {
	Type    string       `json:"type"`
	RoomID  string       `json:"room_id,omitempty"`
	Message *ChatMessage `json:"message,omitempty"`
	Typing  *TypingEvent `json:"typing,omitempty"`
}

// TypingEvent is a transient typing-state change. It is relayed to room
// members but never persisted; receivers auto-expire stale entries.
type TypingEvent struct {
	RoomID   string `json:"room_id"`
	UserID   string `json:"user_id"`
	IsTyping bool   `json:"is_typing"`
}
