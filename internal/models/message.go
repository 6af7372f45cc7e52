package models

import (
	"errors"
	"strings"
	"time"
)

// Message kinds as rendered by the mobile client.
const (
	KindText     = "text"
	KindImage    = "image"
	KindLocation = "location"
	KindSystem   = "system"
)

// ErrEmptyBody is returned when a message body is empty or whitespace-only.
// Such messages are rejected before they ever reach the wire.
var ErrEmptyBody = errors.New("message body is empty")

// ChatMessage is one message in a ride room. The sender fields are a snapshot
// taken at send time and are never re-resolved afterwards.
type ChatMessage struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"room_id"`
	SenderID    string    `json:"sender_id"`
	SenderName  string    `json:"sender_name"`
	SenderPhoto string    `json:"sender_photo,omitempty"`
	Body        string    `json:"body"`
	SentAt      time.Time `json:"sent_at"`
	Kind        string    `json:"kind"`
	// ReplyToID is a weak reference to another message in the same room.
	// A dangling reference is legal and rendered as "original unavailable".
	ReplyToID string `json:"reply_to_id,omitempty"`
	Edited    bool   `json:"edited,omitempty"`
	// Reactions maps an emoji to the set of user IDs that reacted with it.
	// An emoji with no users must not appear in the map.
	Reactions map[string][]string `json:"reactions,omitempty"`
}

// Validate checks the fields a message must carry before it may be sent.
func (m *ChatMessage) Validate() error {
	if strings.TrimSpace(m.Body) == "" {
		return ErrEmptyBody
	}
	if m.RoomID == "" {
		return errors.New("message has no room")
	}
	return nil
}
