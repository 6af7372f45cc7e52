package models

import (
	"time"

	"gorm.io/gorm"
)

// ChatHistory is a chat message persisted in PostgreSQL so clients can
// back-fill a room after joining. The embedded gorm.Model provides the
// surrogate key and row timestamps.
type ChatHistory struct {
	gorm.Model

	// MessageID is the client-visible message ID (UUID), unique per room.
	MessageID string `gorm:"type:uuid;uniqueIndex;not null"`
	// RoomID is the room the message was sent to.
	RoomID string `gorm:"type:uuid;not null;index:idx_room_msg"`
	// SenderID is the ID of the sending user.
	SenderID string `gorm:"type:text;not null;index:idx_room_msg"`
	// SenderName and SenderPhoto are the sender snapshot at send time.
	SenderName  string `gorm:"type:text"`
	SenderPhoto string `gorm:"type:text"`
	// Body is the message content.
	Body string `gorm:"type:text;not null"`
	// Kind is the message kind ("text", "image", "location", "system").
	Kind string `gorm:"type:text;not null"`
	// ReplyToID references the MessageID being replied to, if any.
	ReplyToID *string `gorm:"type:uuid;index"`
	// SentAt orders messages within a room.
	SentAt time.Time `gorm:"index"`
}

// AsChatMessage converts a persisted row back to the wire model.
func (h *ChatHistory) AsChatMessage() ChatMessage {
	msg := ChatMessage{
		ID:          h.MessageID,
		RoomID:      h.RoomID,
		SenderID:    h.SenderID,
		SenderName:  h.SenderName,
		SenderPhoto: h.SenderPhoto,
		Body:        h.Body,
		Kind:        h.Kind,
		SentAt:      h.SentAt,
	}
	if h.ReplyToID != nil {
		msg.ReplyToID = *h.ReplyToID
	}
	return msg
}
