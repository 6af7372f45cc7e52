package models

import (
	"time"

	"github.com/lib/pq"
)

// RideRoom is the chat room attached to one ride. It holds the participant
// list and the room's active status.
type RideRoom struct {
	// RoomID is the unique identifier for the chat room (UUID).
	RoomID string `gorm:"primaryKey" json:"room_id"`
	// RideID links the room to the ride it belongs to.
	RideID string `gorm:"index" json:"ride_id"`
	// Title is the human-readable label shown in the chat header,
	// e.g. "LNMIIT Campus → Jaipur Railway Station".
	Title string `json:"title"`
	// CreatorID is the user who opened the ride and its room.
	CreatorID string `json:"creator_id"`
	// Participants are the user IDs currently part of the ride.
	Participants pq.StringArray `gorm:"type:text[]" json:"participants"`
	// IsActive indicates whether the room still accepts messages.
	IsActive bool `json:"is_active"`
	// StartedAt is when the room was created.
	StartedAt time.Time `json:"started_at"`
	// EndedAt is when the room was closed.
	EndedAt time.Time `json:"ended_at,omitempty"`
}
