package chathub

import "ridechat/backend/internal/models"

// Client is the interface for any type of connection attached to the hub.
// It abstracts the underlying communication mechanism so the hub can manage
// different client types uniformly.
type Client interface {
	// GetUserID returns the unique identifier for the user behind the client.
	GetUserID() string

	// JoinRoom subscribes the client to a room. Joining twice is a no-op.
	JoinRoom(roomID string)
	// LeaveRoom unsubscribes the client from a room. Leaving a room the
	// client never joined is a no-op.
	LeaveRoom(roomID string)
	// InRoom reports whether the client is subscribed to the room.
	InRoom(roomID string) bool
	// Rooms returns the rooms the client is currently subscribed to.
	Rooms() []string

	// GetSendChannel returns the channel the hub writes outbound events to.
	GetSendChannel() chan<- models.Event

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's connection and associated channels.
	Close()
}
