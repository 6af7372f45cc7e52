package chathub

import (
	"log"
	"sync"

	"ridechat/backend/internal/models"
	"ridechat/backend/internal/storage"
)

// Hub owns every live connection on this node and routes chat events between
// them. Messages are persisted and published to Redis; the pub/sub listener
// fans them back out to local room members, so delivery works the same with
// one node or many.
type Hub struct {
	// mu guards clients. Only the Run goroutine mutates the map; the lock
	// lets other goroutines observe it.
	mu      sync.RWMutex
	clients map[string]Client // userID -> connection

	// Channels
	IncomingCh   chan models.Event
	RegisterCh   chan Client
	UnregisterCh chan Client

	Storage storage.Storage

	PubSubCh chan models.Event
}

// NewHub creates a hub backed by the given storage.
func NewHub(s storage.Storage) *Hub {
	return &Hub{
		clients:      make(map[string]Client),
		IncomingCh:   make(chan models.Event),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		Storage:      s,
		PubSubCh:     make(chan models.Event),
	}
}

// ClientCount returns the number of connections currently attached.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run is the hub's single dispatch loop. All membership and routing state is
// touched only from this goroutine.
func (h *Hub) Run() {
	h.StartPubSubListener()

	for {
		select {
		case client := <-h.RegisterCh:
			// A second connection for the same user replaces the first.
			h.mu.Lock()
			prev, ok := h.clients[client.GetUserID()]
			h.clients[client.GetUserID()] = client
			h.mu.Unlock()
			if ok && prev != client {
				prev.Close()
			}
			log.Printf("client registered: %s", client.GetUserID())

		case client := <-h.UnregisterCh:
			h.mu.Lock()
			current, ok := h.clients[client.GetUserID()]
			if ok && current == client {
				delete(h.clients, client.GetUserID())
			}
			h.mu.Unlock()
			if ok && current == client {
				client.Close()
				log.Printf("client unregistered: %s", client.GetUserID())
			}

		case ev := <-h.IncomingCh:
			h.handleIncoming(ev)

		case ev := <-h.PubSubCh:
			h.fanOut(ev)
		}
	}
}

// handleIncoming processes an event read from one of the local connections.
func (h *Hub) handleIncoming(ev models.Event) {
	switch ev.Type {
	case models.EventMessage:
		if ev.Message == nil {
			return
		}
		if err := ev.Message.Validate(); err != nil {
			log.Printf("dropping invalid message from %s: %v", ev.Message.SenderID, err)
			return
		}
		if err := h.Storage.SaveMessage(ev.Message); err != nil {
			log.Printf("ERROR: failed to persist message for room %s: %v", ev.Message.RoomID, err)
			return
		}
		ev.RoomID = ev.Message.RoomID
		if err := h.Storage.PublishEvent(ev.RoomID, ev); err != nil {
			log.Printf("ERROR: failed to publish message for room %s: %v", ev.RoomID, err)
		}

	case models.EventTyping:
		if ev.Typing == nil {
			return
		}
		// Typing state is transient: relayed, never persisted.
		ev.RoomID = ev.Typing.RoomID
		if err := h.Storage.PublishEvent(ev.RoomID, ev); err != nil {
			log.Printf("ERROR: failed to publish typing event for room %s: %v", ev.RoomID, err)
		}
	}
}

// fanOut delivers an event arriving from Redis to every local client
// subscribed to its room, including the sender; clients deduplicate the echo
// of their own messages by ID.
func (h *Hub) fanOut(ev models.Event) {
	var dropped []string
	h.mu.RLock()
	for userID, client := range h.clients {
		if !client.InRoom(ev.RoomID) {
			continue
		}
		select {
		case client.GetSendChannel() <- ev:
		default:
			// Slow consumer: drop the connection rather than block the hub.
			dropped = append(dropped, userID)
		}
	}
	h.mu.RUnlock()

	for _, userID := range dropped {
		h.mu.Lock()
		client := h.clients[userID]
		delete(h.clients, userID)
		h.mu.Unlock()
		if client != nil {
			client.Close()
		}
	}
}
