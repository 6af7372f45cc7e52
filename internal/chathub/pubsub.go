package chathub

import (
	"encoding/json"
	"log"

	"ridechat/backend/internal/models"
)

// StartPubSubListener starts a goroutine that relays events published on the
// Redis room channels into the hub's dispatch loop. Every node subscribes to
// all rooms and filters by local membership on fan-out.
func (h *Hub) StartPubSubListener() {
	go func() {
		pubsub := h.Storage.SubscribeToAllRooms()
		if pubsub == nil {
			return
		}
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var ev models.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("Error unmarshalling Redis event: %v", err)
				continue
			}
			h.PubSubCh <- ev
		}
	}()
}
