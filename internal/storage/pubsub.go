package storage

import (
	"encoding/json"

	"ridechat/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// roomChannel is the Redis channel name for one room's events.
func roomChannel(roomID string) string {
	return "room:" + roomID
}

// PublishEvent publishes a chat event on the room's Redis channel so every
// backend node can fan it out to its local connections.
func (s *Service) PublishEvent(roomID string, ev models.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, roomChannel(roomID), payload).Err()
}

// SubscribeToAllRooms subscribes to every room channel on this Redis.
func (s *Service) SubscribeToAllRooms() *redis.PubSub {
	return s.Redis.PSubscribe(s.Ctx, roomChannel("*"))
}
