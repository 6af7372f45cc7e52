package storage

import (
	"context"
	"time"

	"ridechat/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Storage is everything the hub, the HTTP handlers and the safety service
// need from the persistence layer.
type Storage interface {
	SaveUser(user *models.User) error
	GetUserByID(id string) (*models.User, error)
	UpdateUserReputation(userID string, delta int) error

	SaveRoom(room *models.RideRoom) error
	CloseRoom(roomID string) error
	GetRoomByID(roomID string) (*models.RideRoom, error)
	GetActiveRoomIDs() ([]string, error)
	AddParticipant(roomID, userID string) error
	RemoveParticipant(roomID, userID string) error

	SaveMessage(msg *models.ChatMessage) error
	GetChatHistory(roomID string, limit int) ([]models.ChatMessage, error)

	PublishEvent(roomID string, ev models.Event) error
	SubscribeToAllRooms() *redis.PubSub

	SaveReport(report *models.Report) error
	GetReportsForUser(userID string, since time.Time) ([]models.Report, error)

	BanUser(userID string, duration time.Duration) error
	UnbanUser(userID string) error
	IsUserBanned(userID string) (bool, error)
	NextBanLevel(userID string) (int, error)
}

// Service implements Storage on top of PostgreSQL (durable state) and
// Redis (pub/sub bridge, bans).
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}
