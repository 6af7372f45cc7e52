package storage

import (
	"errors"
	"fmt"
	"log"
	"time"

	"ridechat/backend/internal/config"
	"ridechat/backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SaveUser saves a user in PostgreSQL.
func (s *Service) SaveUser(user *models.User) error {
	return s.DB.Save(user).Error
}

// GetUserByID loads a user by their UUID.
func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUserReputation adjusts the user's reputation by delta, clamped to
// the configured floor.
func (s *Service) UpdateUserReputation(userID string, delta int) error {
	return s.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("reputation_score", gorm.Expr(
			"GREATEST(reputation_score + ?, ?)", delta, config.MinReputation)).Error
}

// SaveRoom saves a ride room in PostgreSQL.
func (s *Service) SaveRoom(room *models.RideRoom) error {
	return s.DB.Save(room).Error
}

// CloseRoom marks the room inactive and stamps EndedAt.
func (s *Service) CloseRoom(roomID string) error {
	return s.DB.Model(&models.RideRoom{}).
		Where("room_id = ?", roomID).
		Updates(map[string]interface{}{
			"is_active": false,
			"ended_at":  gorm.Expr("NOW()"),
		}).Error
}

// GetRoomByID loads one ride room.
func (s *Service) GetRoomByID(roomID string) (*models.RideRoom, error) {
	var room models.RideRoom
	err := s.DB.Where("room_id = ?", roomID).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("ride room not found")
	}
	if err != nil {
		log.Printf("ERROR: Failed to get room %s: %v", roomID, err)
		return nil, err
	}
	return &room, nil
}

// GetActiveRoomIDs returns the IDs of all rooms still accepting messages.
func (s *Service) GetActiveRoomIDs() ([]string, error) {
	var roomIDs []string
	if err := s.DB.Model(&models.RideRoom{}).
		Where("is_active = ?", true).
		Pluck("room_id", &roomIDs).Error; err != nil {
		log.Printf("ERROR: Failed to retrieve active RoomIDs: %v", err)
		return nil, err
	}
	return roomIDs, nil
}

// AddParticipant appends userID to the room's participant list. Adding an
// existing participant is a no-op.
func (s *Service) AddParticipant(roomID, userID string) error {
	room, err := s.GetRoomByID(roomID)
	if err != nil {
		return err
	}
	for _, p := range room.Participants {
		if p == userID {
			return nil
		}
	}
	room.Participants = append(room.Participants, userID)
	return s.DB.Model(&models.RideRoom{}).
		Where("room_id = ?", roomID).
		Update("participants", room.Participants).Error
}

// RemoveParticipant drops userID from the room's participant list.
func (s *Service) RemoveParticipant(roomID, userID string) error {
	room, err := s.GetRoomByID(roomID)
	if err != nil {
		return err
	}
	kept := make(pq.StringArray, 0, len(room.Participants))
	for _, p := range room.Participants {
		if p != userID {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(room.Participants) {
		return nil
	}
	return s.DB.Model(&models.RideRoom{}).
		Where("room_id = ?", roomID).
		Update("participants", kept).Error
}

// SaveMessage persists a message in PostgreSQL, assigning an ID and SentAt
// when absent. The row is keyed by the client-visible MessageID, so a
// duplicate delivery is rejected by the unique index rather than stored twice.
func (s *Service) SaveMessage(msg *models.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now()
	}
	history := models.ChatHistory{
		MessageID:   msg.ID,
		RoomID:      msg.RoomID,
		SenderID:    msg.SenderID,
		SenderName:  msg.SenderName,
		SenderPhoto: msg.SenderPhoto,
		Body:        msg.Body,
		Kind:        msg.Kind,
		SentAt:      msg.SentAt,
	}
	if msg.ReplyToID != "" {
		history.ReplyToID = &msg.ReplyToID
	}

	if err := s.DB.Create(&history).Error; err != nil {
		log.Printf("ERROR: Failed to save message for room %s: %v", msg.RoomID, err)
		return err
	}
	return nil
}

// GetChatHistory returns up to limit of the room's most recent messages in
// SentAt order: a client joining mid-ride back-fills the tail of the
// conversation, not its beginning.
func (s *Service) GetChatHistory(roomID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = config.HistoryPageSize
	}
	var rows []models.ChatHistory
	err := s.DB.Where("room_id = ?", roomID).
		Order("sent_at desc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("ERROR: Failed to get chat history for room %s: %v", roomID, err)
		return nil, err
	}
	return historyPage(rows), nil
}

// historyPage converts rows fetched newest-first back into send order.
func historyPage(rows []models.ChatHistory) []models.ChatMessage {
	messages := make([]models.ChatMessage, len(rows))
	for i := range rows {
		messages[len(rows)-1-i] = rows[i].AsChatMessage()
	}
	return messages
}

// SaveReport stores a safety report.
func (s *Service) SaveReport(report *models.Report) error {
	if report.ReportID == "" {
		report.ReportID = uuid.New().String()
	}
	if report.Status == "" {
		report.Status = "new"
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}

	if err := s.DB.Create(report).Error; err != nil {
		log.Printf("ERROR: Failed to save report for room %s: %v", report.RoomID, err)
		return err
	}
	return nil
}

// GetReportsForUser returns reports filed against userID since the given time.
func (s *Service) GetReportsForUser(userID string, since time.Time) ([]models.Report, error) {
	var reports []models.Report
	err := s.DB.Where("reported_user_id = ? AND created_at >= ?", userID, since).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// BanUser sets a ban key in Redis with the given expiry.
func (s *Service) BanUser(userID string, duration time.Duration) error {
	return s.Redis.Set(s.Ctx, "ban:"+userID, "active", duration).Err()
}

// UnbanUser removes the ban key.
func (s *Service) UnbanUser(userID string) error {
	return s.Redis.Del(s.Ctx, "ban:"+userID).Err()
}

// IsUserBanned checks the ban status in Redis.
func (s *Service) IsUserBanned(userID string) (bool, error) {
	status, err := s.Redis.Get(s.Ctx, "ban:"+userID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return status != "", nil
}

// NextBanLevel increments and returns the user's ban escalation level. The
// counter decays after the configured frequency window.
func (s *Service) NextBanLevel(userID string) (int, error) {
	key := "ban_level:" + userID
	level, err := s.Redis.Incr(s.Ctx, key).Result()
	if err != nil {
		return 0, err
	}
	s.Redis.Expire(s.Ctx, key, config.BanFrequencyWindow)
	return int(level), nil
}
