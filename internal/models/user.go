package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// User represents a rider or driver in the system.
type User struct {
	ID          string `gorm:"primaryKey" json:"id"` // UUID
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url"`
	// FavoriteRoutes stores saved route tags, e.g. "campus→station".
	FavoriteRoutes pq.StringArray `gorm:"type:text[]" json:"favorite_routes"`
	// ReputationScore decreases when safety reports against the user are
	// confirmed; it drives the automatic ban policy.
	ReputationScore int `json:"reputation_score"`
}

// BeforeCreate is a GORM hook that assigns a UUID when the ID is unset.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
