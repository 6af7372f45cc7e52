package models

import "time"

// Report is a safety report filed by one rider against another.
type Report struct {
	ReportID       string `gorm:"primaryKey"`
	ReporterID     string
	ReportedUserID string `gorm:"index"`
	RoomID         string
	Reason         string
	Severity       string // "Low", "Medium", "Critical"
	Status         string // "new", "reviewed", "actioned"
	CreatedAt      time.Time
}
