// Package safety handles rider safety reports: storing them, scoring the
// reported user's reputation, applying escalating bans, and paging the
// on-call channel.
package safety

import (
	"log"
	"time"

	"ridechat/backend/internal/config"
	"ridechat/backend/internal/models"
	"ridechat/backend/internal/storage"
)

// Notifier pages a human channel about a new report. Optional.
type Notifier interface {
	NotifyReport(report *models.Report) error
}

// Service implements the report pipeline.
type Service struct {
	Storage  storage.Storage
	Notifier Notifier
}

// NewService creates a safety service. notifier may be nil.
func NewService(s storage.Storage, notifier Notifier) *Service {
	return &Service{Storage: s, Notifier: notifier}
}

// SeverityWeight returns the reputation penalty for a report severity,
// 0 for an unknown one.
func SeverityWeight(severity string) int {
	return config.ReportWeights[severity]
}

// HandleReport stores a new report, applies the reputation penalty and
// checks the ban policy. Notification failures are logged, not returned:
// the report itself is already safe.
func (s *Service) HandleReport(report *models.Report) error {
	if err := s.Storage.SaveReport(report); err != nil {
		return err
	}

	weight := SeverityWeight(report.Severity)
	if weight > 0 {
		if err := s.Storage.UpdateUserReputation(report.ReportedUserID, -weight); err != nil {
			return err
		}
	}

	if err := s.CheckForBan(report.ReportedUserID); err != nil {
		return err
	}

	if s.Notifier != nil {
		if err := s.Notifier.NotifyReport(report); err != nil {
			log.Printf("WARNING: failed to notify ops about report %s: %v", report.ReportID, err)
		}
	}
	return nil
}

// CheckForBan bans a user whose reputation fell below the threshold or who
// collected too many reports inside the frequency window.
func (s *Service) CheckForBan(userID string) error {
	user, err := s.Storage.GetUserByID(userID)
	if err != nil {
		return err
	}

	if user.ReputationScore < config.BanThresholdReputation {
		return s.applyBan(userID)
	}

	reports, err := s.Storage.GetReportsForUser(userID, time.Now().Add(-config.BanFrequencyWindow))
	if err != nil {
		return err
	}
	if len(reports) > config.BanThresholdFrequency {
		return s.applyBan(userID)
	}
	return nil
}

func (s *Service) applyBan(userID string) error {
	level, err := s.Storage.NextBanLevel(userID)
	if err != nil {
		return err
	}

	var duration time.Duration
	switch level {
	case 1:
		duration = config.BanLevel1Duration
	case 2:
		duration = config.BanLevel2Duration
	default:
		duration = config.BanLevel3Duration
	}

	log.Printf("banning user %s for %s (level %d)", userID, duration, level)
	return s.Storage.BanUser(userID, duration)
}
