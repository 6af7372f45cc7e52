package config

import "time"

const (
	// Typing indicator
	TypingTTL = 1000 * time.Millisecond

	// Reconnect backoff (client session)
	ReconnectInitialInterval = 500 * time.Millisecond
	ReconnectMaxInterval     = 30 * time.Second

	// History
	HistoryPageSize = 50

	// Reputation
	InitialReputation = 1000
	MaxReputation     = 1000
	MinReputation     = 0

	// Ban policy
	BanThresholdReputation = 500
	BanThresholdFrequency  = 5
	BanFrequencyWindow     = 24 * time.Hour
	BanLevel1Duration      = 30 * time.Minute
	BanLevel2Duration      = 6 * time.Hour
	BanLevel3Duration      = 24 * time.Hour
)

var ReportWeights = map[string]int{
	"Low":      5,
	"Medium":   50,
	"Critical": 250,
}
