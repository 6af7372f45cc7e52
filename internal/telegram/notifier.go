// Package telegram pages the operations channel about safety reports via
// the Telegram Bot API.
package telegram

import (
	"fmt"
	"log"

	"ridechat/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier sends report alerts to a fixed ops chat.
type Notifier struct {
	BotAPI *tgbotapi.BotAPI
	ChatID int64
}

// NewNotifier authenticates the bot and targets the given chat.
func NewNotifier(token string, chatID int64) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("ops notifier authorized on account %s", bot.Self.UserName)

	return &Notifier{BotAPI: bot, ChatID: chatID}, nil
}

// NotifyReport posts a one-line summary of a new safety report.
func (n *Notifier) NotifyReport(report *models.Report) error {
	text := fmt.Sprintf(
		"⚠️ Safety report %s\nSeverity: %s\nReported user: %s\nRoom: %s\nReason: %s",
		report.ReportID, report.Severity, report.ReportedUserID, report.RoomID, report.Reason,
	)
	msg := tgbotapi.NewMessage(n.ChatID, text)
	_, err := n.BotAPI.Send(msg)
	return err
}
