package notify

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ai-content-scheduler/internal/domain/ports/adapter"
)

var _ adapter.AlertNotifier = (*TelegramNotifier)(nil)

// TelegramNotifier sends operational alerts to a single admin chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	if token == "" || chatID == 0 {
		return nil, errors.New("telegram token and chat id required")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) SchedulePaused(_ context.Context, scheduleID, reason string) error {
	return n.send(fmt.Sprintf("⏸ schedule %s paused: %s", scheduleID, reason))
}

func (n *TelegramNotifier) PassFailed(_ context.Context, pass string, cause error) error {
	return n.send(fmt.Sprintf("❌ %s pass failed: %v", pass, cause))
}

func (n *TelegramNotifier) send(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	_, err := n.bot.Send(msg)
	return err
}
