// Package notify sends review reminders to learners over Telegram.
package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier sends reminders through the Telegram Bot API
type TelegramNotifier struct {
	bot *tgbotapi.BotAPI
}

func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot}, nil
}

// SendReviewReminder notifies one chat about its pending reviews
func (n *TelegramNotifier) SendReviewReminder(chatID int64, dueCount int) error {
	text := fmt.Sprintf("📚 You have %d cards waiting for review. A few minutes now keeps them fresh!", dueCount)
	if dueCount == 1 {
		text = "📚 You have 1 card waiting for review. A minute now keeps it fresh!"
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send reminder to chat %d: %w", chatID, err)
	}
	return nil
}
