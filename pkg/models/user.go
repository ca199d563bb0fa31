package models

import "time"

// User represents a learner profile
type User struct {
	ID                  int64     `json:"id" db:"id"`
	Name                string    `json:"name" db:"name"`
	Email               string    `json:"email" db:"email"`
	NativeLanguage      string    `json:"native_language" db:"native_language"`   // e.g. "pt-BR"
	TargetLanguage      string    `json:"target_language" db:"target_language"`   // e.g. "ja"
	TelegramChatID      int64     `json:"telegram_chat_id" db:"telegram_chat_id"` // 0 = reminders not linked
	NotificationEnabled bool      `json:"notification_enabled" db:"notification_enabled"`
	NotificationHour    int       `json:"notification_hour" db:"notification_hour"` // Hour of day for reminders (0-23)
	NewCardsPerDay      int       `json:"new_cards_per_day" db:"new_cards_per_day"` // baseline daily new-card limit
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}
