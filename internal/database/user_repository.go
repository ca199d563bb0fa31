package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/lingo/pkg/models"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID returns a user by ID
func (r *UserRepository) GetByID(id int64) (*models.User, error) {
	var user models.User
	if err := r.db.Get(&user, "SELECT * FROM users WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &user, nil
}

// GetByTelegramChatID returns the user bound to a Telegram chat
func (r *UserRepository) GetByTelegramChatID(chatID int64) (*models.User, error) {
	var user models.User
	err := r.db.Get(&user, "SELECT * FROM users WHERE telegram_chat_id = $1", chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user for chat %d: %w", chatID, err)
	}
	return &user, nil
}

// GetAll returns all users
func (r *UserRepository) GetAll() ([]models.User, error) {
	var users []models.User
	if err := r.db.Select(&users, "SELECT * FROM users ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

// Create inserts a new user
func (r *UserRepository) Create(user *models.User) error {
	id, err := insertReturningID(r.db, `
		INSERT INTO users (
			name, email, native_language, target_language, telegram_chat_id,
			notification_enabled, notification_hour, new_cards_per_day
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.Name, user.Email, user.NativeLanguage, user.TargetLanguage,
		user.TelegramChatID, user.NotificationEnabled, user.NotificationHour,
		user.NewCardsPerDay,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id
	return nil
}

// Update modifies user settings
func (r *UserRepository) Update(user *models.User) error {
	_, err := r.db.Exec(`
		UPDATE users SET
			name = $1, email = $2, native_language = $3, target_language = $4,
			telegram_chat_id = $5, notification_enabled = $6,
			notification_hour = $7, new_cards_per_day = $8,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $9`,
		user.Name, user.Email, user.NativeLanguage, user.TargetLanguage,
		user.TelegramChatID, user.NotificationEnabled, user.NotificationHour,
		user.NewCardsPerDay, user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user %d: %w", user.ID, err)
	}
	return nil
}

// GetUsersForNotification returns users with notifications enabled for
// the given hour and a Telegram chat bound.
func (r *UserRepository) GetUsersForNotification(hour int) ([]models.User, error) {
	var users []models.User
	err := r.db.Select(&users, `
		SELECT * FROM users
		WHERE notification_enabled = true AND notification_hour = $1 AND telegram_chat_id != 0`,
		hour)
	if err != nil {
		return nil, fmt.Errorf("failed to get users for notification: %w", err)
	}
	return users, nil
}
