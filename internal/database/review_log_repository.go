package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/lingo/pkg/models"
)

// ReviewLogRepository handles database operations for review history
type ReviewLogRepository struct {
	db *sqlx.DB
}

func NewReviewLogRepository(db *sqlx.DB) *ReviewLogRepository {
	return &ReviewLogRepository{db: db}
}

// RecentByUser returns review logs at or after since, oldest first
func (r *ReviewLogRepository) RecentByUser(userID int64, since time.Time) ([]models.ReviewLog, error) {
	var logs []models.ReviewLog
	err := r.db.Select(&logs, `
		SELECT * FROM review_logs
		WHERE user_id = $1 AND reviewed_at >= $2
		ORDER BY reviewed_at ASC`,
		userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get review history: %w", err)
	}
	return logs, nil
}

// ByCard returns the full review history of one card for a user
func (r *ReviewLogRepository) ByCard(userID, cardID int64) ([]models.ReviewLog, error) {
	var logs []models.ReviewLog
	err := r.db.Select(&logs, `
		SELECT * FROM review_logs
		WHERE user_id = $1 AND card_id = $2
		ORDER BY reviewed_at ASC`,
		userID, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get card review history: %w", err)
	}
	return logs, nil
}
