package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/lingo/pkg/models"
)

// SRSRepository handles database operations for scheduling records
type SRSRepository struct {
	db *sqlx.DB
}

func NewSRSRepository(db *sqlx.DB) *SRSRepository {
	return &SRSRepository{db: db}
}

// GetByUserAndCard returns the scheduling record for a (user, card) pair.
// sql.ErrNoRows is wrapped and passed through when none exists.
func (r *SRSRepository) GetByUserAndCard(userID, cardID int64) (*models.SRSState, error) {
	var state models.SRSState
	err := r.db.Get(&state,
		"SELECT * FROM srs_states WHERE user_id = $1 AND card_id = $2",
		userID, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduling record: %w", err)
	}
	return &state, nil
}

// DueStates returns records with a due date at or before now
func (r *SRSRepository) DueStates(userID int64, now time.Time) ([]models.SRSState, error) {
	var states []models.SRSState
	err := r.db.Select(&states, `
		SELECT * FROM srs_states
		WHERE user_id = $1 AND due_date IS NOT NULL AND due_date <= $2
		ORDER BY due_date ASC`,
		userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get due records: %w", err)
	}
	return states, nil
}

// NewStates returns up to limit records still in the new state
func (r *SRSRepository) NewStates(userID int64, limit int) ([]models.SRSState, error) {
	var states []models.SRSState
	err := r.db.Select(&states, `
		SELECT * FROM srs_states
		WHERE user_id = $1 AND state = 'new'
		ORDER BY id ASC
		LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get new records: %w", err)
	}
	return states, nil
}

// AllStates returns every scheduling record of the user
func (r *SRSRepository) AllStates(userID int64) ([]models.SRSState, error) {
	var states []models.SRSState
	err := r.db.Select(&states,
		"SELECT * FROM srs_states WHERE user_id = $1 ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduling records: %w", err)
	}
	return states, nil
}

// ApplyReview persists the updated scheduling record together with its
// review log in one transaction.
func (r *SRSRepository) ApplyReview(state *models.SRSState, reviewLog *models.ReviewLog) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE srs_states SET
			state = $1, "interval" = $2, ease_factor = $3, repetitions = $4,
			lapses = $5, stability = $6, adaptation_penalty = $7,
			learning_step_index = $8, due_date = $9, last_reviewed_at = $10,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $11`,
		state.State, state.Interval, state.EaseFactor, state.Repetitions,
		state.Lapses, state.Stability, state.AdaptationPenalty,
		state.LearningStepIndex, state.DueDate, state.LastReviewedAt,
		state.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update scheduling record %d: %w", state.ID, err)
	}

	insertLog := `
		INSERT INTO review_logs (
			user_id, card_id, quality, was_correct, response_time_ms,
			srs_state_before, srs_state_after, reviewed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	logArgs := []interface{}{
		reviewLog.UserID, reviewLog.CardID, reviewLog.Quality, reviewLog.WasCorrect,
		reviewLog.ResponseTimeMs, reviewLog.StateBefore, reviewLog.StateAfter,
		reviewLog.ReviewedAt,
	}
	if tx.DriverName() == "postgres" {
		err = tx.QueryRow(insertLog+" RETURNING id", logArgs...).Scan(&reviewLog.ID)
	} else {
		var result sql.Result
		result, err = tx.Exec(insertLog, logArgs...)
		if err == nil {
			reviewLog.ID, _ = result.LastInsertId()
		}
	}
	if err != nil {
		return fmt.Errorf("failed to insert review log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit review: %w", err)
	}
	return nil
}

// SetAdaptationPenalty overwrites the penalty on the given cards,
// capped at 1.0.
func (r *SRSRepository) SetAdaptationPenalty(userID int64, cardIDs []int64, penalty float64) error {
	if len(cardIDs) == 0 {
		return nil
	}
	if penalty > 1.0 {
		penalty = 1.0
	}

	query, args, err := sqlx.In(`
		UPDATE srs_states SET adaptation_penalty = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND card_id IN (?)`,
		penalty, userID, cardIDs)
	if err != nil {
		return fmt.Errorf("failed to build penalty update: %w", err)
	}
	if _, err := r.db.Exec(r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to set adaptation penalty: %w", err)
	}
	return nil
}

// EnsureForUser creates missing new-state records for the given cards.
// Existing records are left untouched.
func (r *SRSRepository) EnsureForUser(userID int64, cardIDs []int64) error {
	for _, cardID := range cardIDs {
		_, err := r.db.Exec(`
			INSERT INTO srs_states (user_id, card_id, state, ease_factor, stability)
			VALUES ($1, $2, 'new', 2.5, 1.0)
			ON CONFLICT (user_id, card_id) DO NOTHING`,
			userID, cardID)
		if err != nil {
			return fmt.Errorf("failed to create scheduling record for card %d: %w", cardID, err)
		}
	}
	return nil
}
