package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/lingo/pkg/models"
)

// ExerciseRepository handles database operations for exercises and
// their submissions.
type ExerciseRepository struct {
	db *sqlx.DB
}

func NewExerciseRepository(db *sqlx.DB) *ExerciseRepository {
	return &ExerciseRepository{db: db}
}

// GetByID returns an exercise by its ID
func (r *ExerciseRepository) GetByID(id int64) (*models.Exercise, error) {
	var ex models.Exercise
	if err := r.db.Get(&ex, "SELECT * FROM exercises WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("failed to get exercise %d: %w", id, err)
	}
	return &ex, nil
}

// GetByIDs returns exercises keyed by id
func (r *ExerciseRepository) GetByIDs(ids []int64) (map[int64]models.Exercise, error) {
	out := make(map[int64]models.Exercise, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In("SELECT * FROM exercises WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build exercise query: %w", err)
	}
	var list []models.Exercise
	if err := r.db.Select(&list, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get exercises: %w", err)
	}
	for _, ex := range list {
		out[ex.ID] = ex
	}
	return out, nil
}

// ByCard returns all exercises generated for one card
func (r *ExerciseRepository) ByCard(cardID int64) ([]models.Exercise, error) {
	var list []models.Exercise
	err := r.db.Select(&list,
		"SELECT * FROM exercises WHERE card_id = $1 ORDER BY id", cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get exercises for card %d: %w", cardID, err)
	}
	return list, nil
}

// Create inserts a new exercise
func (r *ExerciseRepository) Create(ex *models.Exercise) error {
	id, err := insertReturningID(r.db, `
		INSERT INTO exercises (card_id, exercise_type, prompt, expected_answer, context)
		VALUES ($1, $2, $3, $4, $5)`,
		ex.CardID, ex.ExerciseType, ex.Prompt, ex.ExpectedAnswer, ex.Context,
	)
	if err != nil {
		return fmt.Errorf("failed to create exercise: %w", err)
	}
	ex.ID = id
	return nil
}

// CreateSubmission records one evaluated answer
func (r *ExerciseRepository) CreateSubmission(sub *models.ExerciseSubmission) error {
	id, err := insertReturningID(r.db, `
		INSERT INTO exercise_submissions (
			exercise_id, user_id, user_answer, is_correct, score,
			response_time_ms, error_category, submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sub.ExerciseID, sub.UserID, sub.UserAnswer, sub.IsCorrect, sub.Score,
		sub.ResponseTimeMs, sub.ErrorCategory, sub.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	sub.ID = id
	return nil
}

// RecentSubmissions returns a user's submissions at or after since
func (r *ExerciseRepository) RecentSubmissions(userID int64, since time.Time) ([]models.ExerciseSubmission, error) {
	var subs []models.ExerciseSubmission
	err := r.db.Select(&subs, `
		SELECT * FROM exercise_submissions
		WHERE user_id = $1 AND submitted_at >= $2
		ORDER BY submitted_at ASC`,
		userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get submissions: %w", err)
	}
	return subs, nil
}
