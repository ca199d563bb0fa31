package database

import (
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/lingo/pkg/models"
)

// ErrorPatternRepository handles database operations for detected
// error patterns. The affected card id list is stored as a JSON array.
type ErrorPatternRepository struct {
	db *sqlx.DB
}

func NewErrorPatternRepository(db *sqlx.DB) *ErrorPatternRepository {
	return &ErrorPatternRepository{db: db}
}

const patternColumns = `id, user_id, pattern_type, description, "count", severity, affected_card_ids, is_active, first_detected_at, last_seen_at`

// ActiveByUser returns the user's active patterns
func (r *ErrorPatternRepository) ActiveByUser(userID int64) ([]models.ErrorPattern, error) {
	return r.selectPatterns(
		"SELECT "+patternColumns+" FROM error_patterns WHERE user_id = $1 AND is_active = true ORDER BY id",
		userID)
}

// AllByUser returns every pattern of the user, active or resolved
func (r *ErrorPatternRepository) AllByUser(userID int64) ([]models.ErrorPattern, error) {
	return r.selectPatterns(
		"SELECT "+patternColumns+" FROM error_patterns WHERE user_id = $1 ORDER BY id",
		userID)
}

// Create inserts a new pattern
func (r *ErrorPatternRepository) Create(pattern *models.ErrorPattern) error {
	idsJSON, err := json.Marshal(pattern.AffectedCardIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal affected card ids: %w", err)
	}

	id, err := insertReturningID(r.db, `
		INSERT INTO error_patterns (
			user_id, pattern_type, description, "count", severity,
			affected_card_ids, is_active, first_detected_at, last_seen_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		pattern.UserID, pattern.PatternType, pattern.Description, pattern.Count,
		pattern.Severity, string(idsJSON), pattern.IsActive,
		pattern.FirstDetectedAt, pattern.LastSeenAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create error pattern: %w", err)
	}
	pattern.ID = id
	return nil
}

// Update modifies an existing pattern
func (r *ErrorPatternRepository) Update(pattern *models.ErrorPattern) error {
	idsJSON, err := json.Marshal(pattern.AffectedCardIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal affected card ids: %w", err)
	}

	_, err = r.db.Exec(`
		UPDATE error_patterns SET
			description = $1, "count" = $2, severity = $3,
			affected_card_ids = $4, is_active = $5, last_seen_at = $6
		WHERE id = $7`,
		pattern.Description, pattern.Count, pattern.Severity,
		string(idsJSON), pattern.IsActive, pattern.LastSeenAt,
		pattern.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update error pattern %d: %w", pattern.ID, err)
	}
	return nil
}

func (r *ErrorPatternRepository) selectPatterns(query string, args ...interface{}) ([]models.ErrorPattern, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get error patterns: %w", err)
	}
	defer rows.Close()

	var patterns []models.ErrorPattern
	for rows.Next() {
		var p models.ErrorPattern
		var idsJSON string
		err := rows.Scan(
			&p.ID, &p.UserID, &p.PatternType, &p.Description, &p.Count,
			&p.Severity, &idsJSON, &p.IsActive, &p.FirstDetectedAt, &p.LastSeenAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan error pattern: %w", err)
		}
		if idsJSON != "" {
			if err := json.Unmarshal([]byte(idsJSON), &p.AffectedCardIDs); err != nil {
				return nil, fmt.Errorf("failed to parse affected card ids: %w", err)
			}
		}
		patterns = append(patterns, p)
	}
	return patterns, rows.Err()
}
