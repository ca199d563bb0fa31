package models

import "time"

// PatternType identifies a category of systematic weakness
type PatternType string

const (
	PatternVocabWeakness      PatternType = "vocab_weakness"
	PatternGrammarConfusion   PatternType = "grammar_confusion"
	PatternStructureConfusion PatternType = "structure_confusion"
)

// ErrorPattern is a detected, persistent weakness of the learner.
// Severity grows by a fixed step on each detection up to 1.0 and falls
// only through explicit resolution. Patterns are deactivated, never
// deleted, when the learner's error rate recovers.
type ErrorPattern struct {
	ID              int64       `json:"id" db:"id"`
	UserID          int64       `json:"user_id" db:"user_id"`
	PatternType     PatternType `json:"pattern_type" db:"pattern_type"`
	Description     string      `json:"description" db:"description"`
	Count           int         `json:"count" db:"count"`                         // times detected
	Severity        float64     `json:"severity" db:"severity"`                   // 0.0 = mild, 1.0 = critical
	AffectedCardIDs []int64     `json:"affected_card_ids" db:"affected_card_ids"` // stored as JSON
	IsActive        bool        `json:"is_active" db:"is_active"`
	FirstDetectedAt time.Time   `json:"first_detected_at" db:"first_detected_at"`
	LastSeenAt      time.Time   `json:"last_seen_at" db:"last_seen_at"`
}
