package models

import "time"

// ReviewLog is an immutable record of a single review submission.
// Quality follows the SM-2 convention:
//
//	0 = complete blackout
//	1 = wrong, answer felt familiar
//	2 = wrong, but recognized the correct answer
//	3 = correct with significant difficulty
//	4 = correct after hesitation
//	5 = perfect recall
type ReviewLog struct {
	ID             int64     `json:"id" db:"id"`
	UserID         int64     `json:"user_id" db:"user_id"`
	CardID         int64     `json:"card_id" db:"card_id"`
	Quality        int       `json:"quality" db:"quality"`
	WasCorrect     bool      `json:"was_correct" db:"was_correct"` // quality >= 3
	ResponseTimeMs *int      `json:"response_time_ms" db:"response_time_ms"`
	StateBefore    string    `json:"srs_state_before" db:"srs_state_before"` // JSON snapshot
	StateAfter     string    `json:"srs_state_after" db:"srs_state_after"`   // JSON snapshot
	ReviewedAt     time.Time `json:"reviewed_at" db:"reviewed_at"`
}
