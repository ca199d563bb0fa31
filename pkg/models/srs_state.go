package models

import "time"

// SRSCardState is the scheduling state of a card for one learner
type SRSCardState string

const (
	// StateNew - never reviewed
	StateNew SRSCardState = "new"
	// StateLearning - inside the intraday learning step ladder
	StateLearning SRSCardState = "learning"
	// StateReview - graduated, on day-granularity intervals
	StateReview SRSCardState = "review"
	// StateRelearning - lapsed from review, being reacquired
	StateRelearning SRSCardState = "relearning"
)

// SRSState tracks a learner's scheduling record for a single card.
// Interval is meaningful only in review/relearning; sub-day scheduling
// is expressed through DueDate alone while the card is new/learning.
type SRSState struct {
	ID                int64        `json:"id" db:"id"`
	UserID            int64        `json:"user_id" db:"user_id"`
	CardID            int64        `json:"card_id" db:"card_id"`
	State             SRSCardState `json:"state" db:"state"`
	Interval          int          `json:"interval" db:"interval"`                       // days
	EaseFactor        float64      `json:"ease_factor" db:"ease_factor"`                 // clamped to [1.3, 3.5]
	Repetitions       int          `json:"repetitions" db:"repetitions"`                 // consecutive correct review passes
	Lapses            int          `json:"lapses" db:"lapses"`                           // cumulative forgotten events
	Stability         float64      `json:"stability" db:"stability"`                     // memory durability estimate, days
	AdaptationPenalty float64      `json:"adaptation_penalty" db:"adaptation_penalty"`   // [0,1], written by the adaptation engine
	LearningStepIndex int          `json:"learning_step_index" db:"learning_step_index"` // position in the learning step ladder
	DueDate           *time.Time   `json:"due_date" db:"due_date"`
	LastReviewedAt    *time.Time   `json:"last_reviewed_at" db:"last_reviewed_at"`
	CreatedAt         time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at" db:"updated_at"`
}

// NewSRSState returns the initial scheduling record for a (user, card) pair
func NewSRSState(userID, cardID int64) SRSState {
	return SRSState{
		UserID:     userID,
		CardID:     cardID,
		State:      StateNew,
		Interval:   0,
		EaseFactor: 2.5,
		Stability:  1.0,
	}
}
