package models

import "time"

// ExerciseType represents the kinds of active exercises
type ExerciseType string

const (
	// ExerciseTranslation - given a word/phrase, the learner translates it
	ExerciseTranslation ExerciseType = "translation"
	// ExerciseFillBlank - a sentence with a ___ gap to fill
	ExerciseFillBlank ExerciseType = "fill_blank"
	// ExerciseBuildSentence - shuffled words to arrange into a sentence
	ExerciseBuildSentence ExerciseType = "build_sentence"
)

// Exercise is an active-recall prompt generated for a card.
// ExpectedAnswer may encode several accepted variants separated by "/".
type Exercise struct {
	ID             int64        `json:"id" db:"id"`
	CardID         int64        `json:"card_id" db:"card_id"`
	ExerciseType   ExerciseType `json:"exercise_type" db:"exercise_type"`
	Prompt         string       `json:"prompt" db:"prompt"`
	ExpectedAnswer string       `json:"expected_answer" db:"expected_answer"`
	Context        string       `json:"context" db:"context"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
}

// ExerciseSubmission is an immutable record of one exercise attempt
type ExerciseSubmission struct {
	ID             int64     `json:"id" db:"id"`
	ExerciseID     int64     `json:"exercise_id" db:"exercise_id"`
	UserID         int64     `json:"user_id" db:"user_id"`
	UserAnswer     string    `json:"user_answer" db:"user_answer"`
	IsCorrect      bool      `json:"is_correct" db:"is_correct"`
	Score          float64   `json:"score" db:"score"` // 0.0-1.0, partial credit
	ResponseTimeMs *int      `json:"response_time_ms" db:"response_time_ms"`
	ErrorCategory  string    `json:"error_category" db:"error_category"` // empty when none
	SubmittedAt    time.Time `json:"submitted_at" db:"submitted_at"`
}
