package models

import "time"

// CardType categorizes what kind of knowledge a card carries. The
// adaptation engine groups review accuracy by this tag.
type CardType string

const (
	CardTypeVocab      CardType = "vocab"
	CardTypeGrammar    CardType = "grammar"
	CardTypeExpression CardType = "expression"
)

// Card represents a learnable item presented to the learner
type Card struct {
	ID              int64     `json:"id" db:"id"`
	CardType        CardType  `json:"card_type" db:"card_type"`
	Front           string    `json:"front" db:"front"` // question/stimulus
	Back            string    `json:"back" db:"back"`   // answer/full information
	Hint            string    `json:"hint" db:"hint"`
	Reading         string    `json:"reading" db:"reading"` // e.g. furigana/romaji for Japanese
	ContextSentence string    `json:"context_sentence" db:"context_sentence"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
