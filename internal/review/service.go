// Package review orchestrates review submissions and the presentation
// queue: it evaluates scheduling transitions through the SM-2 engine,
// persists history, and triggers best-effort adaptation analysis.
package review

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/lingo/internal/spaced_repetition"
	"github.com/example/lingo/pkg/models"
)

// ErrItemNotFound is returned when no scheduling record exists for a
// (user, card) pair. Submitting a review never auto-creates one.
var ErrItemNotFound = errors.New("scheduling record not found")

// Store is the storage access the review service needs
type Store interface {
	// GetSRSState returns the scheduling record for a (user, card) pair,
	// or ErrItemNotFound.
	GetSRSState(userID, cardID int64) (*models.SRSState, error)
	// ApplyReview persists the updated scheduling record and the review
	// log atomically: either both are written or neither.
	ApplyReview(state *models.SRSState, reviewLog *models.ReviewLog) error
	// DueStates returns scheduling records with a due date at or before now.
	DueStates(userID int64, now time.Time) ([]models.SRSState, error)
	// NewStates returns up to limit records still in the new state.
	NewStates(userID int64, limit int) ([]models.SRSState, error)
	// AllStates returns every scheduling record of the learner.
	AllStates(userID int64) ([]models.SRSState, error)
	// CardsByIDs loads cards keyed by id.
	CardsByIDs(cardIDs []int64) (map[int64]models.Card, error)
	// RecentReviews returns review logs at or after since.
	RecentReviews(userID int64, since time.Time) ([]models.ReviewLog, error)
}

// Analyzer is the adaptation hook run after each submission. Failures
// are logged and discarded - a broken analysis never fails a review.
type Analyzer interface {
	RunAnalysisPass(userID int64, now time.Time) ([]models.ErrorPattern, error)
}

// NewCardsSessionCap limits how many new cards join one review queue
const NewCardsSessionCap = 10

// MasteredIntervalDays - review-state cards above this interval count
// as mastered in the progress stats
const MasteredIntervalDays = 7

// Service processes review submissions and builds review queues
type Service struct {
	store    Store
	sm       *spaced_repetition.SM2
	analyzer Analyzer // may be nil
}

// NewService creates a review service. analyzer may be nil to disable
// post-review adaptation analysis.
func NewService(store Store, analyzer Analyzer) *Service {
	return &Service{
		store:    store,
		sm:       spaced_repetition.NewSM2(),
		analyzer: analyzer,
	}
}

// SubmitResult is returned to the caller after a review submission
type SubmitResult struct {
	CardID      int64               `json:"card_id"`
	WasCorrect  bool                `json:"was_correct"`
	State       models.SRSCardState `json:"new_state"`
	Interval    int                 `json:"new_interval"`
	NextDue     time.Time           `json:"next_due"`
	Quality     int                 `json:"quality"`
	Feedback    string              `json:"feedback"`
	EaseFactor  float64             `json:"ease_factor"`
	Repetitions int                 `json:"repetitions"`
	Lapses      int                 `json:"lapses"`
}

// stateSnapshot is the before/after view stored on each review log
type stateSnapshot struct {
	State       models.SRSCardState `json:"state"`
	Interval    int                 `json:"interval"`
	EaseFactor  float64             `json:"ease_factor"`
	Repetitions int                 `json:"repetitions"`
	Lapses      int                 `json:"lapses"`
}

// SubmitReview processes one review: computes the next scheduling state,
// persists it together with the immutable review log, then kicks off a
// best-effort adaptation pass. Out-of-range quality is clamped, never
// rejected. The scheduling record is left untouched on any error.
func (s *Service) SubmitReview(userID, cardID int64, quality int, responseTimeMs *int, now time.Time) (*SubmitResult, error) {
	if quality < 0 {
		quality = 0
	} else if quality > 5 {
		quality = 5
	}

	state, err := s.store.GetSRSState(userID, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to load scheduling record for card %d: %w", cardID, err)
	}

	before := snapshotJSON(*state)
	result := s.sm.NextReview(*state, quality, now)

	state.State = result.State
	state.Interval = result.Interval
	state.EaseFactor = result.EaseFactor
	state.Repetitions = result.Repetitions
	state.Lapses = result.Lapses
	state.Stability = result.Stability
	state.LearningStepIndex = result.LearningStepIndex
	due := result.DueDate
	state.DueDate = &due
	reviewedAt := now
	state.LastReviewedAt = &reviewedAt
	if result.WasCorrect {
		// Recent success relaxes the adaptation penalty a notch without
		// waiting for the detector to catch up.
		state.AdaptationPenalty = spaced_repetition.RelaxPenalty(state.AdaptationPenalty)
	}

	reviewLog := &models.ReviewLog{
		UserID:         userID,
		CardID:         cardID,
		Quality:        quality,
		WasCorrect:     result.WasCorrect,
		ResponseTimeMs: responseTimeMs,
		StateBefore:    before,
		StateAfter:     snapshotJSON(*state),
		ReviewedAt:     now,
	}

	if err := s.store.ApplyReview(state, reviewLog); err != nil {
		return nil, fmt.Errorf("failed to apply review for card %d: %w", cardID, err)
	}

	if s.analyzer != nil {
		if _, err := s.analyzer.RunAnalysisPass(userID, now); err != nil {
			// Analysis is an enrichment, not part of the review transaction.
			log.Printf("adaptation pass failed for user %d: %v", userID, err)
		}
	}

	return &SubmitResult{
		CardID:      cardID,
		WasCorrect:  result.WasCorrect,
		State:       result.State,
		Interval:    result.Interval,
		NextDue:     result.DueDate,
		Quality:     quality,
		Feedback:    qualityFeedback(quality),
		EaseFactor:  result.EaseFactor,
		Repetitions: result.Repetitions,
		Lapses:      result.Lapses,
	}, nil
}

// DueItem is a presentation-ready entry of the review queue
type DueItem struct {
	CardID               int64               `json:"card_id"`
	CardType             models.CardType     `json:"card_type"`
	Front                string              `json:"front"`
	Back                 string              `json:"back"`
	Hint                 string              `json:"hint,omitempty"`
	ContextSentence      string              `json:"context_sentence,omitempty"`
	State                models.SRSCardState `json:"state"`
	Interval             int                 `json:"interval"`
	Lapses               int                 `json:"lapses"`
	DueDate              *time.Time          `json:"due_date"`
	RetentionProbability float64             `json:"retention_probability"`
}

// GetDueItems builds the review queue: every record due at or before now
// plus, when includeNew is set, up to NewCardsSessionCap new cards. The
// combined set is deduplicated, ranked by urgency, and truncated to limit.
func (s *Service) GetDueItems(userID int64, limit int, includeNew bool, now time.Time) ([]DueItem, error) {
	due, err := s.store.DueStates(userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load due records: %w", err)
	}

	if includeNew {
		newStates, err := s.store.NewStates(userID, NewCardsSessionCap)
		if err != nil {
			return nil, fmt.Errorf("failed to load new records: %w", err)
		}
		seen := make(map[int64]bool, len(due))
		for _, st := range due {
			seen[st.ID] = true
		}
		for _, st := range newStates {
			if !seen[st.ID] {
				due = append(due, st)
			}
		}
	}

	ranked := spaced_repetition.RankByUrgency(due, now, limit)

	cardIDs := make([]int64, 0, len(ranked))
	for _, st := range ranked {
		cardIDs = append(cardIDs, st.CardID)
	}
	cards, err := s.store.CardsByIDs(cardIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load cards: %w", err)
	}

	items := make([]DueItem, 0, len(ranked))
	for _, st := range ranked {
		card, ok := cards[st.CardID]
		if !ok {
			continue // orphaned scheduling record
		}
		items = append(items, DueItem{
			CardID:               card.ID,
			CardType:             card.CardType,
			Front:                card.Front,
			Back:                 card.Back,
			Hint:                 card.Hint,
			ContextSentence:      card.ContextSentence,
			State:                st.State,
			Interval:             st.Interval,
			Lapses:               st.Lapses,
			DueDate:              st.DueDate,
			RetentionProbability: retentionFor(st, now),
		})
	}
	return items, nil
}

func retentionFor(st models.SRSState, now time.Time) float64 {
	if st.LastReviewedAt == nil {
		return 0
	}
	days := now.Sub(*st.LastReviewedAt).Hours() / 24
	return spaced_repetition.RetentionProbability(days, st.Stability)
}

func snapshotJSON(st models.SRSState) string {
	snap := stateSnapshot{
		State:       st.State,
		Interval:    st.Interval,
		EaseFactor:  st.EaseFactor,
		Repetitions: st.Repetitions,
		Lapses:      st.Lapses,
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// qualityFeedback maps a rating to the message shown after a submission
func qualityFeedback(quality int) string {
	switch quality {
	case 0:
		return "No recall. The card will come back shortly."
	case 1:
		return "Wrong, but the answer felt familiar."
	case 2:
		return "Wrong, but you recognized the correct answer."
	case 3:
		return "Correct, but it was hard. Keep practicing!"
	case 4:
		return "Good! With a little hesitation."
	case 5:
		return "Perfect! Quick and easy recall."
	default:
		return "Review recorded."
	}
}
