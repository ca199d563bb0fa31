// Package spaced_repetition implements the review scheduling core: an
// SM-2 derived state machine with explicit card states
// (new -> learning -> review -> relearning), an urgency ranker for the
// review queue, and a retention estimator.
//
// Everything in this package is a pure function of its inputs; callers
// inject the current time.
package spaced_repetition

import (
	"time"

	"github.com/example/lingo/pkg/models"
)

const (
	// EaseFactorMin is the SM-2 standard floor for the ease factor
	EaseFactorMin = 1.3
	// EaseFactorMax caps the ease factor to avoid runaway intervals
	EaseFactorMax = 3.5
	// GraduatingIntervalDays is the first day-granularity interval after
	// a card clears the learning steps
	GraduatingIntervalDays = 1
	// RelearningIntervalDays is the interval for cards returning from a lapse
	RelearningIntervalDays = 1
	// PassThreshold - quality >= 3 counts as a correct answer
	PassThreshold = 3
	// LapseEasePenalty is subtracted from the ease factor on any incorrect answer
	LapseEasePenalty = 0.20
	// AdaptationPenaltyMultiplier - a full penalty of 1.0 shrinks an
	// interval to 70% of its raw value
	AdaptationPenaltyMultiplier = 0.70
	// PenaltyRelaxStep is how much a correct review relaxes the stored
	// adaptation penalty, independent of the adaptation engine
	PenaltyRelaxStep = 0.1
)

// LearningStepsMinutes is the intraday step ladder for new/learning cards:
// review after 1 minute, then after 10 minutes, then graduate.
var LearningStepsMinutes = []int{1, 10}

// ReviewResult is the full replacement scheduling record computed for a review
type ReviewResult struct {
	State             models.SRSCardState
	Interval          int // days
	EaseFactor        float64
	Repetitions       int
	Lapses            int
	Stability         float64
	LearningStepIndex int
	DueDate           time.Time
	WasCorrect        bool
}

// SM2 implements the SuperMemo-2 derived scheduling algorithm
type SM2 struct{}

// NewSM2 creates a new scheduler instance
func NewSM2() *SM2 {
	return &SM2{}
}

// NextReview computes the next scheduling state for a card after a review.
// quality is clamped to [0,5]; 0-2 = wrong, 3-5 = correct. An unrecognized
// card state is treated as new.
func (sm *SM2) NextReview(cur models.SRSState, quality int, now time.Time) ReviewResult {
	quality = clampQuality(quality)
	wasCorrect := quality >= PassThreshold

	// SM-2 ease update, applied before any state branching:
	// EF' = EF + (0.1 - (5-q) * (0.08 + (5-q) * 0.02))
	ease := cur.EaseFactor + (0.1 - float64(5-quality)*(0.08+float64(5-quality)*0.02))
	ease = clampEase(ease)

	switch cur.State {
	case models.StateLearning:
		return sm.handleLearning(cur, wasCorrect, ease, now)
	case models.StateReview:
		return sm.handleReview(cur, wasCorrect, ease, now)
	case models.StateRelearning:
		return sm.handleRelearning(cur, wasCorrect, ease, now)
	default:
		// new, or anything unrecognized
		return sm.handleNew(cur, wasCorrect, ease, now)
	}
}

// handleNew processes the first contact with a card
func (sm *SM2) handleNew(cur models.SRSState, wasCorrect bool, ease float64, now time.Time) ReviewResult {
	if wasCorrect {
		return ReviewResult{
			State:             models.StateLearning,
			Interval:          0,
			EaseFactor:        ease,
			Repetitions:       0,
			Lapses:            cur.Lapses,
			Stability:         cur.Stability,
			LearningStepIndex: 0,
			DueDate:           now.Add(time.Duration(LearningStepsMinutes[0]) * time.Minute),
			WasCorrect:        true,
		}
	}
	return ReviewResult{
		State:             models.StateLearning,
		Interval:          0,
		EaseFactor:        applyLapsePenalty(ease),
		Repetitions:       0,
		Lapses:            cur.Lapses,
		Stability:         shrinkStability(cur.Stability, 0.7, 0.5),
		LearningStepIndex: 0,
		DueDate:           now.Add(1 * time.Minute),
		WasCorrect:        false,
	}
}

// handleLearning moves a card up or down the learning step ladder
func (sm *SM2) handleLearning(cur models.SRSState, wasCorrect bool, ease float64, now time.Time) ReviewResult {
	if !wasCorrect {
		// Back to the first step
		return ReviewResult{
			State:             models.StateLearning,
			Interval:          0,
			EaseFactor:        applyLapsePenalty(ease),
			Repetitions:       0,
			Lapses:            cur.Lapses,
			Stability:         shrinkStability(cur.Stability, 0.7, 0.5),
			LearningStepIndex: 0,
			DueDate:           now.Add(time.Duration(LearningStepsMinutes[0]) * time.Minute),
			WasCorrect:        false,
		}
	}

	nextStep := cur.LearningStepIndex + 1
	if nextStep < len(LearningStepsMinutes) {
		return ReviewResult{
			State:             models.StateLearning,
			Interval:          0,
			EaseFactor:        ease,
			Repetitions:       0,
			Lapses:            cur.Lapses,
			Stability:         cur.Stability,
			LearningStepIndex: nextStep,
			DueDate:           now.Add(time.Duration(LearningStepsMinutes[nextStep]) * time.Minute),
			WasCorrect:        true,
		}
	}

	// All steps cleared - graduate to review
	interval := AdjustedInterval(GraduatingIntervalDays, cur.AdaptationPenalty)
	return ReviewResult{
		State:             models.StateReview,
		Interval:          interval,
		EaseFactor:        ease,
		Repetitions:       1,
		Lapses:            cur.Lapses,
		Stability:         maxFloat(cur.Stability, float64(interval)*0.8),
		LearningStepIndex: 0,
		DueDate:           now.AddDate(0, 0, interval),
		WasCorrect:        true,
	}
}

// handleReview computes the next long interval, or demotes the card on a lapse
func (sm *SM2) handleReview(cur models.SRSState, wasCorrect bool, ease float64, now time.Time) ReviewResult {
	if wasCorrect {
		var raw int
		if cur.Repetitions == 1 {
			raw = 6 // second consecutive pass
		} else {
			raw = roundToInt(float64(cur.Interval) * ease)
		}
		interval := AdjustedInterval(raw, cur.AdaptationPenalty)
		if interval < 1 {
			interval = 1
		}
		return ReviewResult{
			State:             models.StateReview,
			Interval:          interval,
			EaseFactor:        ease,
			Repetitions:       cur.Repetitions + 1,
			Lapses:            cur.Lapses,
			Stability:         float64(interval) * 0.9,
			LearningStepIndex: 0,
			DueDate:           now.AddDate(0, 0, interval),
			WasCorrect:        true,
		}
	}

	// Lapse - the card goes back to relearning
	return ReviewResult{
		State:             models.StateRelearning,
		Interval:          RelearningIntervalDays,
		EaseFactor:        applyLapsePenalty(ease),
		Repetitions:       0,
		Lapses:            cur.Lapses + 1,
		Stability:         shrinkStability(cur.Stability, 0.5, 0.5),
		LearningStepIndex: 0,
		DueDate:           now.AddDate(0, 0, RelearningIntervalDays),
		WasCorrect:        false,
	}
}

// handleRelearning reacquires a lapsed card
func (sm *SM2) handleRelearning(cur models.SRSState, wasCorrect bool, ease float64, now time.Time) ReviewResult {
	if wasCorrect {
		interval := AdjustedInterval(RelearningIntervalDays+1, cur.AdaptationPenalty)
		return ReviewResult{
			State:             models.StateReview,
			Interval:          interval,
			EaseFactor:        ease,
			Repetitions:       1,
			Lapses:            cur.Lapses,
			Stability:         maxFloat(cur.Stability, float64(interval)*0.7),
			LearningStepIndex: 0,
			DueDate:           now.AddDate(0, 0, interval),
			WasCorrect:        true,
		}
	}

	// Still not consolidated - stay in relearning with a short due time
	return ReviewResult{
		State:             models.StateRelearning,
		Interval:          RelearningIntervalDays,
		EaseFactor:        applyLapsePenalty(ease),
		Repetitions:       0,
		Lapses:            cur.Lapses + 1,
		Stability:         shrinkStability(cur.Stability, 0.5, 0.3),
		LearningStepIndex: 0,
		DueDate:           now.Add(4 * time.Hour),
		WasCorrect:        false,
	}
}

// AdjustedInterval applies the adaptation penalty to a raw day interval.
// penalty=0 leaves the interval unchanged; penalty=1.0 shrinks it by 30%.
// The result never drops below 1 day and never exceeds the raw interval.
func AdjustedInterval(rawDays int, penalty float64) int {
	if penalty <= 0 {
		return rawDays
	}
	multiplier := 1.0 - penalty*(1.0-AdaptationPenaltyMultiplier)
	adjusted := roundToInt(float64(rawDays) * multiplier)
	if adjusted < 1 {
		return 1
	}
	return adjusted
}

// RelaxPenalty returns the adaptation penalty lowered by one relax step,
// floored at 0. Applied by the caller after any correct review.
func RelaxPenalty(penalty float64) float64 {
	p := penalty - PenaltyRelaxStep
	if p < 0 {
		return 0
	}
	return p
}

func clampQuality(quality int) int {
	if quality < 0 {
		return 0
	}
	if quality > 5 {
		return 5
	}
	return quality
}

func clampEase(ease float64) float64 {
	if ease < EaseFactorMin {
		return EaseFactorMin
	}
	if ease > EaseFactorMax {
		return EaseFactorMax
	}
	return ease
}

func applyLapsePenalty(ease float64) float64 {
	ease -= LapseEasePenalty
	if ease < EaseFactorMin {
		return EaseFactorMin
	}
	return ease
}

func shrinkStability(stability, factor, floor float64) float64 {
	s := stability * factor
	if s < floor {
		return floor
	}
	return s
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func roundToInt(f float64) int {
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}
