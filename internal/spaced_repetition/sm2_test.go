package spaced_repetition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lingo/pkg/models"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newState(state models.SRSCardState) models.SRSState {
	return models.SRSState{
		UserID:     1,
		CardID:     10,
		State:      state,
		EaseFactor: 2.5,
		Stability:  1.0,
	}
}

func TestNewCardCorrectEntersLearning(t *testing.T) {
	sm := NewSM2()

	res := sm.NextReview(newState(models.StateNew), 5, testNow)

	assert.Equal(t, models.StateLearning, res.State)
	assert.Equal(t, 0, res.Interval)
	assert.Equal(t, testNow.Add(1*time.Minute), res.DueDate)
	assert.True(t, res.WasCorrect)
	assert.Greater(t, res.EaseFactor, 2.5, "perfect answer should raise ease")
}

func TestNewCardIncorrectShortRetry(t *testing.T) {
	sm := NewSM2()

	res := sm.NextReview(newState(models.StateNew), 1, testNow)

	assert.Equal(t, models.StateLearning, res.State)
	assert.Equal(t, testNow.Add(1*time.Minute), res.DueDate)
	assert.False(t, res.WasCorrect)
	assert.Less(t, res.EaseFactor, 2.5)
	assert.InDelta(t, 0.7, res.Stability, 1e-9) // 1.0 * 0.7
}

func TestLearningAdvancesSteps(t *testing.T) {
	sm := NewSM2()
	cur := newState(models.StateLearning)
	cur.LearningStepIndex = 0

	res := sm.NextReview(cur, 4, testNow)

	assert.Equal(t, models.StateLearning, res.State)
	assert.Equal(t, 1, res.LearningStepIndex)
	assert.Equal(t, testNow.Add(10*time.Minute), res.DueDate)
}

func TestLearningFinalStepGraduates(t *testing.T) {
	sm := NewSM2()
	cur := newState(models.StateLearning)
	cur.LearningStepIndex = 1 // final step

	res := sm.NextReview(cur, 4, testNow)

	assert.Equal(t, models.StateReview, res.State)
	assert.Equal(t, 1, res.Interval)
	assert.Equal(t, 1, res.Repetitions)
	assert.Equal(t, testNow.AddDate(0, 0, 1), res.DueDate)
}

func TestLearningIncorrectResetsToFirstStep(t *testing.T) {
	sm := NewSM2()
	cur := newState(models.StateLearning)
	cur.LearningStepIndex = 1

	res := sm.NextReview(cur, 2, testNow)

	assert.Equal(t, models.StateLearning, res.State)
	assert.Equal(t, 0, res.LearningStepIndex)
	assert.Equal(t, testNow.Add(1*time.Minute), res.DueDate)
	assert.False(t, res.WasCorrect)
}

func TestReviewSecondPassGetsSixDays(t *testing.T) {
	sm := NewSM2()
	cur := newState(models.StateReview)
	cur.Interval = 1
	cur.Repetitions = 1

	res := sm.NextReview(cur, 5, testNow)

	assert.Equal(t, models.StateReview, res.State)
	assert.Equal(t, 6, res.Interval)
	assert.Equal(t, 2, res.Repetitions)
	assert.InDelta(t, 5.4, res.Stability, 1e-9) // 6 * 0.9
}

func TestReviewIntervalGrowsByEase(t *testing.T) {
	sm := NewSM2()
	cur := newState(models.StateReview)
	cur.Interval = 10
	cur.Repetitions = 3

	res := sm.NextReview(cur, 4, testNow)

	// q=4 keeps the ease at 2.5, so the raw interval is 10 * 2.5 = 25
	require.Equal(t, models.StateReview, res.State)
	assert.Equal(t, 25, res.Interval)
	assert.Equal(t, 4, res.Repetitions)
	assert.Equal(t, testNow.AddDate(0, 0, 25), res.DueDate)
}

func TestReviewLapseGoesToRelearning(t *testing.T) {
	sm := NewSM2()
	cur := newState(models.StateReview)
	cur.Interval = 20
	cur.Repetitions = 4
	cur.Lapses = 1
	cur.Stability = 18

	res := sm.NextReview(cur, 2, testNow)

	assert.Equal(t, models.StateRelearning, res.State)
	assert.Equal(t, 2, res.Lapses)
	assert.Equal(t, RelearningIntervalDays, res.Interval)
	assert.Equal(t, 0, res.Repetitions)
	assert.InDelta(t, 9.0, res.Stability, 1e-9) // 18 * 0.5
	// q=2 drops ease by 0.32, then the lapse penalty takes another 0.20
	assert.InDelta(t, 1.98, res.EaseFactor, 1e-9)
}

func TestRelearningCorrectReturnsToReview(t *testing.T) {
	sm := NewSM2()
	cur := newState(models.StateRelearning)
	cur.Interval = 1
	cur.Lapses = 2

	res := sm.NextReview(cur, 4, testNow)

	assert.Equal(t, models.StateReview, res.State)
	assert.Equal(t, 2, res.Interval) // relearning interval + 1
	assert.Equal(t, 1, res.Repetitions)
	assert.Equal(t, 2, res.Lapses)
	assert.InDelta(t, 1.4, res.Stability, 1e-9) // max(1.0, 2*0.7)
}

func TestRelearningIncorrectStaysFourHours(t *testing.T) {
	sm := NewSM2()
	cur := newState(models.StateRelearning)
	cur.Lapses = 1

	res := sm.NextReview(cur, 0, testNow)

	assert.Equal(t, models.StateRelearning, res.State)
	assert.Equal(t, 2, res.Lapses)
	assert.Equal(t, testNow.Add(4*time.Hour), res.DueDate)
	assert.InDelta(t, 0.5, res.Stability, 1e-9) // max(0.3, 1.0*0.5)
}

func TestQualityOutOfRangeIsClamped(t *testing.T) {
	sm := NewSM2()

	low := sm.NextReview(newState(models.StateNew), -3, testNow)
	high := sm.NextReview(newState(models.StateNew), 11, testNow)

	assert.False(t, low.WasCorrect)
	assert.True(t, high.WasCorrect)
	assert.Equal(t, sm.NextReview(newState(models.StateNew), 0, testNow).EaseFactor, low.EaseFactor)
	assert.Equal(t, sm.NextReview(newState(models.StateNew), 5, testNow).EaseFactor, high.EaseFactor)
}

func TestUnknownStateTreatedAsNew(t *testing.T) {
	sm := NewSM2()
	cur := newState(models.SRSCardState("bogus"))

	res := sm.NextReview(cur, 4, testNow)

	assert.Equal(t, models.StateLearning, res.State)
	assert.Equal(t, testNow.Add(1*time.Minute), res.DueDate)
}

// Ease must stay inside [1.3, 3.5] under any quality sequence.
func TestEaseFactorStaysBounded(t *testing.T) {
	sm := NewSM2()

	sequences := [][]int{
		{0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		{5, 5, 5, 5, 5, 5, 5, 5, 5, 5},
		{5, 0, 5, 0, 5, 0, 5, 0},
		{3, 1, 4, 2, 5, 0, 3, 5, 1, 1, 1, 5, 5, 5, 5, 5, 5, 5, 5, 5},
	}

	for _, seq := range sequences {
		cur := newState(models.StateNew)
		now := testNow
		for _, q := range seq {
			res := sm.NextReview(cur, q, now)
			require.GreaterOrEqual(t, res.EaseFactor, EaseFactorMin)
			require.LessOrEqual(t, res.EaseFactor, EaseFactorMax)
			require.GreaterOrEqual(t, res.Stability, 0.0)

			cur.State = res.State
			cur.Interval = res.Interval
			cur.EaseFactor = res.EaseFactor
			cur.Repetitions = res.Repetitions
			cur.Lapses = res.Lapses
			cur.Stability = res.Stability
			cur.LearningStepIndex = res.LearningStepIndex
			now = res.DueDate
		}
	}
}

// A correct answer must never schedule the card into the past.
func TestCorrectReviewNeverDueBeforeNow(t *testing.T) {
	sm := NewSM2()

	for _, state := range []models.SRSCardState{
		models.StateNew, models.StateLearning, models.StateReview, models.StateRelearning,
	} {
		for q := 3; q <= 5; q++ {
			cur := newState(state)
			cur.Interval = 1
			cur.Repetitions = 1
			res := sm.NextReview(cur, q, testNow)
			assert.False(t, res.DueDate.Before(testNow),
				"state=%s quality=%d scheduled into the past", state, q)
		}
	}
}

func TestAdjustedInterval(t *testing.T) {
	tests := []struct {
		name    string
		raw     int
		penalty float64
		want    int
	}{
		{"no penalty", 10, 0, 10},
		{"negative penalty ignored", 10, -0.5, 10},
		{"full penalty shrinks 30 percent", 10, 1.0, 7},
		{"half penalty", 10, 0.5, 9}, // 10 * 0.85 = 8.5 -> 9
		{"floors at one day", 1, 1.0, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AdjustedInterval(tc.raw, tc.penalty))
		})
	}

	// adjusted <= raw over the whole penalty range
	for p := 0.0; p <= 1.0; p += 0.05 {
		for _, raw := range []int{1, 2, 6, 15, 100} {
			assert.LessOrEqual(t, AdjustedInterval(raw, p), raw)
		}
	}
}

func TestRelaxPenalty(t *testing.T) {
	assert.InDelta(t, 0.5, RelaxPenalty(0.6), 1e-9)
	assert.Equal(t, 0.0, RelaxPenalty(0.05))
	assert.Equal(t, 0.0, RelaxPenalty(0))
}

func TestPenaltyShrinksGraduationInterval(t *testing.T) {
	sm := NewSM2()
	cur := newState(models.StateReview)
	cur.Interval = 10
	cur.Repetitions = 3
	cur.AdaptationPenalty = 1.0

	res := sm.NextReview(cur, 4, testNow)

	// raw 25 days shrunk by 30% -> 17.5 -> 18 (rounded)
	assert.Equal(t, 18, res.Interval)
}
