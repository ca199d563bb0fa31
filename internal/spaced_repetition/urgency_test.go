package spaced_repetition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/lingo/pkg/models"
)

func TestUrgencyScoreStatePriorities(t *testing.T) {
	relearning := UrgencyScore(models.StateRelearning, nil, 0, testNow)
	learning := UrgencyScore(models.StateLearning, nil, 0, testNow)
	review := UrgencyScore(models.StateReview, nil, 0, testNow)
	newCard := UrgencyScore(models.StateNew, nil, 0, testNow)

	assert.Greater(t, relearning, learning)
	assert.Greater(t, learning, review)
	assert.Greater(t, review, newCard)
	assert.Greater(t, newCard, 0.0)
}

func TestUrgencyScoreDelay(t *testing.T) {
	due := testNow.Add(-3 * time.Hour)
	notYet := testNow.Add(2 * time.Hour)

	overdue := UrgencyScore(models.StateReview, &due, 0, testNow)
	early := UrgencyScore(models.StateReview, &notYet, 0, testNow)
	unscheduled := UrgencyScore(models.StateReview, nil, 0, testNow)

	assert.InDelta(t, 10+3*2, overdue, 1e-9)
	assert.InDelta(t, 10, early, 1e-9, "future due dates must not lower the score")
	assert.InDelta(t, 10, unscheduled, 1e-9)
}

// Holding state and lapses fixed, more delay never lowers urgency.
func TestUrgencyScoreMonotonicInDelay(t *testing.T) {
	prev := -1.0
	for h := 0; h <= 72; h += 6 {
		due := testNow.Add(-time.Duration(h) * time.Hour)
		score := UrgencyScore(models.StateReview, &due, 2, testNow)
		assert.GreaterOrEqual(t, score, prev)
		prev = score
	}
}

func TestUrgencyScoreLapses(t *testing.T) {
	none := UrgencyScore(models.StateReview, nil, 0, testNow)
	many := UrgencyScore(models.StateReview, nil, 4, testNow)

	assert.InDelta(t, 20, many-none, 1e-9)
}

func TestRankByUrgencyOrdersAndTruncates(t *testing.T) {
	overdue := testNow.Add(-10 * time.Hour)
	states := []models.SRSState{
		{CardID: 1, State: models.StateNew},
		{CardID: 2, State: models.StateReview, DueDate: &overdue},
		{CardID: 3, State: models.StateRelearning},
		{CardID: 4, State: models.StateLearning},
	}

	ranked := RankByUrgency(states, testNow, 3)

	assert.Len(t, ranked, 3)
	assert.Equal(t, int64(3), ranked[0].CardID) // relearning first
	assert.Equal(t, int64(4), ranked[1].CardID)
	assert.Equal(t, int64(2), ranked[2].CardID)
}

func TestRankByUrgencyStableOnTies(t *testing.T) {
	states := []models.SRSState{
		{CardID: 7, State: models.StateReview},
		{CardID: 8, State: models.StateReview},
		{CardID: 9, State: models.StateReview},
	}

	ranked := RankByUrgency(states, testNow, 0)

	assert.Equal(t, int64(7), ranked[0].CardID)
	assert.Equal(t, int64(8), ranked[1].CardID)
	assert.Equal(t, int64(9), ranked[2].CardID)
}

func TestRankByUrgencyDoesNotMutateInput(t *testing.T) {
	states := []models.SRSState{
		{CardID: 1, State: models.StateNew},
		{CardID: 2, State: models.StateRelearning},
	}

	RankByUrgency(states, testNow, 0)

	assert.Equal(t, int64(1), states[0].CardID)
	assert.Equal(t, int64(2), states[1].CardID)
}
