package spaced_repetition

import (
	"sort"
	"time"

	"github.com/example/lingo/pkg/models"
)

// State priorities for queue ordering: relearning cards come first,
// then learning, then regular reviews, then brand new cards.
var statePriority = map[models.SRSCardState]float64{
	models.StateRelearning: 100,
	models.StateLearning:   50,
	models.StateReview:     10,
	models.StateNew:        1,
}

// UrgencyScore computes the ranking value of a card for the review queue.
// Higher = more urgent. The score combines state priority, hours of delay
// past the due date (0 when not yet due or never scheduled), and lapses.
func UrgencyScore(state models.SRSCardState, dueDate *time.Time, lapses int, now time.Time) float64 {
	score := statePriority[state]

	if dueDate != nil {
		delayHours := now.Sub(*dueDate).Hours()
		if delayHours > 0 {
			score += delayHours * 2
		}
	}

	score += float64(lapses) * 5
	return score
}

// RankByUrgency orders the candidate records by descending urgency and
// truncates to limit (limit <= 0 means no truncation). The sort is stable:
// records with equal scores keep their input order, so callers that need
// deterministic ties must pre-sort the candidates themselves.
func RankByUrgency(states []models.SRSState, now time.Time, limit int) []models.SRSState {
	ranked := make([]models.SRSState, len(states))
	copy(ranked, states)

	sort.SliceStable(ranked, func(i, j int) bool {
		si := UrgencyScore(ranked[i].State, ranked[i].DueDate, ranked[i].Lapses, now)
		sj := UrgencyScore(ranked[j].State, ranked[j].DueDate, ranked[j].Lapses, now)
		return si > sj
	})

	if limit > 0 && len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}
