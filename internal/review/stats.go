package review

import (
	"fmt"
	"time"

	"github.com/example/lingo/internal/spaced_repetition"
	"github.com/example/lingo/pkg/models"
)

// statsWindowDays is the history window used for accuracy and activity
const statsWindowDays = 7

// ProgressStats summarizes a learner's study progress
type ProgressStats struct {
	TotalCards      int            `json:"total_cards"`
	NewCards        int            `json:"new_cards"`
	LearningCards   int            `json:"learning_cards"`
	ReviewCards     int            `json:"review_cards"`
	RelearningCards int            `json:"relearning_cards"`
	DueNow          int            `json:"due_now"`
	MasteredCards   int            `json:"mastered_cards"`
	ReviewsLast7d   int            `json:"reviews_last_7d"`
	AccuracyLast7d  float64        `json:"accuracy_last_7d"`
	AvgRetention    float64        `json:"avg_retention"`
	DailyReviews    map[string]int `json:"daily_reviews"`
}

// GetProgressStats computes study progress over the learner's whole
// collection plus the last seven days of review history.
func (s *Service) GetProgressStats(userID int64, now time.Time) (*ProgressStats, error) {
	states, err := s.store.AllStates(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load scheduling records: %w", err)
	}

	stats := &ProgressStats{
		TotalCards:   len(states),
		DailyReviews: make(map[string]int),
	}

	var retentionSum float64
	var retentionCount int
	for _, st := range states {
		switch st.State {
		case models.StateNew:
			stats.NewCards++
		case models.StateLearning:
			stats.LearningCards++
		case models.StateReview:
			stats.ReviewCards++
			if st.Interval > MasteredIntervalDays {
				stats.MasteredCards++
			}
		case models.StateRelearning:
			stats.RelearningCards++
		}
		if st.DueDate != nil && !st.DueDate.After(now) {
			stats.DueNow++
		}
		if st.LastReviewedAt != nil {
			days := now.Sub(*st.LastReviewedAt).Hours() / 24
			retentionSum += spaced_repetition.RetentionProbability(days, st.Stability)
			retentionCount++
		}
	}
	if retentionCount > 0 {
		stats.AvgRetention = retentionSum / float64(retentionCount)
	}

	since := now.AddDate(0, 0, -statsWindowDays)
	logs, err := s.store.RecentReviews(userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load review history: %w", err)
	}

	var correct int
	for _, rl := range logs {
		if rl.WasCorrect {
			correct++
		}
		stats.DailyReviews[rl.ReviewedAt.Format("2006-01-02")]++
	}
	stats.ReviewsLast7d = len(logs)
	if len(logs) > 0 {
		stats.AccuracyLast7d = float64(correct) / float64(len(logs))
	}

	return stats, nil
}
