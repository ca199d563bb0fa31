package adaptation

import (
	"fmt"
	"time"

	"github.com/example/lingo/pkg/models"
)

// Store is the storage access the adaptation service needs. Implemented
// by the database layer; test code substitutes fakes.
type Store interface {
	RecentReviews(userID int64, since time.Time) ([]models.ReviewLog, error)
	RecentSubmissions(userID int64, since time.Time) ([]models.ExerciseSubmission, error)
	CardTypes(cardIDs []int64) (map[int64]models.CardType, error)
	ExercisesByIDs(exerciseIDs []int64) (map[int64]models.Exercise, error)
	ActivePatterns(userID int64) ([]models.ErrorPattern, error)
	CreatePattern(pattern *models.ErrorPattern) error
	UpdatePattern(pattern *models.ErrorPattern) error
	SetAdaptationPenalty(userID int64, cardIDs []int64, penalty float64) error
}

// Service runs adaptation passes for a learner.
//
// A pass is a read-check-write over the learner's error patterns, so two
// passes for the same learner must not run concurrently; the calling
// orchestrator owns that serialization (and any transactional boundary).
// Passes for different learners are independent.
type Service struct {
	store Store
}

// NewService creates an adaptation service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// RunAnalysisPass scans the trailing analysis window, updates error
// patterns, and applies SRS penalties to implicated cards. Returns the
// patterns that are active after the pass.
func (s *Service) RunAnalysisPass(userID int64, now time.Time) ([]models.ErrorPattern, error) {
	since := now.AddDate(0, 0, -AnalysisWindowDays)

	reviews, err := s.store.RecentReviews(userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent reviews: %w", err)
	}
	submissions, err := s.store.RecentSubmissions(userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent submissions: %w", err)
	}

	cardTypes, err := s.store.CardTypes(reviewCardIDs(reviews))
	if err != nil {
		return nil, fmt.Errorf("failed to load card types: %w", err)
	}
	exercises, err := s.store.ExercisesByIDs(submissionExerciseIDs(submissions))
	if err != nil {
		return nil, fmt.Errorf("failed to load exercises: %w", err)
	}

	signals := DetectSignals(reviews, cardTypes, submissions, exercises)

	active, err := s.store.ActivePatterns(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active patterns: %w", err)
	}
	byType := make(map[models.PatternType]*models.ErrorPattern, len(active))
	for i := range active {
		byType[active[i].PatternType] = &active[i]
	}

	var updated []models.ErrorPattern
	for _, signal := range signals {
		existing := byType[signal.PatternType]
		if existing != nil {
			Reinforce(existing, signal)
			existing.LastSeenAt = now
			if err := s.store.UpdatePattern(existing); err != nil {
				return nil, fmt.Errorf("failed to update pattern %s: %w", signal.PatternType, err)
			}
			updated = append(updated, *existing)
		} else {
			pattern := &models.ErrorPattern{
				UserID:          userID,
				PatternType:     signal.PatternType,
				Description:     signal.Description,
				Count:           1,
				Severity:        SeverityIncrement,
				AffectedCardIDs: signal.AffectedCardIDs,
				IsActive:        true,
				FirstDetectedAt: now,
				LastSeenAt:      now,
			}
			if err := s.store.CreatePattern(pattern); err != nil {
				return nil, fmt.Errorf("failed to create pattern %s: %w", signal.PatternType, err)
			}
			updated = append(updated, *pattern)
		}

		// Vocab and grammar detections also push an immediate penalty
		// into the scheduler, ahead of the next detector pass.
		if signal.SRSPenalty > 0 && len(signal.AffectedCardIDs) > 0 {
			if err := s.store.SetAdaptationPenalty(userID, signal.AffectedCardIDs, signal.SRSPenalty); err != nil {
				return nil, fmt.Errorf("failed to apply SRS penalty: %w", err)
			}
		}
	}

	return updated, nil
}

// ResolveImprovedPatterns deactivates active patterns whose affected
// cards now review below the recovery threshold. Returns the patterns
// deactivated by this pass. Severity and the affected set are kept -
// deactivation is a terminal flag, not a reset.
func (s *Service) ResolveImprovedPatterns(userID int64, now time.Time) ([]models.ErrorPattern, error) {
	since := now.AddDate(0, 0, -AnalysisWindowDays)

	active, err := s.store.ActivePatterns(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active patterns: %w", err)
	}
	if len(active) == 0 {
		return nil, nil
	}

	reviews, err := s.store.RecentReviews(userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent reviews: %w", err)
	}

	var resolved []models.ErrorPattern
	for i := range active {
		if !ShouldResolve(active[i], reviews) {
			continue
		}
		active[i].IsActive = false
		if err := s.store.UpdatePattern(&active[i]); err != nil {
			return nil, fmt.Errorf("failed to deactivate pattern %s: %w", active[i].PatternType, err)
		}
		resolved = append(resolved, active[i])
	}
	return resolved, nil
}

// RecommendedExerciseType returns the exercise type targeting the most
// severe active weakness; ok is false when nothing is active.
func (s *Service) RecommendedExerciseType(userID int64) (models.ExerciseType, bool, error) {
	active, err := s.store.ActivePatterns(userID)
	if err != nil {
		return "", false, fmt.Errorf("failed to load active patterns: %w", err)
	}
	exType, ok := RecommendExerciseType(active)
	return exType, ok, nil
}

// DailyNewCardsLimit returns the learner's adjusted daily new-card limit
func (s *Service) DailyNewCardsLimit(userID int64, defaultLimit int) (int, error) {
	active, err := s.store.ActivePatterns(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load active patterns: %w", err)
	}
	return DailyNewCardsLimit(active, defaultLimit), nil
}

// PatternInfo is the API-facing view of one active pattern
type PatternInfo struct {
	Type        models.PatternType `json:"type"`
	Description string             `json:"description"`
	Severity    float64            `json:"severity"`
	Count       int                `json:"count"`
	LastSeenAt  time.Time          `json:"last_seen_at"`
}

// Summary aggregates the learner's active adaptations for display
type Summary struct {
	ActivePatterns      []PatternInfo       `json:"active_patterns"`
	RecommendedExercise models.ExerciseType `json:"recommended_exercise_type,omitempty"`
	DailyNewCardsLimit  int                 `json:"daily_new_cards_limit"`
	HasActiveWeaknesses bool                `json:"has_active_weaknesses"`
}

// GetSummary builds the adaptation summary for the progress screen
func (s *Service) GetSummary(userID int64, defaultLimit int) (*Summary, error) {
	active, err := s.store.ActivePatterns(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active patterns: %w", err)
	}

	summary := &Summary{
		ActivePatterns:      make([]PatternInfo, 0, len(active)),
		DailyNewCardsLimit:  DailyNewCardsLimit(active, defaultLimit),
		HasActiveWeaknesses: len(active) > 0,
	}
	for _, p := range active {
		summary.ActivePatterns = append(summary.ActivePatterns, PatternInfo{
			Type:        p.PatternType,
			Description: p.Description,
			Severity:    p.Severity,
			Count:       p.Count,
			LastSeenAt:  p.LastSeenAt,
		})
	}
	if exType, ok := RecommendExerciseType(active); ok {
		summary.RecommendedExercise = exType
	}
	return summary, nil
}

func reviewCardIDs(reviews []models.ReviewLog) []int64 {
	seen := make(map[int64]bool, len(reviews))
	ids := make([]int64, 0, len(reviews))
	for _, r := range reviews {
		if !seen[r.CardID] {
			seen[r.CardID] = true
			ids = append(ids, r.CardID)
		}
	}
	return ids
}

func submissionExerciseIDs(submissions []models.ExerciseSubmission) []int64 {
	seen := make(map[int64]bool, len(submissions))
	ids := make([]int64, 0, len(submissions))
	for _, s := range submissions {
		if !seen[s.ExerciseID] {
			seen[s.ExerciseID] = true
			ids = append(ids, s.ExerciseID)
		}
	}
	return ids
}
