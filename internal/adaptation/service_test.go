package adaptation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lingo/pkg/models"
)

// fakeStore is an in-memory Store for service tests
type fakeStore struct {
	reviews     []models.ReviewLog
	submissions []models.ExerciseSubmission
	cardTypes   map[int64]models.CardType
	exercises   map[int64]models.Exercise
	patterns    []models.ErrorPattern
	penalties   map[int64]float64 // card id -> last applied penalty
	nextID      int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		cardTypes: make(map[int64]models.CardType),
		exercises: make(map[int64]models.Exercise),
		penalties: make(map[int64]float64),
		nextID:    1,
	}
}

func (f *fakeStore) RecentReviews(userID int64, since time.Time) ([]models.ReviewLog, error) {
	var out []models.ReviewLog
	for _, r := range f.reviews {
		if r.UserID == userID && !r.ReviewedAt.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) RecentSubmissions(userID int64, since time.Time) ([]models.ExerciseSubmission, error) {
	var out []models.ExerciseSubmission
	for _, s := range f.submissions {
		if s.UserID == userID && !s.SubmittedAt.Before(since) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) CardTypes(cardIDs []int64) (map[int64]models.CardType, error) {
	out := make(map[int64]models.CardType)
	for _, id := range cardIDs {
		if t, ok := f.cardTypes[id]; ok {
			out[id] = t
		}
	}
	return out, nil
}

func (f *fakeStore) ExercisesByIDs(exerciseIDs []int64) (map[int64]models.Exercise, error) {
	out := make(map[int64]models.Exercise)
	for _, id := range exerciseIDs {
		if ex, ok := f.exercises[id]; ok {
			out[id] = ex
		}
	}
	return out, nil
}

func (f *fakeStore) ActivePatterns(userID int64) ([]models.ErrorPattern, error) {
	var out []models.ErrorPattern
	for _, p := range f.patterns {
		if p.UserID == userID && p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) CreatePattern(pattern *models.ErrorPattern) error {
	pattern.ID = f.nextID
	f.nextID++
	f.patterns = append(f.patterns, *pattern)
	return nil
}

func (f *fakeStore) UpdatePattern(pattern *models.ErrorPattern) error {
	for i := range f.patterns {
		if f.patterns[i].ID == pattern.ID {
			f.patterns[i] = *pattern
			return nil
		}
	}
	return nil
}

func (f *fakeStore) SetAdaptationPenalty(userID int64, cardIDs []int64, penalty float64) error {
	for _, id := range cardIDs {
		f.penalties[id] = penalty
	}
	return nil
}

var passNow = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

func seedVocabFailures(f *fakeStore, userID int64) {
	// 6 vocab reviews, 3 wrong on card 2 -> 50% error rate
	for i := 0; i < 3; i++ {
		f.reviews = append(f.reviews, models.ReviewLog{
			UserID: userID, CardID: 1, WasCorrect: true, ReviewedAt: passNow.AddDate(0, 0, -1),
		})
		f.reviews = append(f.reviews, models.ReviewLog{
			UserID: userID, CardID: 2, WasCorrect: false, ReviewedAt: passNow.AddDate(0, 0, -1),
		})
	}
	f.cardTypes[1] = models.CardTypeVocab
	f.cardTypes[2] = models.CardTypeVocab
}

func TestRunAnalysisPassCreatesPattern(t *testing.T) {
	store := newFakeStore()
	seedVocabFailures(store, 7)
	svc := NewService(store)

	active, err := svc.RunAnalysisPass(7, passNow)
	require.NoError(t, err)

	require.Len(t, active, 1)
	p := active[0]
	assert.Equal(t, models.PatternVocabWeakness, p.PatternType)
	assert.Equal(t, 1, p.Count)
	assert.InDelta(t, 0.2, p.Severity, 1e-9)
	assert.True(t, p.IsActive)
	assert.Equal(t, []int64{2}, p.AffectedCardIDs)
	assert.Equal(t, passNow, p.FirstDetectedAt)

	// the detection pushed an immediate penalty onto the failing card
	assert.InDelta(t, VocabSRSPenalty, store.penalties[2], 1e-9)
	_, touched := store.penalties[1]
	assert.False(t, touched, "cards answered correctly keep their penalty")
}

func TestRunAnalysisPassReinforcesExisting(t *testing.T) {
	store := newFakeStore()
	seedVocabFailures(store, 7)
	svc := NewService(store)

	_, err := svc.RunAnalysisPass(7, passNow)
	require.NoError(t, err)

	later := passNow.Add(2 * time.Hour)
	active, err := svc.RunAnalysisPass(7, later)
	require.NoError(t, err)

	require.Len(t, active, 1)
	assert.Equal(t, 2, active[0].Count)
	assert.InDelta(t, 0.4, active[0].Severity, 1e-9)
	assert.Equal(t, later, active[0].LastSeenAt)
	assert.Equal(t, passNow, active[0].FirstDetectedAt, "first detection time is preserved")

	// still exactly one stored pattern - reinforced, not duplicated
	assert.Len(t, store.patterns, 1)
}

func TestRunAnalysisPassIgnoresOldHistory(t *testing.T) {
	store := newFakeStore()
	// plenty of failures, but all outside the trailing window
	for i := 0; i < 10; i++ {
		store.reviews = append(store.reviews, models.ReviewLog{
			UserID: 7, CardID: 2, WasCorrect: false, ReviewedAt: passNow.AddDate(0, 0, -30),
		})
	}
	store.cardTypes[2] = models.CardTypeVocab
	svc := NewService(store)

	active, err := svc.RunAnalysisPass(7, passNow)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestResolveImprovedPatterns(t *testing.T) {
	store := newFakeStore()
	store.patterns = append(store.patterns, models.ErrorPattern{
		ID: 1, UserID: 7, PatternType: models.PatternVocabWeakness,
		Severity: 0.6, AffectedCardIDs: []int64{2}, IsActive: true,
	})
	// card 2 now reviews cleanly: 6 correct in the window
	for i := 0; i < 6; i++ {
		store.reviews = append(store.reviews, models.ReviewLog{
			UserID: 7, CardID: 2, WasCorrect: true, ReviewedAt: passNow.AddDate(0, 0, -2),
		})
	}
	svc := NewService(store)

	resolved, err := svc.ResolveImprovedPatterns(7, passNow)
	require.NoError(t, err)

	require.Len(t, resolved, 1)
	assert.False(t, resolved[0].IsActive)
	// severity and affected cards survive deactivation
	assert.InDelta(t, 0.6, resolved[0].Severity, 1e-9)
	assert.Equal(t, []int64{2}, resolved[0].AffectedCardIDs)

	active, err := store.ActivePatterns(7)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestResolveKeepsPatternsWithThinEvidence(t *testing.T) {
	store := newFakeStore()
	store.patterns = append(store.patterns, models.ErrorPattern{
		ID: 1, UserID: 7, PatternType: models.PatternVocabWeakness,
		AffectedCardIDs: []int64{2}, IsActive: true,
	})
	// only 3 reviews: under the minimum sample, resolution must not fire
	for i := 0; i < 3; i++ {
		store.reviews = append(store.reviews, models.ReviewLog{
			UserID: 7, CardID: 2, WasCorrect: true, ReviewedAt: passNow.AddDate(0, 0, -1),
		})
	}
	svc := NewService(store)

	resolved, err := svc.ResolveImprovedPatterns(7, passNow)
	require.NoError(t, err)
	assert.Empty(t, resolved)
}

func TestGetSummary(t *testing.T) {
	store := newFakeStore()
	store.patterns = append(store.patterns,
		models.ErrorPattern{
			ID: 1, UserID: 7, PatternType: models.PatternVocabWeakness,
			Description: "vocab trouble", Severity: 0.8, Count: 4, IsActive: true,
		},
		models.ErrorPattern{
			ID: 2, UserID: 7, PatternType: models.PatternStructureConfusion,
			Description: "order trouble", Severity: 0.2, Count: 1, IsActive: true,
		},
	)
	svc := NewService(store)

	summary, err := svc.GetSummary(7, 10)
	require.NoError(t, err)

	assert.True(t, summary.HasActiveWeaknesses)
	assert.Len(t, summary.ActivePatterns, 2)
	assert.Equal(t, models.ExerciseTranslation, summary.RecommendedExercise)
	// avg severity 0.5 -> reduction 0.7 -> limit 7
	assert.Equal(t, 7, summary.DailyNewCardsLimit)
}

func TestGetSummaryNoWeaknesses(t *testing.T) {
	svc := NewService(newFakeStore())

	summary, err := svc.GetSummary(7, 10)
	require.NoError(t, err)

	assert.False(t, summary.HasActiveWeaknesses)
	assert.Empty(t, summary.ActivePatterns)
	assert.Empty(t, summary.RecommendedExercise)
	assert.Equal(t, 10, summary.DailyNewCardsLimit)
}
