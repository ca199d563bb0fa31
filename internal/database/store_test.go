package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lingo/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Connect("sqlite", filepath.Join(t.TempDir(), "test.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func TestCreateCardAssignsID(t *testing.T) {
	store := newTestStore(t)

	card := &models.Card{CardType: models.CardTypeVocab, Front: "猫", Back: "cat"}
	require.NoError(t, store.Cards.Create(card))
	assert.NotZero(t, card.ID)

	got, err := store.Cards.GetByID(card.ID)
	require.NoError(t, err)
	assert.Equal(t, "猫", got.Front)
}

func TestCreateUserAssignsID(t *testing.T) {
	store := newTestStore(t)

	user := &models.User{
		Name:           "Aki",
		Email:          "aki@example.com",
		NativeLanguage: "English",
		TargetLanguage: "Japanese",
		NewCardsPerDay: 10,
	}
	require.NoError(t, store.Users.Create(user))
	assert.NotZero(t, user.ID)
}

func TestCreateExerciseAndSubmissionAssignIDs(t *testing.T) {
	store := newTestStore(t)

	card := &models.Card{CardType: models.CardTypeVocab, Front: "犬", Back: "dog"}
	require.NoError(t, store.Cards.Create(card))

	ex := &models.Exercise{
		CardID:         card.ID,
		ExerciseType:   models.ExerciseTranslation,
		Prompt:         "Translate: 犬",
		ExpectedAnswer: "dog",
	}
	require.NoError(t, store.Exercises.Create(ex))
	assert.NotZero(t, ex.ID)

	user := &models.User{Name: "Aki", TargetLanguage: "Japanese", NativeLanguage: "English"}
	require.NoError(t, store.Users.Create(user))

	sub := &models.ExerciseSubmission{
		ExerciseID:  ex.ID,
		UserID:      user.ID,
		UserAnswer:  "dog",
		IsCorrect:   true,
		Score:       1.0,
		SubmittedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Exercises.CreateSubmission(sub))
	assert.NotZero(t, sub.ID)
}

func TestCreateErrorPatternAssignsID(t *testing.T) {
	store := newTestStore(t)

	user := &models.User{Name: "Aki", TargetLanguage: "Japanese", NativeLanguage: "English"}
	require.NoError(t, store.Users.Create(user))

	now := time.Now().UTC()
	pattern := &models.ErrorPattern{
		UserID:          user.ID,
		PatternType:     models.PatternVocabWeakness,
		Description:     "High error rate on vocabulary cards",
		Count:           1,
		Severity:        0.2,
		AffectedCardIDs: []int64{1, 2},
		IsActive:        true,
		FirstDetectedAt: now,
		LastSeenAt:      now,
	}
	require.NoError(t, store.ErrorPatterns.Create(pattern))
	assert.NotZero(t, pattern.ID)

	active, err := store.ErrorPatterns.ActiveByUser(user.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, []int64{1, 2}, active[0].AffectedCardIDs)
}
