package exercises

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/lingo/pkg/models"
)

// ErrExerciseNotFound is returned when a submission references an
// exercise that does not exist.
var ErrExerciseNotFound = errors.New("exercise not found")

// Store is the storage access the exercise service needs
type Store interface {
	// GetExercise returns the exercise or ErrExerciseNotFound.
	GetExercise(id int64) (*models.Exercise, error)
	GetCard(id int64) (*models.Card, error)
	ExercisesForCard(cardID int64) ([]models.Exercise, error)
	CreateExercise(ex *models.Exercise) error
	CreateSubmission(sub *models.ExerciseSubmission) error
}

// Analyzer mirrors the adaptation hook used after review submissions
type Analyzer interface {
	RunAnalysisPass(userID int64, now time.Time) ([]models.ErrorPattern, error)
}

// Service evaluates and records exercise submissions, and produces
// exercises for a card on demand.
type Service struct {
	store     Store
	generator *Generator
	analyzer  Analyzer // may be nil
}

func NewService(store Store, generator *Generator, analyzer Analyzer) *Service {
	return &Service{store: store, generator: generator, analyzer: analyzer}
}

// SubmissionResult is returned after an answer is evaluated and recorded
type SubmissionResult struct {
	ExerciseID     int64   `json:"exercise_id"`
	IsCorrect      bool    `json:"is_correct"`
	Score          float64 `json:"score"`
	Feedback       string  `json:"feedback"`
	ErrorCategory  string  `json:"error_category,omitempty"`
	ExpectedAnswer string  `json:"expected_answer"`
}

// SubmitAnswer evaluates the answer against the exercise, records the
// submission, and kicks off a best-effort adaptation pass.
func (s *Service) SubmitAnswer(userID, exerciseID int64, answer string, responseTimeMs *int, now time.Time) (*SubmissionResult, error) {
	ex, err := s.store.GetExercise(exerciseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load exercise %d: %w", exerciseID, err)
	}

	eval := EvaluateAnswer(answer, ex.ExpectedAnswer, ex.ExerciseType)

	sub := &models.ExerciseSubmission{
		ExerciseID:     exerciseID,
		UserID:         userID,
		UserAnswer:     answer,
		IsCorrect:      eval.IsCorrect,
		Score:          eval.Score,
		ResponseTimeMs: responseTimeMs,
		ErrorCategory:  eval.ErrorCategory,
		SubmittedAt:    now,
	}
	if err := s.store.CreateSubmission(sub); err != nil {
		return nil, fmt.Errorf("failed to record submission: %w", err)
	}

	if s.analyzer != nil {
		if _, err := s.analyzer.RunAnalysisPass(userID, now); err != nil {
			log.Printf("adaptation pass failed for user %d: %v", userID, err)
		}
	}

	return &SubmissionResult{
		ExerciseID:     exerciseID,
		IsCorrect:      eval.IsCorrect,
		Score:          eval.Score,
		Feedback:       eval.Feedback,
		ErrorCategory:  eval.ErrorCategory,
		ExpectedAnswer: ex.ExpectedAnswer,
	}, nil
}

// GetOrGenerate returns the stored exercises of a card, generating and
// persisting a fresh set when none exist yet.
func (s *Service) GetOrGenerate(ctx context.Context, cardID int64, targetLanguage, nativeLanguage string) ([]models.Exercise, error) {
	existing, err := s.store.ExercisesForCard(cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to load exercises for card %d: %w", cardID, err)
	}
	if len(existing) > 0 {
		return existing, nil
	}

	card, err := s.store.GetCard(cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to load card %d: %w", cardID, err)
	}

	generated := s.generator.ForCard(ctx, *card, targetLanguage, nativeLanguage)
	out := make([]models.Exercise, 0, len(generated))
	for _, g := range generated {
		ex := models.Exercise{
			CardID:         cardID,
			ExerciseType:   g.ExerciseType,
			Prompt:         g.Prompt,
			ExpectedAnswer: g.ExpectedAnswer,
			Context:        g.Context,
			CreatedAt:      time.Now(),
		}
		if err := s.store.CreateExercise(&ex); err != nil {
			return nil, fmt.Errorf("failed to save generated exercise: %w", err)
		}
		out = append(out, ex)
	}
	return out, nil
}
