package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/lingo/internal/adaptation"
	"github.com/example/lingo/internal/exercises"
	"github.com/example/lingo/internal/review"
	"github.com/example/lingo/internal/scheduler"
	"github.com/example/lingo/pkg/models"
)

// Store bundles the repositories and adapts them to the narrow
// interfaces the services consume.
type Store struct {
	Users         *UserRepository
	Cards         *CardRepository
	SRS           *SRSRepository
	ReviewLogs    *ReviewLogRepository
	Exercises     *ExerciseRepository
	ErrorPatterns *ErrorPatternRepository
}

var (
	_ review.Store     = (*Store)(nil)
	_ adaptation.Store = (*Store)(nil)
	_ exercises.Store  = (*Store)(nil)
	_ scheduler.Store  = (*Store)(nil)
)

func NewStore(db *sqlx.DB) *Store {
	return &Store{
		Users:         NewUserRepository(db),
		Cards:         NewCardRepository(db),
		SRS:           NewSRSRepository(db),
		ReviewLogs:    NewReviewLogRepository(db),
		Exercises:     NewExerciseRepository(db),
		ErrorPatterns: NewErrorPatternRepository(db),
	}
}

// review.Store

func (s *Store) GetSRSState(userID, cardID int64) (*models.SRSState, error) {
	state, err := s.SRS.GetByUserAndCard(userID, cardID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, review.ErrItemNotFound
	}
	return state, err
}

func (s *Store) ApplyReview(state *models.SRSState, reviewLog *models.ReviewLog) error {
	return s.SRS.ApplyReview(state, reviewLog)
}

func (s *Store) DueStates(userID int64, now time.Time) ([]models.SRSState, error) {
	return s.SRS.DueStates(userID, now)
}

func (s *Store) NewStates(userID int64, limit int) ([]models.SRSState, error) {
	return s.SRS.NewStates(userID, limit)
}

func (s *Store) AllStates(userID int64) ([]models.SRSState, error) {
	return s.SRS.AllStates(userID)
}

func (s *Store) CardsByIDs(cardIDs []int64) (map[int64]models.Card, error) {
	return s.Cards.GetByIDs(cardIDs)
}

func (s *Store) RecentReviews(userID int64, since time.Time) ([]models.ReviewLog, error) {
	return s.ReviewLogs.RecentByUser(userID, since)
}

// scheduler.Store

func (s *Store) GetUsersForNotification(hour int) ([]models.User, error) {
	return s.Users.GetUsersForNotification(hour)
}

func (s *Store) AllUsers() ([]models.User, error) {
	return s.Users.GetAll()
}

// adaptation.Store

func (s *Store) RecentSubmissions(userID int64, since time.Time) ([]models.ExerciseSubmission, error) {
	return s.Exercises.RecentSubmissions(userID, since)
}

func (s *Store) CardTypes(cardIDs []int64) (map[int64]models.CardType, error) {
	return s.Cards.TypesByIDs(cardIDs)
}

func (s *Store) ExercisesByIDs(exerciseIDs []int64) (map[int64]models.Exercise, error) {
	return s.Exercises.GetByIDs(exerciseIDs)
}

func (s *Store) ActivePatterns(userID int64) ([]models.ErrorPattern, error) {
	return s.ErrorPatterns.ActiveByUser(userID)
}

func (s *Store) CreatePattern(pattern *models.ErrorPattern) error {
	return s.ErrorPatterns.Create(pattern)
}

func (s *Store) UpdatePattern(pattern *models.ErrorPattern) error {
	return s.ErrorPatterns.Update(pattern)
}

func (s *Store) SetAdaptationPenalty(userID int64, cardIDs []int64, penalty float64) error {
	return s.SRS.SetAdaptationPenalty(userID, cardIDs, penalty)
}

// exercises.Store

func (s *Store) GetExercise(id int64) (*models.Exercise, error) {
	ex, err := s.Exercises.GetByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, exercises.ErrExerciseNotFound
	}
	return ex, err
}

func (s *Store) GetCard(id int64) (*models.Card, error) {
	return s.Cards.GetByID(id)
}

func (s *Store) ExercisesForCard(cardID int64) ([]models.Exercise, error) {
	return s.Exercises.ByCard(cardID)
}

func (s *Store) CreateExercise(ex *models.Exercise) error {
	return s.Exercises.Create(ex)
}

func (s *Store) CreateSubmission(sub *models.ExerciseSubmission) error {
	return s.Exercises.CreateSubmission(sub)
}
