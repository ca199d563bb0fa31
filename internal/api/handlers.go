package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/example/lingo/internal/exercises"
	"github.com/example/lingo/internal/importer"
	"github.com/example/lingo/internal/review"
	"github.com/example/lingo/pkg/models"
)

type submitReviewRequest struct {
	UserID         int64 `json:"user_id"`
	CardID         int64 `json:"card_id"`
	Quality        int   `json:"quality"`
	ResponseTimeMs *int  `json:"response_time_ms"`
}

func (s *Server) submitReview(c echo.Context) error {
	var req submitReviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("invalid request body"))
	}
	if req.UserID == 0 || req.CardID == 0 {
		return c.JSON(http.StatusBadRequest, errJSON("user_id and card_id are required"))
	}

	result, err := s.reviews.SubmitReview(req.UserID, req.CardID, req.Quality, req.ResponseTimeMs, time.Now().UTC())
	if err != nil {
		if errors.Is(err, review.ErrItemNotFound) {
			return c.JSON(http.StatusNotFound, errJSON("no scheduling record for card %d", req.CardID))
		}
		return c.JSON(http.StatusInternalServerError, errJSON("failed to submit review: %v", err))
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) getDueItems(c echo.Context) error {
	userID, err := queryInt64(c, "user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("user_id is required"))
	}
	limit := queryIntDefault(c, "limit", 20)
	includeNew := c.QueryParam("include_new") == "true"

	items, err := s.reviews.GetDueItems(userID, limit, includeNew, time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errJSON("failed to get due items: %v", err))
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) getProgress(c echo.Context) error {
	userID, err := queryInt64(c, "user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("user_id is required"))
	}

	stats, err := s.reviews.GetProgressStats(userID, time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errJSON("failed to get progress: %v", err))
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) getCardExercises(c echo.Context) error {
	cardID, err := paramInt64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("invalid card id"))
	}

	targetLanguage := c.QueryParam("target_language")
	if targetLanguage == "" {
		targetLanguage = "Japanese"
	}
	nativeLanguage := c.QueryParam("native_language")
	if nativeLanguage == "" {
		nativeLanguage = "English"
	}

	list, err := s.exercises.GetOrGenerate(c.Request().Context(), cardID, targetLanguage, nativeLanguage)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errJSON("failed to get exercises: %v", err))
	}
	return c.JSON(http.StatusOK, list)
}

type submitAnswerRequest struct {
	UserID         int64  `json:"user_id"`
	Answer         string `json:"answer"`
	ResponseTimeMs *int   `json:"response_time_ms"`
}

func (s *Server) submitAnswer(c echo.Context) error {
	exerciseID, err := paramInt64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("invalid exercise id"))
	}
	var req submitAnswerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("invalid request body"))
	}
	if req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, errJSON("user_id is required"))
	}

	result, err := s.exercises.SubmitAnswer(req.UserID, exerciseID, req.Answer, req.ResponseTimeMs, time.Now().UTC())
	if err != nil {
		if errors.Is(err, exercises.ErrExerciseNotFound) {
			return c.JSON(http.StatusNotFound, errJSON("exercise %d not found", exerciseID))
		}
		return c.JSON(http.StatusInternalServerError, errJSON("failed to submit answer: %v", err))
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) getAdaptationSummary(c echo.Context) error {
	userID, err := queryInt64(c, "user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("user_id is required"))
	}

	summary, err := s.adaptation.GetSummary(userID, s.defaultNewCardsPerDay)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errJSON("failed to get adaptation summary: %v", err))
	}
	return c.JSON(http.StatusOK, summary)
}

type adaptationRequest struct {
	UserID int64 `json:"user_id"`
}

func (s *Server) runAdaptationAnalysis(c echo.Context) error {
	var req adaptationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("invalid request body"))
	}
	if req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, errJSON("user_id is required"))
	}

	patterns, err := s.adaptation.RunAnalysisPass(req.UserID, time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errJSON("failed to run adaptation analysis: %v", err))
	}
	return c.JSON(http.StatusOK, patterns)
}

func (s *Server) resolveAdaptationPatterns(c echo.Context) error {
	var req adaptationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("invalid request body"))
	}
	if req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, errJSON("user_id is required"))
	}

	resolved, err := s.adaptation.ResolveImprovedPatterns(req.UserID, time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errJSON("failed to resolve patterns: %v", err))
	}
	return c.JSON(http.StatusOK, resolved)
}

type createCardRequest struct {
	CardType        models.CardType `json:"card_type"`
	Front           string          `json:"front"`
	Back            string          `json:"back"`
	Hint            string          `json:"hint"`
	Reading         string          `json:"reading"`
	ContextSentence string          `json:"context_sentence"`
	AssignToUserID  int64           `json:"assign_to_user_id"`
}

func (s *Server) createCard(c echo.Context) error {
	var req createCardRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("invalid request body"))
	}
	if req.Front == "" || req.Back == "" {
		return c.JSON(http.StatusBadRequest, errJSON("front and back are required"))
	}
	if req.CardType == "" {
		req.CardType = models.CardTypeVocab
	}

	card := &models.Card{
		CardType:        req.CardType,
		Front:           req.Front,
		Back:            req.Back,
		Hint:            req.Hint,
		Reading:         req.Reading,
		ContextSentence: req.ContextSentence,
	}
	if err := s.store.Cards.Create(card); err != nil {
		return c.JSON(http.StatusInternalServerError, errJSON("failed to create card: %v", err))
	}

	if req.AssignToUserID != 0 {
		if err := s.store.SRS.EnsureForUser(req.AssignToUserID, []int64{card.ID}); err != nil {
			return c.JSON(http.StatusInternalServerError, errJSON("failed to assign card: %v", err))
		}
	}
	return c.JSON(http.StatusCreated, card)
}

func (s *Server) listCards(c echo.Context) error {
	cards, err := s.store.Cards.List(c.QueryParam("type"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errJSON("failed to list cards: %v", err))
	}
	return c.JSON(http.StatusOK, cards)
}

type importRequest struct {
	FilePath       string `json:"file_path"`
	AssignToUserID int64  `json:"assign_to_user_id"`
}

func (s *Server) importCards(c echo.Context) error {
	var req importRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("invalid request body"))
	}
	if req.FilePath == "" {
		return c.JSON(http.StatusBadRequest, errJSON("file_path is required"))
	}

	result, err := importer.ImportCards(s.store.Cards, importer.DefaultConfig(req.FilePath))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errJSON("import failed: %v", err))
	}

	if req.AssignToUserID != 0 {
		cards, err := s.store.Cards.List("")
		if err != nil {
			return c.JSON(http.StatusInternalServerError, errJSON("failed to list cards for assignment: %v", err))
		}
		ids := make([]int64, 0, len(cards))
		for _, card := range cards {
			ids = append(ids, card.ID)
		}
		if err := s.store.SRS.EnsureForUser(req.AssignToUserID, ids); err != nil {
			return c.JSON(http.StatusInternalServerError, errJSON("failed to assign cards: %v", err))
		}
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) createUser(c echo.Context) error {
	var user models.User
	if err := c.Bind(&user); err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("invalid request body"))
	}
	if user.Name == "" {
		return c.JSON(http.StatusBadRequest, errJSON("name is required"))
	}
	if user.NewCardsPerDay == 0 {
		user.NewCardsPerDay = s.defaultNewCardsPerDay
	}

	if err := s.store.Users.Create(&user); err != nil {
		return c.JSON(http.StatusInternalServerError, errJSON("failed to create user: %v", err))
	}
	return c.JSON(http.StatusCreated, user)
}

func (s *Server) getUser(c echo.Context) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errJSON("invalid user id"))
	}
	user, err := s.store.Users.GetByID(id)
	if err != nil {
		return c.JSON(http.StatusNotFound, errJSON("user %d not found", id))
	}
	return c.JSON(http.StatusOK, user)
}

func paramInt64(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

func queryInt64(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.QueryParam(name), 10, 64)
}

func queryIntDefault(c echo.Context, name string, fallback int) int {
	v := c.QueryParam(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
