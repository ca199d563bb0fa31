// Package api exposes the HTTP interface: review submission, the due
// queue, exercises, progress, adaptation summaries, and card
// management.
package api

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/example/lingo/internal/adaptation"
	"github.com/example/lingo/internal/database"
	"github.com/example/lingo/internal/exercises"
	"github.com/example/lingo/internal/review"
)

// Server wires the services into an echo instance
type Server struct {
	echo *echo.Echo

	store      *database.Store
	reviews    *review.Service
	exercises  *exercises.Service
	adaptation *adaptation.Service

	defaultNewCardsPerDay int
}

func NewServer(store *database.Store, reviews *review.Service, exerciseSvc *exercises.Service, adaptationSvc *adaptation.Service, defaultNewCardsPerDay int) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	s := &Server{
		echo:                  e,
		store:                 store,
		reviews:               reviews,
		exercises:             exerciseSvc,
		adaptation:            adaptationSvc,
		defaultNewCardsPerDay: defaultNewCardsPerDay,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	g := s.echo.Group("/api/v1")

	g.POST("/reviews", s.submitReview)
	g.GET("/reviews/due", s.getDueItems)
	g.GET("/progress", s.getProgress)

	g.GET("/cards/:id/exercises", s.getCardExercises)
	g.POST("/exercises/:id/submissions", s.submitAnswer)

	g.GET("/adaptation/summary", s.getAdaptationSummary)
	g.POST("/adaptation/analyze", s.runAdaptationAnalysis)
	g.POST("/adaptation/resolve", s.resolveAdaptationPatterns)

	g.POST("/cards", s.createCard)
	g.GET("/cards", s.listCards)
	g.POST("/imports", s.importCards)

	g.POST("/users", s.createUser)
	g.GET("/users/:id", s.getUser)
}

// Start begins serving HTTP on addr
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

type errorResponse struct {
	Message string `json:"message"`
}

func errJSON(format string, args ...interface{}) errorResponse {
	return errorResponse{Message: fmt.Sprintf(format, args...)}
}
