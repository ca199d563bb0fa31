package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/lingo/internal/adaptation"
	"github.com/example/lingo/internal/api"
	"github.com/example/lingo/internal/config"
	"github.com/example/lingo/internal/database"
	"github.com/example/lingo/internal/exercises"
	"github.com/example/lingo/internal/notify"
	"github.com/example/lingo/internal/review"
	"github.com/example/lingo/internal/scheduler"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg.DBType, cfg.SQLitePath, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	store := database.NewStore(db)

	adaptationSvc := adaptation.NewService(store)
	reviewSvc := review.NewService(store, adaptationSvc)

	var generator *exercises.Generator
	if cfg.OpenAIKey != "" {
		generator = exercises.NewOpenAIGenerator(cfg.OpenAIKey)
	} else {
		log.Println("OPENAI_API_KEY not set, using local exercise generation")
		generator = exercises.NewGenerator(nil)
	}
	exerciseSvc := exercises.NewService(store, generator, adaptationSvc)

	var jobs *scheduler.Scheduler
	if cfg.TelegramToken != "" {
		notifier, err := notify.NewTelegramNotifier(cfg.TelegramToken)
		if err != nil {
			log.Fatalf("Failed to create telegram notifier: %v", err)
		}
		jobs = scheduler.New(store, notifier, adaptationSvc, cfg.NotifyStartHour, cfg.NotifyEndHour)
		jobs.Start()
		defer jobs.Stop()
	} else {
		log.Println("TELEGRAM_BOT_TOKEN not set, reminders disabled")
	}

	server := api.NewServer(store, reviewSvc, exerciseSvc, adaptationSvc, cfg.NewCardsPerDay)

	go func() {
		if err := server.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()
	log.Printf("Server started on %s. Press Ctrl+C to stop.", cfg.HTTPAddr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("Received signal: %v", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server stopped successfully")
}
