// Package scheduler runs the recurring background jobs: hourly review
// reminders and the nightly error-pattern recovery check.
package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/lingo/pkg/models"
)

// Notifier delivers review reminders
type Notifier interface {
	SendReviewReminder(chatID int64, dueCount int) error
}

// Store is the storage access the scheduled jobs need
type Store interface {
	GetUsersForNotification(hour int) ([]models.User, error)
	AllUsers() ([]models.User, error)
	DueStates(userID int64, now time.Time) ([]models.SRSState, error)
}

// PatternResolver deactivates error patterns whose error rate recovered
type PatternResolver interface {
	ResolveImprovedPatterns(userID int64, now time.Time) ([]models.ErrorPattern, error)
}

// Scheduler manages the application's recurring jobs
type Scheduler struct {
	scheduler *gocron.Scheduler
	store     Store
	notifier  Notifier
	resolver  PatternResolver

	// reminders are only sent between these hours
	startHour int
	endHour   int
}

func New(store Store, notifier Notifier, resolver PatternResolver, startHour, endHour int) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		store:     store,
		notifier:  notifier,
		resolver:  resolver,
		startHour: startHour,
		endHour:   endHour,
	}
}

// Start begins running all scheduled tasks without blocking
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders)
	s.scheduler.Every(1).Day().At("03:00").Do(s.resolveRecoveredPatterns)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) checkAndSendReminders() {
	s.remindAt(time.Now().UTC())
}

// remindAt notifies users who chose the given hour and have cards due
func (s *Scheduler) remindAt(now time.Time) {
	hour := now.Hour()
	if hour < s.startHour || hour > s.endHour {
		return
	}

	users, err := s.store.GetUsersForNotification(hour)
	if err != nil {
		log.Printf("failed to get users for notification: %v", err)
		return
	}

	for _, user := range users {
		due, err := s.store.DueStates(user.ID, now)
		if err != nil {
			log.Printf("failed to get due cards for user %d: %v", user.ID, err)
			continue
		}
		if len(due) == 0 {
			continue
		}
		if err := s.notifier.SendReviewReminder(user.TelegramChatID, len(due)); err != nil {
			log.Printf("failed to remind user %d: %v", user.ID, err)
		}
	}
}

func (s *Scheduler) resolveRecoveredPatterns() {
	s.resolveAt(time.Now().UTC())
}

// resolveAt runs the recovery check for every user
func (s *Scheduler) resolveAt(now time.Time) {
	if s.resolver == nil {
		return
	}

	users, err := s.store.AllUsers()
	if err != nil {
		log.Printf("failed to list users for pattern resolution: %v", err)
		return
	}
	for _, user := range users {
		resolved, err := s.resolver.ResolveImprovedPatterns(user.ID, now)
		if err != nil {
			log.Printf("failed to resolve patterns for user %d: %v", user.ID, err)
			continue
		}
		if len(resolved) > 0 {
			log.Printf("resolved %d error patterns for user %d", len(resolved), user.ID)
		}
	}
}
