package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/example/studybot/internal/config"
	"github.com/go-co-op/gocron"
)

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	source    ReviewSource
	cfg       config.SchedulerConfig
	logger    *slog.Logger
	now       func() time.Time
}

// Notifier interface for sending notifications
type Notifier interface {
	SendReviewReminder(count int) error
}

// ReviewSource reports how many review entries are pending
type ReviewSource interface {
	PendingReviewCount() int
}

// New creates a new scheduler instance
func New(cfg config.SchedulerConfig, source ReviewSource, notifier Notifier, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		notifier:  notifier,
		source:    source,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	// the first run happens one interval after start
	if _, err := s.scheduler.Every(s.cfg.Interval).WaitForSchedule().Do(s.checkAndSendReminders); err != nil {
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	s.logger.Info("reminder scheduler started", "interval", s.cfg.Interval,
		"start_hour", s.cfg.StartHour, "end_hour", s.cfg.EndHour)
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// checkAndSendReminders sends a reminder when review entries are pending
// and the current hour is inside the notification window.
func (s *Scheduler) checkAndSendReminders() {
	currentHour := s.now().Hour()
	if currentHour < s.cfg.StartHour || currentHour > s.cfg.EndHour {
		s.logger.Debug("outside notification hours, skipping reminder",
			"hour", currentHour, "start_hour", s.cfg.StartHour, "end_hour", s.cfg.EndHour)
		return
	}

	count := s.source.PendingReviewCount()
	if count == 0 {
		return
	}
	if err := s.notifier.SendReviewReminder(count); err != nil {
		s.logger.Error("failed to send review reminder", "count", count, "error", err)
	}
}
