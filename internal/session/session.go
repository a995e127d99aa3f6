// Package session owns the single ledger of a running process. Every
// operation runs to completion, including the save, before the next one
// starts.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/example/studybot/internal/ledger"
	"github.com/example/studybot/pkg/models"
	"github.com/google/uuid"
)

var (
	// ErrIOFailure wraps store errors. The in-memory change that preceded a
	// failed save is kept.
	ErrIOFailure = errors.New("storage failure")

	// ErrUnauthorized is returned for mutations while logged out.
	ErrUnauthorized = errors.New("not logged in")
)

// Store is the persistence contract the session depends on.
type Store interface {
	Load(ctx context.Context) (models.Snapshot, error)
	Save(ctx context.Context, snap models.Snapshot) error
}

// Authenticator checks login attempts.
type Authenticator interface {
	Check(input string) bool
}

// Session serialises access to a ledger and persists it after each mutation.
type Session struct {
	mu     sync.Mutex
	ledger *ledger.Ledger
	store  Store
	auth   Authenticator
	logger *slog.Logger
}

// Open loads the ledger from store and returns a session owning it.
func Open(ctx context.Context, store Store, auth Authenticator, logger *slog.Logger, opts ...ledger.Option) (*Session, error) {
	if auth == nil {
		return nil, errors.New("session needs an authenticator")
	}
	if logger == nil {
		logger = slog.Default()
	}
	snap, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	// stored results that break the correct/total rules are dropped, not fatal
	opts = append(opts, ledger.WithInvalidRecordHandler(func(err error) {
		logger.Warn("skipping invalid stored result", "error", err)
	}))
	l, err := ledger.FromSnapshot(snap, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to restore ledger: %w", err)
	}
	logger.Info("ledger loaded",
		"subjects", len(snap.Subjects),
		"records", snap.RecordCount(),
		"review_entries", len(snap.ReviewList))
	return &Session{ledger: l, store: store, auth: auth, logger: logger}, nil
}

func (s *Session) persist(ctx context.Context, op string) error {
	if err := s.store.Save(ctx, s.ledger.Snapshot()); err != nil {
		s.logger.Error("failed to save ledger", "operation", op, "error", err)
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	s.logger.Debug("ledger saved", "operation", op)
	return nil
}

// mutate runs fn under the lock and saves when fn succeeds.
func (s *Session) mutate(ctx context.Context, op string, fn func(l *ledger.Ledger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ledger.LoggedIn() {
		return ErrUnauthorized
	}
	if err := fn(s.ledger); err != nil {
		s.logger.Debug("operation rejected", "operation", op, "error", err)
		return err
	}
	return s.persist(ctx, op)
}

// Login sets the logged-in flag when secret matches and saves it.
// It returns false for a wrong secret.
func (s *Session) Login(ctx context.Context, secret string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.auth.Check(secret) {
		s.logger.Warn("rejected login attempt")
		return false, nil
	}
	s.ledger.SetLoggedIn(true)
	return true, s.persist(ctx, "login")
}

// Logout clears the logged-in flag and saves it.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger.SetLoggedIn(false)
	return s.persist(ctx, "logout")
}

// LoggedIn reports the current login flag.
func (s *Session) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.LoggedIn()
}

// AddSubject creates a subject.
func (s *Session) AddSubject(ctx context.Context, name string) error {
	return s.mutate(ctx, "add_subject", func(l *ledger.Ledger) error {
		return l.AddSubject(name)
	})
}

// RemoveSubject deletes a subject with its topics and records.
func (s *Session) RemoveSubject(ctx context.Context, name string) error {
	return s.mutate(ctx, "remove_subject", func(l *ledger.Ledger) error {
		return l.RemoveSubject(name)
	})
}

// AddTopic creates a topic under subject.
func (s *Session) AddTopic(ctx context.Context, subject, name string) error {
	return s.mutate(ctx, "add_topic", func(l *ledger.Ledger) error {
		return l.AddTopic(subject, name)
	})
}

// RemoveTopic deletes a topic with its records.
func (s *Session) RemoveTopic(ctx context.Context, subject, name string) error {
	return s.mutate(ctx, "remove_topic", func(l *ledger.Ledger) error {
		return l.RemoveTopic(subject, name)
	})
}

// RegisterResult appends a result and, below the threshold, a review entry.
// On ErrIOFailure the returned record is still valid: it was applied in
// memory but not saved.
func (s *Session) RegisterResult(ctx context.Context, subject, topic string, correct, total int, at time.Time) (models.PerformanceRecord, bool, error) {
	var (
		record models.PerformanceRecord
		added  bool
	)
	err := s.mutate(ctx, "register_result", func(l *ledger.Ledger) error {
		var err error
		record, added, err = l.RegisterResult(subject, topic, correct, total, at)
		return err
	})
	return record, added, err
}

// RemoveReviewEntry removes the review entries matching the composite key
// and returns how many were removed. Zero matches is not an error.
func (s *Session) RemoveReviewEntry(ctx context.Context, subject, topic string, at time.Time) (int, error) {
	var removed int
	err := s.mutate(ctx, "remove_review_entry", func(l *ledger.Ledger) error {
		removed = l.RemoveReviewEntry(subject, topic, at)
		return nil
	})
	return removed, err
}

// RemoveReviewEntryByID removes the entry with id and every entry sharing its key.
func (s *Session) RemoveReviewEntryByID(ctx context.Context, id uuid.UUID) (int, error) {
	var removed int
	err := s.mutate(ctx, "remove_review_entry", func(l *ledger.Ledger) error {
		removed = l.RemoveReviewEntryByID(id)
		return nil
	})
	return removed, err
}

// Subjects returns subject names in insertion order.
func (s *Session) Subjects() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Subjects()
}

// Topics returns topic names of subject in insertion order.
func (s *Session) Topics(subject string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Topics(subject)
}

// Records returns the results of one topic in chronological order.
func (s *Session) Records(subject, topic string) ([]models.PerformanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Records(subject, topic)
}

// ReviewEntries returns the review list in append order.
func (s *Session) ReviewEntries() []models.ReviewEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.ReviewEntries()
}

// PendingReviewCount returns the length of the review list.
func (s *Session) PendingReviewCount() int {
	return len(s.ReviewEntries())
}

// Statistics returns every performance record as a row, in ledger order.
func (s *Session) Statistics() []models.StatisticsRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Collect(s.ledger.Statistics())
}

// SubjectTotals returns correct answers summed per subject.
func (s *Session) SubjectTotals() []models.SubjectTotal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.SubjectTotals(s.ledger.Statistics())
}

// Close saves the final state.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx, "shutdown")
}
