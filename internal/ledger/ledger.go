// Package ledger holds the in-memory study ledger: subjects, their topics,
// the performance records registered for each topic and the review list of
// results that fell below the mastery threshold.
//
// A Ledger is not safe for concurrent use. Callers own it exclusively and
// persist it themselves after each mutating call.
package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/studybot/pkg/models"
	"github.com/google/uuid"
)

// ReviewThresholdPercent is the mastery threshold. Results strictly below it
// are copied into the review list.
const ReviewThresholdPercent = 80

// MaxQuestions bounds the total of a single result.
const MaxQuestions = 1_000_000

type topic struct {
	name    string
	records []models.PerformanceRecord
}

type subject struct {
	name   string
	topics []*topic
}

func (s *subject) topic(name string) (*topic, int) {
	for i, t := range s.topics {
		if t.name == name {
			return t, i
		}
	}
	return nil, -1
}

// Ledger is the aggregate root of a study session.
type Ledger struct {
	loggedIn bool
	notes    string
	subjects []*subject
	review   []models.ReviewEntry

	now       func() time.Time
	newID     func() uuid.UUID
	onInvalid func(error)
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the clock used when RegisterResult receives a zero timestamp.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// WithIDGenerator sets the generator for review entry ids.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(l *Ledger) {
		l.newID = newID
	}
}

// WithInvalidRecordHandler makes FromSnapshot skip stored results that break
// the correct/total constraints and report each one to fn instead of failing.
func WithInvalidRecordHandler(fn func(error)) Option {
	return func(l *Ledger) {
		l.onInvalid = fn
	}
}

// New returns an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		now:   time.Now,
		newID: uuid.New,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoggedIn reports the persisted login flag.
func (l *Ledger) LoggedIn() bool {
	return l.loggedIn
}

// SetLoggedIn sets the persisted login flag.
func (l *Ledger) SetLoggedIn(loggedIn bool) {
	l.loggedIn = loggedIn
}

// Notes returns the free-text notes carried with the ledger.
func (l *Ledger) Notes() string {
	return l.notes
}

func (l *Ledger) subject(name string) (*subject, int) {
	for i, s := range l.subjects {
		if s.name == name {
			return s, i
		}
	}
	return nil, -1
}

func validateName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s name is blank: %w", kind, ErrInvalidInput)
	}
	return nil
}

// AddSubject creates an empty subject. Names are compared exactly.
func (l *Ledger) AddSubject(name string) error {
	if err := validateName("subject", name); err != nil {
		return err
	}
	if s, _ := l.subject(name); s != nil {
		return fmt.Errorf("subject %q %w", name, ErrDuplicateKey)
	}
	l.subjects = append(l.subjects, &subject{name: name})
	return nil
}

// RemoveSubject deletes a subject with all its topics and records.
// The review list is left untouched.
func (l *Ledger) RemoveSubject(name string) error {
	_, idx := l.subject(name)
	if idx < 0 {
		return fmt.Errorf("subject %q %w", name, ErrNotFound)
	}
	l.subjects = append(l.subjects[:idx], l.subjects[idx+1:]...)
	return nil
}

// AddTopic creates an empty topic under an existing subject.
func (l *Ledger) AddTopic(subjectName, name string) error {
	if err := validateName("topic", name); err != nil {
		return err
	}
	s, _ := l.subject(subjectName)
	if s == nil {
		return fmt.Errorf("subject %q %w", subjectName, ErrNotFound)
	}
	if t, _ := s.topic(name); t != nil {
		return fmt.Errorf("topic %q in subject %q %w", name, subjectName, ErrDuplicateKey)
	}
	s.topics = append(s.topics, &topic{name: name})
	return nil
}

// RemoveTopic deletes a topic and its records.
func (l *Ledger) RemoveTopic(subjectName, name string) error {
	s, _ := l.subject(subjectName)
	if s == nil {
		return fmt.Errorf("subject %q %w", subjectName, ErrNotFound)
	}
	_, idx := s.topic(name)
	if idx < 0 {
		return fmt.Errorf("topic %q in subject %q %w", name, subjectName, ErrNotFound)
	}
	s.topics = append(s.topics[:idx], s.topics[idx+1:]...)
	return nil
}

// ValidateResult checks the correct/total constraints of a result.
func ValidateResult(correct, total int) error {
	if total < 1 || total > MaxQuestions {
		return fmt.Errorf("total must be between 1 and %d, got %d: %w", MaxQuestions, total, ErrInvalidInput)
	}
	if correct < 0 || correct > total {
		return fmt.Errorf("correct must be between 0 and %d, got %d: %w", total, correct, ErrInvalidInput)
	}
	return nil
}

// NeedsReview reports whether a result is below the mastery threshold.
// Callers validate with ValidateResult first, which keeps the products in range.
func NeedsReview(correct, total int) bool {
	return correct*100 < total*ReviewThresholdPercent
}

func normalizeTimestamp(t time.Time) time.Time {
	return t.Truncate(time.Second).In(time.Local)
}

// RegisterResult appends a performance record to a topic. When the result is
// below the mastery threshold a review entry with the same data is appended
// too, and reviewAdded is true. A zero timestamp means now.
func (l *Ledger) RegisterResult(subjectName, topicName string, correct, total int, timestamp time.Time) (record models.PerformanceRecord, reviewAdded bool, err error) {
	if err := ValidateResult(correct, total); err != nil {
		return models.PerformanceRecord{}, false, err
	}
	s, _ := l.subject(subjectName)
	if s == nil {
		return models.PerformanceRecord{}, false, fmt.Errorf("subject %q %w", subjectName, ErrNotFound)
	}
	t, _ := s.topic(topicName)
	if t == nil {
		return models.PerformanceRecord{}, false, fmt.Errorf("topic %q in subject %q %w", topicName, subjectName, ErrNotFound)
	}

	if timestamp.IsZero() {
		timestamp = l.now()
	}
	record = models.PerformanceRecord{
		Correct:   correct,
		Total:     total,
		Timestamp: normalizeTimestamp(timestamp),
	}
	t.records = append(t.records, record)

	if NeedsReview(correct, total) {
		l.review = append(l.review, models.ReviewEntry{
			ID:        l.newID(),
			Subject:   subjectName,
			Topic:     topicName,
			Correct:   correct,
			Total:     total,
			Ratio:     record.Ratio(),
			Timestamp: record.Timestamp,
		})
		reviewAdded = true
	}
	return record, reviewAdded, nil
}

// Subjects returns subject names in insertion order.
func (l *Ledger) Subjects() []string {
	names := make([]string, 0, len(l.subjects))
	for _, s := range l.subjects {
		names = append(names, s.name)
	}
	return names
}

// Topics returns the topic names of a subject in insertion order.
func (l *Ledger) Topics(subjectName string) ([]string, error) {
	s, _ := l.subject(subjectName)
	if s == nil {
		return nil, fmt.Errorf("subject %q %w", subjectName, ErrNotFound)
	}
	names := make([]string, 0, len(s.topics))
	for _, t := range s.topics {
		names = append(names, t.name)
	}
	return names, nil
}

// Records returns a copy of a topic's records in chronological order.
func (l *Ledger) Records(subjectName, topicName string) ([]models.PerformanceRecord, error) {
	s, _ := l.subject(subjectName)
	if s == nil {
		return nil, fmt.Errorf("subject %q %w", subjectName, ErrNotFound)
	}
	t, _ := s.topic(topicName)
	if t == nil {
		return nil, fmt.Errorf("topic %q in subject %q %w", topicName, subjectName, ErrNotFound)
	}
	return append([]models.PerformanceRecord(nil), t.records...), nil
}
