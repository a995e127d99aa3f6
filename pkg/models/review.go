package models

import (
	"time"

	"github.com/google/uuid"
)

// ReviewEntry is a snapshot of a result that fell below the mastery threshold.
// ID is internal; entries are matched for removal by subject, topic and timestamp.
type ReviewEntry struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Subject   string    `json:"subject" db:"subject_name"`
	Topic     string    `json:"topic" db:"topic_name"`
	Correct   int       `json:"correct" db:"correct"`
	Total     int       `json:"total" db:"total"`
	Ratio     float64   `json:"ratio" db:"-"`
	Timestamp time.Time `json:"timestamp" db:"recorded_at"`
}

// Matches reports whether the entry has the given composite key
func (e ReviewEntry) Matches(subject, topic string, timestamp time.Time) bool {
	return e.Subject == subject && e.Topic == topic && e.Timestamp.Equal(timestamp)
}
