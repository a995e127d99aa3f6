package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/studybot/pkg/models"
	"github.com/google/uuid"
)

// ReviewEntries returns a copy of the review list in append order.
func (l *Ledger) ReviewEntries() []models.ReviewEntry {
	return append([]models.ReviewEntry(nil), l.review...)
}

// RemoveReviewEntry deletes every review entry with the given subject, topic
// and timestamp and returns how many were removed. No match is not an error.
func (l *Ledger) RemoveReviewEntry(subjectName, topicName string, timestamp time.Time) int {
	timestamp = normalizeTimestamp(timestamp)
	return l.removeReview(func(e models.ReviewEntry) bool {
		return e.Matches(subjectName, topicName, timestamp)
	})
}

// RemoveReviewEntryByID removes the entry with the given id along with every
// other entry sharing its composite key, and returns how many were removed.
func (l *Ledger) RemoveReviewEntryByID(id uuid.UUID) int {
	for _, e := range l.review {
		if e.ID == id {
			return l.RemoveReviewEntry(e.Subject, e.Topic, e.Timestamp)
		}
	}
	return 0
}

func (l *Ledger) removeReview(match func(models.ReviewEntry) bool) int {
	kept := l.review[:0:0]
	for _, e := range l.review {
		if !match(e) {
			kept = append(kept, e)
		}
	}
	removed := len(l.review) - len(kept)
	if removed > 0 {
		l.review = kept
	}
	return removed
}

// ReviewLabel renders the "<subject> - <topic> (<timestamp>)" label used to
// pick a review entry for removal.
func ReviewLabel(e models.ReviewEntry) string {
	return fmt.Sprintf("%s - %s (%s)", e.Subject, e.Topic, models.FormatTimestamp(e.Timestamp))
}

// ParseReviewLabel is the inverse of ReviewLabel. The subject ends at the
// first " - " and the timestamp is taken from the last parenthesised group.
func ParseReviewLabel(label string) (subjectName, topicName string, timestamp time.Time, err error) {
	label = strings.TrimSpace(label)
	open := strings.LastIndex(label, " (")
	if open < 0 || !strings.HasSuffix(label, ")") {
		return "", "", time.Time{}, fmt.Errorf("review label %q has no timestamp: %w", label, ErrInvalidInput)
	}
	timestamp, err = models.ParseTimestamp(label[open+2 : len(label)-1])
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("review label %q: %v: %w", label, err, ErrInvalidInput)
	}
	subjectName, topicName, ok := strings.Cut(label[:open], " - ")
	if !ok || subjectName == "" || topicName == "" {
		return "", "", time.Time{}, fmt.Errorf("review label %q has no subject or topic: %w", label, ErrInvalidInput)
	}
	return subjectName, topicName, timestamp, nil
}
