package ledger

import (
	"fmt"

	"github.com/example/studybot/pkg/models"
	"github.com/google/uuid"
)

// Snapshot returns a deep copy of the ledger state for persistence.
func (l *Ledger) Snapshot() models.Snapshot {
	snap := models.Snapshot{
		LoggedIn:   l.loggedIn,
		Notes:      l.notes,
		Subjects:   make([]models.Subject, 0, len(l.subjects)),
		ReviewList: l.ReviewEntries(),
	}
	for _, s := range l.subjects {
		subj := models.Subject{Name: s.name, Topics: make([]models.Topic, 0, len(s.topics))}
		for _, t := range s.topics {
			subj.Topics = append(subj.Topics, models.Topic{
				Name:    t.name,
				Records: append([]models.PerformanceRecord(nil), t.records...),
			})
		}
		snap.Subjects = append(snap.Subjects, subj)
	}
	return snap
}

// FromSnapshot rebuilds a ledger from persisted state. Duplicate names are
// always rejected. Results violating the correct/total constraints are
// rejected too, unless WithInvalidRecordHandler is given, in which case they
// are skipped and reported to the handler.
func FromSnapshot(snap models.Snapshot, opts ...Option) (*Ledger, error) {
	l := New(opts...)
	l.loggedIn = snap.LoggedIn
	l.notes = snap.Notes

	for _, s := range snap.Subjects {
		if err := l.AddSubject(s.Name); err != nil {
			return nil, fmt.Errorf("failed to load subject: %w", err)
		}
		subj, _ := l.subject(s.Name)
		for _, t := range s.Topics {
			if err := l.AddTopic(s.Name, t.Name); err != nil {
				return nil, fmt.Errorf("failed to load topic: %w", err)
			}
			top, _ := subj.topic(t.Name)
			for i, r := range t.Records {
				if err := ValidateResult(r.Correct, r.Total); err != nil {
					if err := l.invalid(fmt.Errorf("record %d of %s/%s: %w", i, s.Name, t.Name, err)); err != nil {
						return nil, err
					}
					continue
				}
				r.Timestamp = normalizeTimestamp(r.Timestamp)
				top.records = append(top.records, r)
			}
		}
	}

	for i, e := range snap.ReviewList {
		if err := ValidateResult(e.Correct, e.Total); err != nil {
			if err := l.invalid(fmt.Errorf("review entry %d of %s/%s: %w", i, e.Subject, e.Topic, err)); err != nil {
				return nil, err
			}
			continue
		}
		if e.ID == uuid.Nil {
			e.ID = l.newID()
		}
		e.Ratio = float64(e.Correct) / float64(e.Total)
		e.Timestamp = normalizeTimestamp(e.Timestamp)
		l.review = append(l.review, e)
	}
	return l, nil
}

// invalid returns err unless an invalid record handler takes it
func (l *Ledger) invalid(err error) error {
	if l.onInvalid == nil {
		return err
	}
	l.onInvalid(err)
	return nil
}
