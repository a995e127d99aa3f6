package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/studybot/pkg/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SQLStore keeps the ledger in relational tables. Order is kept in a
// position column on every table.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore wraps an open connection created by Connect.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

type stateRow struct {
	LoggedIn bool   `db:"logged_in"`
	Notes    string `db:"notes"`
}

type topicRow struct {
	SubjectName string `db:"subject_name"`
	Name        string `db:"name"`
}

type recordRow struct {
	SubjectName    string `db:"subject_name"`
	TopicName      string `db:"topic_name"`
	Correct        int    `db:"correct"`
	Total          int    `db:"total"`
	RecordedAtUnix int64  `db:"recorded_at_unix"`
}

type reviewRow struct {
	ID             string `db:"id"`
	SubjectName    string `db:"subject_name"`
	TopicName      string `db:"topic_name"`
	Correct        int    `db:"correct"`
	Total          int    `db:"total"`
	RecordedAtUnix int64  `db:"recorded_at_unix"`
}

// Load reads the whole ledger state
func (s *SQLStore) Load(ctx context.Context) (models.Snapshot, error) {
	var snap models.Snapshot

	var state stateRow
	err := s.db.GetContext(ctx, &state, "SELECT logged_in, notes FROM ledger_state WHERE id = 1")
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return models.Snapshot{}, fmt.Errorf("failed to get ledger state: %w", err)
	default:
		snap.LoggedIn = state.LoggedIn
		snap.Notes = state.Notes
	}

	var subjects []string
	if err := s.db.SelectContext(ctx, &subjects, "SELECT name FROM subjects ORDER BY position"); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to get subjects: %w", err)
	}

	var topics []topicRow
	if err := s.db.SelectContext(ctx, &topics,
		"SELECT subject_name, name FROM topics ORDER BY position"); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to get topics: %w", err)
	}

	var records []recordRow
	if err := s.db.SelectContext(ctx, &records, `
		SELECT subject_name, topic_name, correct, total, recorded_at_unix
		FROM performance_records
		ORDER BY position`); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to get performance records: %w", err)
	}

	var review []reviewRow
	if err := s.db.SelectContext(ctx, &review, `
		SELECT id, subject_name, topic_name, correct, total, recorded_at_unix
		FROM review_entries
		ORDER BY position`); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to get review entries: %w", err)
	}

	type topicKey struct{ subject, topic string }
	subjectIdx := make(map[string]int, len(subjects))
	topicIdx := make(map[topicKey]int, len(topics))

	for i, name := range subjects {
		subjectIdx[name] = i
		snap.Subjects = append(snap.Subjects, models.Subject{Name: name})
	}
	for _, t := range topics {
		si, ok := subjectIdx[t.SubjectName]
		if !ok {
			return models.Snapshot{}, fmt.Errorf("topic %q references unknown subject %q", t.Name, t.SubjectName)
		}
		topicIdx[topicKey{t.SubjectName, t.Name}] = len(snap.Subjects[si].Topics)
		snap.Subjects[si].Topics = append(snap.Subjects[si].Topics, models.Topic{Name: t.Name})
	}
	for _, r := range records {
		ti, ok := topicIdx[topicKey{r.SubjectName, r.TopicName}]
		if !ok {
			return models.Snapshot{}, fmt.Errorf("record references unknown topic %q/%q", r.SubjectName, r.TopicName)
		}
		topic := &snap.Subjects[subjectIdx[r.SubjectName]].Topics[ti]
		topic.Records = append(topic.Records, models.PerformanceRecord{
			Correct:   r.Correct,
			Total:     r.Total,
			Timestamp: time.Unix(r.RecordedAtUnix, 0),
		})
	}
	for _, r := range review {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return models.Snapshot{}, fmt.Errorf("invalid review entry id %q: %w", r.ID, err)
		}
		snap.ReviewList = append(snap.ReviewList, models.ReviewEntry{
			ID:        id,
			Subject:   r.SubjectName,
			Topic:     r.TopicName,
			Correct:   r.Correct,
			Total:     r.Total,
			Ratio:     float64(r.Correct) / float64(r.Total),
			Timestamp: time.Unix(r.RecordedAtUnix, 0),
		})
	}

	return snap, nil
}

// Save replaces the whole ledger state in one transaction
func (s *SQLStore) Save(ctx context.Context, snap models.Snapshot) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"review_entries", "performance_records", "topics", "subjects", "ledger_state"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		tx.Rebind("INSERT INTO ledger_state (id, logged_in, notes) VALUES (1, ?, ?)"),
		snap.LoggedIn, snap.Notes); err != nil {
		return fmt.Errorf("failed to save ledger state: %w", err)
	}

	insertSubject := tx.Rebind("INSERT INTO subjects (name, position) VALUES (?, ?)")
	insertTopic := tx.Rebind("INSERT INTO topics (subject_name, name, position) VALUES (?, ?, ?)")
	insertRecord := tx.Rebind(`
		INSERT INTO performance_records (subject_name, topic_name, position, correct, total, recorded_at_unix)
		VALUES (?, ?, ?, ?, ?, ?)`)

	topicPos, recordPos := 0, 0
	for i, subject := range snap.Subjects {
		if _, err := tx.ExecContext(ctx, insertSubject, subject.Name, i); err != nil {
			return fmt.Errorf("failed to save subject %q: %w", subject.Name, err)
		}
		for _, topic := range subject.Topics {
			if _, err := tx.ExecContext(ctx, insertTopic, subject.Name, topic.Name, topicPos); err != nil {
				return fmt.Errorf("failed to save topic %q: %w", topic.Name, err)
			}
			topicPos++
			for _, r := range topic.Records {
				if _, err := tx.ExecContext(ctx, insertRecord,
					subject.Name, topic.Name, recordPos, r.Correct, r.Total, r.Timestamp.Unix()); err != nil {
					return fmt.Errorf("failed to save record of %q/%q: %w", subject.Name, topic.Name, err)
				}
				recordPos++
			}
		}
	}

	insertReview := tx.Rebind(`
		INSERT INTO review_entries (id, position, subject_name, topic_name, correct, total, recorded_at_unix)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	for i, e := range snap.ReviewList {
		id := e.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		if _, err := tx.ExecContext(ctx, insertReview,
			id.String(), i, e.Subject, e.Topic, e.Correct, e.Total, e.Timestamp.Unix()); err != nil {
			return fmt.Errorf("failed to save review entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close closes the underlying connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}
