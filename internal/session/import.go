package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/studybot/internal/ledger"
	"github.com/example/studybot/pkg/models"
)

// ImportSummary describes the outcome of Import.
type ImportSummary struct {
	Registered      int
	SubjectsCreated int
	TopicsCreated   int
	ReviewAdded     int
	Errors          []string
}

// Import registers a batch of results, creating missing subjects and
// topics on the way. Rejected entries are reported in the summary and do
// not stop the batch. The ledger is saved once at the end.
func (s *Session) Import(ctx context.Context, entries []models.ResultEntry) (ImportSummary, error) {
	var summary ImportSummary
	err := s.mutate(ctx, "import", func(l *ledger.Ledger) error {
		for i, e := range entries {
			if err := ledger.ValidateResult(e.Correct, e.Total); err != nil {
				summary.Errors = append(summary.Errors, fmt.Sprintf("entry %d: %v", i+1, err))
				continue
			}
			if err := l.AddSubject(e.Subject); err == nil {
				summary.SubjectsCreated++
			} else if !errors.Is(err, ledger.ErrDuplicateKey) {
				summary.Errors = append(summary.Errors, fmt.Sprintf("entry %d: %v", i+1, err))
				continue
			}
			if err := l.AddTopic(e.Subject, e.Topic); err == nil {
				summary.TopicsCreated++
			} else if !errors.Is(err, ledger.ErrDuplicateKey) {
				summary.Errors = append(summary.Errors, fmt.Sprintf("entry %d: %v", i+1, err))
				continue
			}
			_, added, err := l.RegisterResult(e.Subject, e.Topic, e.Correct, e.Total, e.Timestamp)
			if err != nil {
				summary.Errors = append(summary.Errors, fmt.Sprintf("entry %d: %v", i+1, err))
				continue
			}
			summary.Registered++
			if added {
				summary.ReviewAdded++
			}
		}
		return nil
	})
	if err == nil {
		s.logger.Info("results imported",
			"registered", summary.Registered,
			"subjects_created", summary.SubjectsCreated,
			"topics_created", summary.TopicsCreated,
			"rejected", len(summary.Errors))
	}
	return summary, err
}
