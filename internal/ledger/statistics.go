package ledger

import (
	"iter"

	"github.com/example/studybot/pkg/models"
)

// Statistics yields one row per performance record: subjects in insertion
// order, then topics in insertion order, then records chronologically.
// The sequence reads the live ledger each time it is ranged over.
func (l *Ledger) Statistics() iter.Seq[models.StatisticsRow] {
	return func(yield func(models.StatisticsRow) bool) {
		for _, s := range l.subjects {
			for _, t := range s.topics {
				for _, r := range t.records {
					row := models.StatisticsRow{
						Subject:   s.name,
						Topic:     t.name,
						Correct:   r.Correct,
						Total:     r.Total,
						Ratio:     r.Ratio(),
						Timestamp: r.Timestamp,
					}
					if !yield(row) {
						return
					}
				}
			}
		}
	}
}

// SubjectTotals sums correct answers per subject, in the order subjects are
// first seen in rows.
func SubjectTotals(rows iter.Seq[models.StatisticsRow]) []models.SubjectTotal {
	var totals []models.SubjectTotal
	index := make(map[string]int)
	for row := range rows {
		i, ok := index[row.Subject]
		if !ok {
			i = len(totals)
			index[row.Subject] = i
			totals = append(totals, models.SubjectTotal{Subject: row.Subject})
		}
		totals[i].Correct += row.Correct
	}
	return totals
}
