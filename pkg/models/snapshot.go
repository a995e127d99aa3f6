package models

// Snapshot is the full persisted state of a ledger.
type Snapshot struct {
	LoggedIn   bool          `json:"logged_in"`
	Subjects   []Subject     `json:"subjects"`
	Notes      string        `json:"notes"`
	ReviewList []ReviewEntry `json:"review_list"`
}

// RecordCount returns the number of performance records across all subjects
func (s Snapshot) RecordCount() int {
	n := 0
	for _, subject := range s.Subjects {
		for _, topic := range subject.Topics {
			n += len(topic.Records)
		}
	}
	return n
}
