package database

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/studybot/pkg/models"
)

// fileDocument is the legacy data.json layout. Keys are kept as they are so
// existing files load unchanged.
type fileDocument struct {
	LoggedIn bool              `json:"logged_in"`
	Subjects orderedSubjects   `json:"subjects"`
	Notes    string            `json:"notes"`
	Review   []fileReviewEntry `json:"revisao"`
}

type fileRecord struct {
	Correct int    `json:"acertos"`
	Total   int    `json:"total"`
	Date    string `json:"data"`
}

type fileReviewEntry struct {
	Subject string `json:"materia"`
	Topic   string `json:"assunto"`
	Correct int    `json:"acertos"`
	Total   int    `json:"total"`
	Percent string `json:"% Acerto"`
	Date    string `json:"data"`
}

// orderedSubjects encodes subjects as a JSON object keyed by name, keeping
// insertion order on both encode and decode.
type orderedSubjects []models.Subject

// orderedTopics does the same for the topics of one subject.
type orderedTopics []models.Topic

func (s orderedSubjects) MarshalJSON() ([]byte, error) {
	return encodeObject(len(s), func(i int) (string, any) {
		return s[i].Name, orderedTopics(s[i].Topics)
	})
}

func (s *orderedSubjects) UnmarshalJSON(data []byte) error {
	*s = nil
	return decodeObject(data, func(name string, raw json.RawMessage) error {
		var topics orderedTopics
		if err := json.Unmarshal(raw, &topics); err != nil {
			return fmt.Errorf("subject %q: %w", name, err)
		}
		*s = append(*s, models.Subject{Name: name, Topics: topics})
		return nil
	})
}

func (t orderedTopics) MarshalJSON() ([]byte, error) {
	return encodeObject(len(t), func(i int) (string, any) {
		records := make([]fileRecord, 0, len(t[i].Records))
		for _, r := range t[i].Records {
			records = append(records, fileRecord{
				Correct: r.Correct,
				Total:   r.Total,
				Date:    models.FormatTimestamp(r.Timestamp),
			})
		}
		return t[i].Name, records
	})
}

func (t *orderedTopics) UnmarshalJSON(data []byte) error {
	*t = nil
	return decodeObject(data, func(name string, raw json.RawMessage) error {
		var records []fileRecord
		if err := json.Unmarshal(raw, &records); err != nil {
			return fmt.Errorf("topic %q: %w", name, err)
		}
		topic := models.Topic{Name: name}
		for i, r := range records {
			ts, err := models.ParseTimestamp(r.Date)
			if err != nil {
				return fmt.Errorf("topic %q record %d: %w", name, i, err)
			}
			topic.Records = append(topic.Records, models.PerformanceRecord{
				Correct:   r.Correct,
				Total:     r.Total,
				Timestamp: ts,
			})
		}
		*t = append(*t, topic)
		return nil
	})
}

func encodeObject(n int, field func(i int) (string, any)) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, value := field(i)
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func decodeObject(data []byte, field func(key string, raw json.RawMessage) error) error {
	if strings.TrimSpace(string(data)) == "null" {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := field(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

func documentFromSnapshot(snap models.Snapshot) fileDocument {
	doc := fileDocument{
		LoggedIn: snap.LoggedIn,
		Subjects: orderedSubjects(snap.Subjects),
		Notes:    snap.Notes,
		Review:   make([]fileReviewEntry, 0, len(snap.ReviewList)),
	}
	for _, e := range snap.ReviewList {
		doc.Review = append(doc.Review, fileReviewEntry{
			Subject: e.Subject,
			Topic:   e.Topic,
			Correct: e.Correct,
			Total:   e.Total,
			Percent: models.FormatRatio(e.Ratio),
			Date:    models.FormatTimestamp(e.Timestamp),
		})
	}
	return doc
}

func (d fileDocument) snapshot() (models.Snapshot, error) {
	snap := models.Snapshot{
		LoggedIn: d.LoggedIn,
		Subjects: []models.Subject(d.Subjects),
		Notes:    d.Notes,
	}
	for i, e := range d.Review {
		ts, err := models.ParseTimestamp(e.Date)
		if err != nil {
			return models.Snapshot{}, fmt.Errorf("review entry %d: %w", i, err)
		}
		var ratio float64
		if e.Total > 0 {
			ratio = float64(e.Correct) / float64(e.Total)
		}
		snap.ReviewList = append(snap.ReviewList, models.ReviewEntry{
			Subject:   e.Subject,
			Topic:     e.Topic,
			Correct:   e.Correct,
			Total:     e.Total,
			Ratio:     ratio,
			Timestamp: ts,
		})
	}
	return snap, nil
}
