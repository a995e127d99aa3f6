package models

import "time"

// StatisticsRow is one performance record flattened with its subject and topic
type StatisticsRow struct {
	Subject   string    `json:"subject"`
	Topic     string    `json:"topic"`
	Correct   int       `json:"correct"`
	Total     int       `json:"total"`
	Ratio     float64   `json:"ratio"`
	Timestamp time.Time `json:"timestamp"`
}

// Percent returns the ratio formatted with FormatRatio
func (r StatisticsRow) Percent() string {
	return FormatRatio(r.Ratio)
}

// SubjectTotal is the sum of correct answers registered under one subject
type SubjectTotal struct {
	Subject string `json:"subject"`
	Correct int    `json:"correct"`
}
