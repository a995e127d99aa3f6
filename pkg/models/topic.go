package models

import "time"

// Subject is a study area holding its topics in insertion order
type Subject struct {
	Name   string  `json:"name" db:"name"`
	Topics []Topic `json:"topics"`
}

// Topic is a subdivision of a subject holding its results in chronological order
type Topic struct {
	Name    string              `json:"name" db:"name"`
	Records []PerformanceRecord `json:"records"`
}

// ResultEntry is a result addressed by subject and topic name, as read from an import file
type ResultEntry struct {
	Subject   string    `json:"subject" validate:"required"`
	Topic     string    `json:"topic" validate:"required"`
	Correct   int       `json:"correct" validate:"gte=0,ltefield=Total"`
	Total     int       `json:"total" validate:"gte=1,lte=1000000"`
	Timestamp time.Time `json:"timestamp"`
}
