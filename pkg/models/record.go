package models

import (
	"fmt"
	"time"
)

// TimestampLayout is the layout timestamps are stored and displayed with.
const TimestampLayout = "2006-01-02 15:04:05"

// PerformanceRecord is one self-quiz result registered for a topic
type PerformanceRecord struct {
	Correct   int       `json:"correct" db:"correct"`
	Total     int       `json:"total" db:"total"`
	Timestamp time.Time `json:"timestamp" db:"recorded_at"`
}

// Ratio returns the share of correct answers in the range [0, 1]
func (r PerformanceRecord) Ratio() float64 {
	if r.Total <= 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total)
}

// FormatRatio renders a ratio as a percentage with two decimals, e.g. "70.00%".
func FormatRatio(ratio float64) string {
	return fmt.Sprintf("%.2f%%", ratio*100)
}

// FormatTimestamp renders t with TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseTimestamp parses a TimestampLayout value in the local time zone.
func ParseTimestamp(value string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, value, time.Local)
}
