package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/example/studybot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExport(t *testing.T) {
	t.Parallel()
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)
	rows := []models.StatisticsRow{
		{Subject: "Math", Topic: "Algebra", Correct: 7, Total: 10, Ratio: 0.7, Timestamp: at},
		{Subject: "Math", Topic: "Geometry", Correct: 9, Total: 10, Ratio: 0.9, Timestamp: at},
	}
	totals := []models.SubjectTotal{{Subject: "Math", Correct: 16}}
	review := []models.ReviewEntry{
		{Subject: "Math", Topic: "Algebra", Correct: 7, Total: 10, Ratio: 0.7, Timestamp: at},
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, rows, totals, review))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{PerformanceSheet, ReviewSheet, TotalsSheet}, f.GetSheetList())

	perf, err := f.GetRows(PerformanceSheet)
	require.NoError(t, err)
	require.Len(t, perf, 3)
	assert.Equal(t, []string{"Math", "Algebra", "7", "10", "70.00%", "2024-03-01 09:30:00"}, perf[1])

	rev, err := f.GetRows(ReviewSheet)
	require.NoError(t, err)
	require.Len(t, rev, 2)
	assert.Equal(t, "70.00%", rev[1][4])

	tot, err := f.GetRows(TotalsSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Subject", "Total correct"}, {"Math", "16"}}, tot)
}

func TestExportEmpty(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, nil, nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(PerformanceSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
