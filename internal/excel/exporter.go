// Package excel moves ledger data in and out of spreadsheets: results are
// imported from .xlsx or .csv files and statistics are exported to .xlsx.
package excel

import (
	"fmt"
	"io"

	"github.com/example/studybot/pkg/models"
	"github.com/xuri/excelize/v2"
)

// Sheet names of an exported workbook.
const (
	PerformanceSheet = "Performance"
	ReviewSheet      = "Review"
	TotalsSheet      = "Totals"
)

var (
	performanceHeader = []interface{}{"Subject", "Topic", "Correct", "Total", "% Correct", "Date"}
	reviewHeader      = []interface{}{"Subject", "Topic", "Correct", "Total", "% Correct", "Date"}
	totalsHeader      = []interface{}{"Subject", "Total correct"}
)

// Export writes a workbook with the statistics table, the review list and
// a column chart of correct answers per subject.
func Export(w io.Writer, rows []models.StatisticsRow, totals []models.SubjectTotal, review []models.ReviewEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	// the default sheet becomes the performance table
	f.SetSheetName(f.GetSheetName(0), PerformanceSheet)
	if err := writeRows(f, PerformanceSheet, performanceHeader, len(rows), func(i int) []interface{} {
		r := rows[i]
		return []interface{}{r.Subject, r.Topic, r.Correct, r.Total, r.Percent(), models.FormatTimestamp(r.Timestamp)}
	}); err != nil {
		return err
	}

	if _, err := f.NewSheet(ReviewSheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", ReviewSheet, err)
	}
	if err := writeRows(f, ReviewSheet, reviewHeader, len(review), func(i int) []interface{} {
		e := review[i]
		return []interface{}{e.Subject, e.Topic, e.Correct, e.Total, models.FormatRatio(e.Ratio), models.FormatTimestamp(e.Timestamp)}
	}); err != nil {
		return err
	}

	if _, err := f.NewSheet(TotalsSheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", TotalsSheet, err)
	}
	if err := writeRows(f, TotalsSheet, totalsHeader, len(totals), func(i int) []interface{} {
		return []interface{}{totals[i].Subject, totals[i].Correct}
	}); err != nil {
		return err
	}
	if len(totals) > 0 {
		last := len(totals) + 1
		if err := f.AddChart(TotalsSheet, "D2", &excelize.Chart{
			Type: "col",
			Series: []excelize.ChartSeries{{
				Name:       fmt.Sprintf("%s!$B$1", TotalsSheet),
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", TotalsSheet, last),
				Values:     fmt.Sprintf("%s!$B$2:$B$%d", TotalsSheet, last),
			}},
			Title: excelize.ChartTitle{Name: "Performance by subject"},
		}); err != nil {
			return fmt.Errorf("failed to add chart: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, header []interface{}, n int, row func(i int) []interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	for i := 0; i < n; i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row(i)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
