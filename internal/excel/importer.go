package excel

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/example/studybot/pkg/models"
	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for files that are neither .xlsx nor .csv.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ImportConfig defines which columns hold which fields
type ImportConfig struct {
	SubjectColumn string // Column with the subject name
	TopicColumn   string // Column with the topic name
	CorrectColumn string // Column with the number of correct answers
	TotalColumn   string // Column with the number of questions
	DateColumn    string // Optional column with the date; blank cells mean "now"
	SheetName     string // Sheet to read; empty means the first sheet
	StartRow      int    // First data row (1-based)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		SubjectColumn: "A",
		TopicColumn:   "B",
		CorrectColumn: "C",
		TotalColumn:   "D",
		DateColumn:    "E",
		StartRow:      2, // skip header
	}
}

// ImportResult holds the parsed entries and the rows that were rejected
type ImportResult struct {
	TotalProcessed int
	Entries        []models.ResultEntry
	Errors         []string
}

var dateLayouts = []string{
	models.TimestampLayout,
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
	time.RFC3339,
}

// Import parses results from r. ext selects the format (".xlsx" or ".csv").
func Import(r io.Reader, ext string, config ImportConfig) (*ImportResult, error) {
	cols, err := config.indexes()
	if err != nil {
		return nil, err
	}

	var rows [][]string
	switch strings.ToLower(ext) {
	case ".xlsx":
		rows, err = readExcelRows(r, config.SheetName)
	case ".csv":
		rows, err = readCSVRows(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	validate := validator.New()
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < config.StartRow || blankRow(row) {
			continue
		}
		result.TotalProcessed++

		entry, err := parseRow(row, cols)
		if err == nil {
			err = validate.Struct(entry)
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		result.Entries = append(result.Entries, entry)
	}
	return result, nil
}

func readExcelRows(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSVRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}
	return rows, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

type columnIndexes struct {
	subject, topic, correct, total, date int
}

// indexes converts column letters to zero-based indexes; date is -1 when unset
func (c ImportConfig) indexes() (columnIndexes, error) {
	idx := func(column string) (int, error) {
		n, err := excelize.ColumnNameToNumber(column)
		if err != nil {
			return 0, fmt.Errorf("invalid column %q: %w", column, err)
		}
		return n - 1, nil
	}

	var (
		cols columnIndexes
		errs = make([]error, 5)
	)
	cols.subject, errs[0] = idx(c.SubjectColumn)
	cols.topic, errs[1] = idx(c.TopicColumn)
	cols.correct, errs[2] = idx(c.CorrectColumn)
	cols.total, errs[3] = idx(c.TotalColumn)
	cols.date = -1
	if c.DateColumn != "" {
		cols.date, errs[4] = idx(c.DateColumn)
	}
	return cols, errors.Join(errs...)
}

// parseRow extracts one entry; range checks are left to the validator
func parseRow(row []string, cols columnIndexes) (models.ResultEntry, error) {
	cell := func(i int) string {
		if i >= 0 && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	entry := models.ResultEntry{
		Subject: cell(cols.subject),
		Topic:   cell(cols.topic),
	}

	var err error
	correct := cell(cols.correct)
	if entry.Correct, err = strconv.Atoi(correct); err != nil {
		return models.ResultEntry{}, fmt.Errorf("correct answers %q is not a number", correct)
	}
	total := cell(cols.total)
	if entry.Total, err = strconv.Atoi(total); err != nil {
		return models.ResultEntry{}, fmt.Errorf("total questions %q is not a number", total)
	}
	if date := cell(cols.date); date != "" {
		if entry.Timestamp, err = parseDate(date); err != nil {
			return models.ResultEntry{}, err
		}
	}
	return entry, nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}
