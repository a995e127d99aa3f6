package bot

import (
	"fmt"
	"strings"

	"github.com/example/studybot/internal/ledger"
	"github.com/example/studybot/internal/session"
	"github.com/example/studybot/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	// Telegram rejects longer messages
	maxMessageLength = 4096
	chartWidth       = 20
	maxButtonText    = 60
	// Telegram caps the buttons of one reply markup at 100
	maxReviewButtons = 50
)

func renderSubjects(subjects []string, topics map[string][]string) string {
	if len(subjects) == 0 {
		return "No subjects yet. Add one with /addsubject <subject>."
	}
	var text strings.Builder
	text.WriteString("📚 Subjects\n")
	for _, subject := range subjects {
		fmt.Fprintf(&text, "\n%s\n", subject)
		if len(topics[subject]) == 0 {
			text.WriteString("  (no topics)\n")
		}
		for _, topic := range topics[subject] {
			fmt.Fprintf(&text, "  • %s\n", topic)
		}
	}
	return truncate(text.String())
}

func renderReview(entries []models.ReviewEntry) string {
	if len(entries) == 0 {
		return "🎉 Nothing to review."
	}
	var text strings.Builder
	fmt.Fprintf(&text, "📋 To review (%d)\n\n", len(entries))
	if len(entries) > maxReviewButtons {
		fmt.Fprintf(&text, "Buttons cover the first %d entries. Use /rmreview for the rest.\n\n", maxReviewButtons)
	}
	for i, e := range entries {
		fmt.Fprintf(&text, "%d. %s - %d/%d (%s)\n", i+1, ledger.ReviewLabel(e), e.Correct, e.Total, models.FormatRatio(e.Ratio))
	}
	return truncate(text.String())
}

// reviewKeyboard has one removal button for each of the first
// maxReviewButtons entries
func reviewKeyboard(entries []models.ReviewEntry) tgbotapi.InlineKeyboardMarkup {
	entries = entries[:min(len(entries), maxReviewButtons)]
	rows := make([][]MenuButton, 0, len(entries))
	for i, e := range entries {
		label := fmt.Sprintf("✅ %d. %s", i+1, ledger.ReviewLabel(e))
		if r := []rune(label); len(r) > maxButtonText {
			label = string(r[:maxButtonText-1]) + "…"
		}
		rows = append(rows, []MenuButton{{Text: label, CallbackData: callbackRemoveReviewID + e.ID.String()}})
	}
	return createKeyboard(rows)
}

func renderStatistics(rows []models.StatisticsRow) string {
	if len(rows) == 0 {
		return "No results registered yet. Use /result to add one."
	}
	var text strings.Builder
	text.WriteString("📊 Results\n")
	subject, topic := "", ""
	for i, r := range rows {
		if i == 0 || r.Subject != subject {
			fmt.Fprintf(&text, "\n%s\n", r.Subject)
			topic = ""
		}
		if r.Topic != topic {
			fmt.Fprintf(&text, "  %s\n", r.Topic)
		}
		subject, topic = r.Subject, r.Topic
		fmt.Fprintf(&text, "    %s  %d/%d  %s\n", models.FormatTimestamp(r.Timestamp), r.Correct, r.Total, r.Percent())
	}
	return truncate(text.String())
}

func renderTopic(subject, topic string, records []models.PerformanceRecord) string {
	if len(records) == 0 {
		return fmt.Sprintf("No results for %s - %s yet.", subject, topic)
	}
	var text strings.Builder
	fmt.Fprintf(&text, "📖 %s - %s\n\n", subject, topic)
	for _, r := range records {
		fmt.Fprintf(&text, "%s  %d/%d  %s\n", models.FormatTimestamp(r.Timestamp), r.Correct, r.Total, models.FormatRatio(r.Ratio()))
	}
	return truncate(text.String())
}

// renderChart draws a horizontal bar per subject scaled to the largest total
func renderChart(totals []models.SubjectTotal) string {
	if len(totals) == 0 {
		return "No results registered yet."
	}
	peak, width := 0, 0
	for _, t := range totals {
		peak = max(peak, t.Correct)
		width = max(width, len([]rune(t.Subject)))
	}

	var text strings.Builder
	text.WriteString("📈 Correct answers per subject\n\n")
	for _, t := range totals {
		bar := 0
		if peak > 0 {
			bar = t.Correct * chartWidth / peak
		}
		if bar == 0 && t.Correct > 0 {
			bar = 1
		}
		pad := width - len([]rune(t.Subject))
		fmt.Fprintf(&text, "%s%s %s %d\n", t.Subject, strings.Repeat(" ", pad), strings.Repeat("█", bar), t.Correct)
	}
	return truncate(text.String())
}

func renderImportSummary(processed int, summary session.ImportSummary, maxErrors int) string {
	var text strings.Builder
	fmt.Fprintf(&text, "📥 Import finished: %d row(s) read, %d result(s) registered.\n", processed, summary.Registered)
	if summary.SubjectsCreated > 0 || summary.TopicsCreated > 0 {
		fmt.Fprintf(&text, "Created %d subject(s) and %d topic(s).\n", summary.SubjectsCreated, summary.TopicsCreated)
	}
	if summary.ReviewAdded > 0 {
		fmt.Fprintf(&text, "%d result(s) added to the review list.\n", summary.ReviewAdded)
	}
	if len(summary.Errors) > 0 {
		fmt.Fprintf(&text, "\n⚠️ %d row(s) skipped:\n", len(summary.Errors))
		for i, msg := range summary.Errors {
			if i == maxErrors {
				fmt.Fprintf(&text, "… and %d more\n", len(summary.Errors)-maxErrors)
				break
			}
			fmt.Fprintf(&text, "%s\n", msg)
		}
	}
	return truncate(text.String())
}

func truncate(text string) string {
	r := []rune(text)
	if len(r) <= maxMessageLength {
		return text
	}
	return string(r[:maxMessageLength-1]) + "…"
}
