package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/example/studybot/internal/excel"
	"github.com/example/studybot/internal/ledger"
	"github.com/example/studybot/internal/session"
	"github.com/example/studybot/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

// Callback data
const (
	callbackShowReview     = "show_review"
	callbackShowStats      = "show_stats"
	callbackShowChart      = "show_chart"
	callbackRemoveReviewID = "rmreview:"
)

const helpText = `📚 *Study ledger*

/login <password> - log in
/logout - log out
/subjects - list subjects and topics
/addsubject <subject> - add a subject
/rmsubject <subject> - remove a subject with its topics
/addtopic <subject> | <topic> - add a topic
/rmtopic <subject> | <topic> - remove a topic
/topic <subject> | <topic> - results of one topic
/result <subject> | <topic> | <correct> | <total> - register a result
/review - results below 80%
/rmreview <subject> | <topic> | <YYYY-MM-DD HH:MM:SS> - remove a review entry
/stats - every registered result
/chart - correct answers per subject
/export - download everything as a spreadsheet

Send an .xlsx or .csv file with the columns subject, topic, correct, total and an optional date to import results.`

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	switch message.Command() {
	case "start", "help":
		return b.handleHelp(message)
	case "login":
		return b.handleLogin(ctx, message)
	case "logout":
		return b.handleLogout(ctx, message)
	}

	if !b.session.LoggedIn() {
		return b.reply(message.Chat.ID, "🔒 Please log in first: /login <password>")
	}

	var err error
	switch message.Command() {
	case "subjects":
		err = b.handleSubjects(message.Chat.ID)
	case "addsubject":
		err = b.handleAddSubject(ctx, message)
	case "rmsubject":
		err = b.handleRemoveSubject(ctx, message)
	case "addtopic":
		err = b.handleAddTopic(ctx, message)
	case "rmtopic":
		err = b.handleRemoveTopic(ctx, message)
	case "topic":
		err = b.handleTopic(message)
	case "result":
		err = b.handleResult(ctx, message)
	case "review":
		err = b.handleReview(message.Chat.ID)
	case "rmreview":
		err = b.handleRemoveReview(ctx, message)
	case "stats":
		err = b.handleStats(message.Chat.ID)
	case "chart":
		err = b.handleChart(message.Chat.ID)
	case "export":
		err = b.handleExport(message.Chat.ID)
	default:
		err = b.handleUnknownCommand(message)
	}
	return err
}

func (b *Bot) handleHelp(message *tgbotapi.Message) error {
	msg := tgbotapi.NewMessage(message.Chat.ID, helpText)
	msg.ParseMode = "Markdown"
	if b.session.LoggedIn() {
		msg.ReplyMarkup = b.mainMenu()
	}
	return b.sendMessage(msg)
}

func (b *Bot) mainMenu() tgbotapi.InlineKeyboardMarkup {
	return createKeyboard([][]MenuButton{
		{
			{Text: "📋 Review", CallbackData: callbackShowReview},
			{Text: "📊 Statistics", CallbackData: callbackShowStats},
		},
		{
			{Text: "📈 Chart", CallbackData: callbackShowChart},
		},
	})
}

func (b *Bot) handleLogin(ctx context.Context, message *tgbotapi.Message) error {
	// the password should not stay in the chat history
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(message.Chat.ID, message.MessageID)); err != nil {
		b.logger.Warn("failed to delete login message", "error", err)
	}

	secret := strings.TrimSpace(message.CommandArguments())
	if secret == "" {
		return b.reply(message.Chat.ID, "Usage: /login <password>")
	}
	ok, err := b.session.Login(ctx, secret)
	if err != nil {
		return b.replyError(message.Chat.ID, err)
	}
	if !ok {
		return b.reply(message.Chat.ID, "❌ Wrong password.")
	}
	msg := tgbotapi.NewMessage(message.Chat.ID, "✅ Logged in.")
	msg.ReplyMarkup = b.mainMenu()
	return b.sendMessage(msg)
}

func (b *Bot) handleLogout(ctx context.Context, message *tgbotapi.Message) error {
	if err := b.session.Logout(ctx); err != nil {
		return b.replyError(message.Chat.ID, err)
	}
	return b.reply(message.Chat.ID, "👋 Logged out.")
}

func (b *Bot) handleSubjects(chatID int64) error {
	subjects := b.session.Subjects()
	topics := make(map[string][]string, len(subjects))
	for _, subject := range subjects {
		names, err := b.session.Topics(subject)
		if err != nil {
			return b.replyError(chatID, err)
		}
		topics[subject] = names
	}
	return b.reply(chatID, renderSubjects(subjects, topics))
}

func (b *Bot) handleAddSubject(ctx context.Context, message *tgbotapi.Message) error {
	args, ok := splitArgs(message.CommandArguments(), 1)
	if !ok {
		return b.reply(message.Chat.ID, "Usage: /addsubject <subject>")
	}
	if err := b.session.AddSubject(ctx, args[0]); err != nil {
		return b.replyError(message.Chat.ID, err)
	}
	return b.reply(message.Chat.ID, fmt.Sprintf("✅ Subject %q added.", args[0]))
}

func (b *Bot) handleRemoveSubject(ctx context.Context, message *tgbotapi.Message) error {
	args, ok := splitArgs(message.CommandArguments(), 1)
	if !ok {
		return b.reply(message.Chat.ID, "Usage: /rmsubject <subject>")
	}
	if err := b.session.RemoveSubject(ctx, args[0]); err != nil {
		return b.replyError(message.Chat.ID, err)
	}
	return b.reply(message.Chat.ID, fmt.Sprintf("🗑 Subject %q removed.", args[0]))
}

func (b *Bot) handleAddTopic(ctx context.Context, message *tgbotapi.Message) error {
	args, ok := splitArgs(message.CommandArguments(), 2)
	if !ok {
		return b.reply(message.Chat.ID, "Usage: /addtopic <subject> | <topic>")
	}
	if err := b.session.AddTopic(ctx, args[0], args[1]); err != nil {
		return b.replyError(message.Chat.ID, err)
	}
	return b.reply(message.Chat.ID, fmt.Sprintf("✅ Topic %q added to %q.", args[1], args[0]))
}

func (b *Bot) handleRemoveTopic(ctx context.Context, message *tgbotapi.Message) error {
	args, ok := splitArgs(message.CommandArguments(), 2)
	if !ok {
		return b.reply(message.Chat.ID, "Usage: /rmtopic <subject> | <topic>")
	}
	if err := b.session.RemoveTopic(ctx, args[0], args[1]); err != nil {
		return b.replyError(message.Chat.ID, err)
	}
	return b.reply(message.Chat.ID, fmt.Sprintf("🗑 Topic %q removed from %q.", args[1], args[0]))
}

func (b *Bot) handleTopic(message *tgbotapi.Message) error {
	args, ok := splitArgs(message.CommandArguments(), 2)
	if !ok {
		return b.reply(message.Chat.ID, "Usage: /topic <subject> | <topic>")
	}
	records, err := b.session.Records(args[0], args[1])
	if err != nil {
		return b.replyError(message.Chat.ID, err)
	}
	return b.reply(message.Chat.ID, renderTopic(args[0], args[1], records))
}

func (b *Bot) handleResult(ctx context.Context, message *tgbotapi.Message) error {
	const usage = "Usage: /result <subject> | <topic> | <correct> | <total>"
	args, ok := splitArgs(message.CommandArguments(), 4)
	if !ok {
		return b.reply(message.Chat.ID, usage)
	}
	correct, err := strconv.Atoi(args[2])
	if err != nil {
		return b.reply(message.Chat.ID, usage)
	}
	total, err := strconv.Atoi(args[3])
	if err != nil {
		return b.reply(message.Chat.ID, usage)
	}

	record, reviewAdded, err := b.session.RegisterResult(ctx, args[0], args[1], correct, total, time.Time{})
	if err != nil {
		return b.replyError(message.Chat.ID, err)
	}
	text := fmt.Sprintf("✅ %s - %s: %d/%d (%s) registered at %s.",
		args[0], args[1], record.Correct, record.Total,
		models.FormatRatio(record.Ratio()), models.FormatTimestamp(record.Timestamp))
	if reviewAdded {
		text += "\n📋 Below 80%, added to the review list."
	}
	return b.reply(message.Chat.ID, text)
}

func (b *Bot) handleReview(chatID int64) error {
	entries := b.session.ReviewEntries()
	msg := tgbotapi.NewMessage(chatID, renderReview(entries))
	if len(entries) > 0 {
		msg.ReplyMarkup = reviewKeyboard(entries)
	}
	return b.sendMessage(msg)
}

// handleRemoveReview accepts "<subject> | <topic> | <timestamp>" or a review
// label as shown by /review.
func (b *Bot) handleRemoveReview(ctx context.Context, message *tgbotapi.Message) error {
	const usage = "Usage: /rmreview <subject> | <topic> | <YYYY-MM-DD HH:MM:SS>"
	raw := message.CommandArguments()

	var (
		subject, topic string
		at             time.Time
		err            error
	)
	if args, ok := splitArgs(raw, 3); ok {
		subject, topic = args[0], args[1]
		at, err = models.ParseTimestamp(args[2])
	} else {
		subject, topic, at, err = ledger.ParseReviewLabel(raw)
	}
	if err != nil {
		return b.reply(message.Chat.ID, usage)
	}

	removed, err := b.session.RemoveReviewEntry(ctx, subject, topic, at)
	if err != nil {
		return b.replyError(message.Chat.ID, err)
	}
	if removed == 0 {
		return b.reply(message.Chat.ID, "Nothing in the review list matches.")
	}
	return b.reply(message.Chat.ID, fmt.Sprintf("🗑 Removed %d review entry(s).", removed))
}

func (b *Bot) handleStats(chatID int64) error {
	return b.reply(chatID, renderStatistics(b.session.Statistics()))
}

func (b *Bot) handleChart(chatID int64) error {
	return b.reply(chatID, renderChart(b.session.SubjectTotals()))
}

func (b *Bot) handleExport(chatID int64) error {
	var buf bytes.Buffer
	if err := excel.Export(&buf, b.session.Statistics(), b.session.SubjectTotals(), b.session.ReviewEntries()); err != nil {
		b.logger.Error("failed to export workbook", "error", err)
		return b.reply(chatID, "❌ Could not build the spreadsheet.")
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("studybot-%s.xlsx", time.Now().Format("20060102")),
		Bytes: buf.Bytes(),
	})
	return b.sendMessage(doc)
}

func (b *Bot) handleUnknownCommand(message *tgbotapi.Message) error {
	return b.reply(message.Chat.ID, "Unknown command. Use /help to see the commands.")
}

func (b *Bot) handleDocument(ctx context.Context, message *tgbotapi.Message) error {
	if !b.session.LoggedIn() {
		return b.reply(message.Chat.ID, "🔒 Please log in first: /login <password>")
	}
	doc := message.Document
	ext := strings.ToLower(filepath.Ext(doc.FileName))
	if ext != ".xlsx" && ext != ".csv" {
		return b.reply(message.Chat.ID, "Only .xlsx and .csv files can be imported.")
	}
	if int64(doc.FileSize) > b.config.MaxImportSize {
		return b.reply(message.Chat.ID, fmt.Sprintf("The file is too large (limit %d KB).", b.config.MaxImportSize>>10))
	}

	data, err := b.download(ctx, doc.FileID)
	if err != nil {
		b.logger.Error("failed to download import file", "file", doc.FileName, "error", err)
		return b.reply(message.Chat.ID, "❌ Could not download the file.")
	}
	parsed, err := excel.Import(bytes.NewReader(data), ext, b.config.Import)
	if err != nil {
		b.logger.Warn("failed to parse import file", "file", doc.FileName, "error", err)
		return b.reply(message.Chat.ID, fmt.Sprintf("❌ Could not read the file: %v", err))
	}

	summary, err := b.session.Import(ctx, parsed.Entries)
	if err != nil {
		return b.replyError(message.Chat.ID, err)
	}
	summary.Errors = append(parsed.Errors, summary.Errors...)
	return b.reply(message.Chat.ID, renderImportSummary(parsed.TotalProcessed, summary, b.config.MaxReportedErrors))
}

func (b *Bot) download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get file url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: status %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, b.config.MaxImportSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > b.config.MaxImportSize {
		return nil, fmt.Errorf("file exceeds %d bytes", b.config.MaxImportSize)
	}
	return data, nil
}

// HandleCallback handles inline keyboard presses
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	chatID := callback.Message.Chat.ID
	notice := ""
	defer func() {
		// Always answer the callback query to remove the loading state
		if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, notice)); err != nil {
			b.logger.Warn("failed to answer callback", "error", err)
		}
	}()

	if !b.session.LoggedIn() {
		notice = "Please log in first"
		return nil
	}

	switch {
	case callback.Data == callbackShowReview:
		return b.handleReview(chatID)
	case callback.Data == callbackShowStats:
		return b.handleStats(chatID)
	case callback.Data == callbackShowChart:
		return b.handleChart(chatID)
	case strings.HasPrefix(callback.Data, callbackRemoveReviewID):
		id, err := uuid.Parse(strings.TrimPrefix(callback.Data, callbackRemoveReviewID))
		if err != nil {
			return fmt.Errorf("invalid review id in callback data: %w", err)
		}
		removed, err := b.session.RemoveReviewEntryByID(ctx, id)
		if err != nil {
			return b.replyError(chatID, err)
		}
		if removed == 0 {
			notice = "Already removed"
		} else {
			notice = "Removed from the review list"
		}
		return b.handleReview(chatID)
	default:
		notice = "Unknown action"
		return nil
	}
}

// replyError tells the user why an operation failed
func (b *Bot) replyError(chatID int64, err error) error {
	var text string
	switch {
	case errors.Is(err, session.ErrUnauthorized):
		text = "🔒 Please log in first: /login <password>"
	case errors.Is(err, session.ErrIOFailure):
		text = "⚠️ The change was applied but could not be saved. It will be retried with the next change."
	case errors.Is(err, ledger.ErrDuplicateKey),
		errors.Is(err, ledger.ErrNotFound),
		errors.Is(err, ledger.ErrInvalidInput):
		text = "❌ " + err.Error()
	default:
		b.logger.Error("unexpected error", "error", err)
		text = "❌ Something went wrong. Please try again later."
	}
	return b.reply(chatID, text)
}

// splitArgs splits "a | b | c" into exactly n trimmed, non-empty parts
func splitArgs(raw string, n int) ([]string, bool) {
	parts := strings.Split(raw, "|")
	if len(parts) != n {
		return nil, false
	}
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
		if parts[i] == "" {
			return nil, false
		}
	}
	return parts, true
}
