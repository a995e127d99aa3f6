// Package bot is the Telegram front end of the study ledger. It serves a
// single authorised chat.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/example/studybot/internal/session"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// API is the part of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot represents the Telegram bot application
type Bot struct {
	api        API
	session    *session.Session
	chatID     int64
	config     *BotConfig
	logger     *slog.Logger
	httpClient *http.Client
}

// New creates a bot answering only chatID. A nil config means DefaultConfig.
func New(api API, sess *session.Session, chatID int64, config *BotConfig, logger *slog.Logger) *Bot {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		api:        api,
		session:    sess,
		chatID:     chatID,
		config:     config,
		logger:     logger,
		httpClient: &http.Client{Timeout: config.DownloadTimeout},
	}
}

// Start polls for updates and handles them one at a time until ctx is
// cancelled or the update channel closes.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.config.UpdateTimeout

	updates := b.api.GetUpdatesChan(updateConfig)
	b.logger.Info("listening for updates", "chat_id", b.chatID)

	for {
		select {
		case <-ctx.Done():
			b.Stop()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// Stop stops long polling
func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
	b.logger.Info("bot stopped")
}

// SendReviewReminder implements the scheduler.Notifier interface
func (b *Bot) SendReviewReminder(count int) error {
	noun := "results"
	if count == 1 {
		noun = "result"
	}
	msg := tgbotapi.NewMessage(b.chatID, fmt.Sprintf("🔔 You have %d %s to review. Use /review to see them.", count, noun))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{{{Text: "📋 Review list", CallbackData: callbackShowReview}}})
	if err := b.sendMessage(msg); err != nil {
		return err
	}
	b.logger.Info("review reminder sent", "count", count)
	return nil
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	switch {
	case update.Message != nil:
		message := update.Message
		if !b.authorised(message.Chat) {
			err = b.refuse(message.Chat)
			break
		}
		switch {
		case message.IsCommand():
			err = b.HandleCommand(ctx, message)
		case message.Document != nil:
			err = b.handleDocument(ctx, message)
		default:
			err = b.reply(message.Chat.ID, "I don't understand. Use /help to see the commands.")
		}
	case update.CallbackQuery != nil:
		callback := update.CallbackQuery
		if callback.Message == nil || !b.authorised(callback.Message.Chat) {
			return
		}
		err = b.HandleCallback(ctx, callback)
	}
	if err != nil {
		b.logger.Error("failed to handle update", "update_id", update.UpdateID, "error", err)
	}
}

func (b *Bot) authorised(chat *tgbotapi.Chat) bool {
	return chat != nil && chat.ID == b.chatID
}

func (b *Bot) refuse(chat *tgbotapi.Chat) error {
	if chat == nil {
		return nil
	}
	b.logger.Warn("message from unauthorised chat", "chat_id", chat.ID)
	return b.reply(chat.ID, "⛔ This bot is private.")
}

func (b *Bot) reply(chatID int64, text string) error {
	return b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendMessage(msg tgbotapi.Chattable) error {
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
