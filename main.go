package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/studybot/internal/auth"
	"github.com/example/studybot/internal/bot"
	"github.com/example/studybot/internal/config"
	"github.com/example/studybot/internal/database"
	"github.com/example/studybot/internal/logger"
	"github.com/example/studybot/internal/scheduler"
	"github.com/example/studybot/internal/session"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	// studybot hash-secret <password> prints a value for AUTH_SECRET_HASH
	if len(os.Args) == 3 && os.Args[1] == "hash-secret" {
		hash, err := auth.HashSecret(os.Args[2])
		if err != nil {
			log.Fatalf("Failed to hash secret: %v", err)
		}
		fmt.Println(hash)
		return
	}

	if err := run(); err != nil {
		slog.Error("studybot stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := logger.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	gate, err := auth.NewGate(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to configure login: %w", err)
	}

	sess, err := session.Open(ctx, store, gate, logger)
	if err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}
	defer func() {
		// the signal context is already cancelled here
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sess.Close(shutdownCtx); err != nil {
			logger.Error("failed to save ledger on shutdown", "error", err)
		}
	}()

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %w", err)
	}
	logger.Info("authorized on telegram", "account", api.Self.UserName)

	b := bot.New(api, sess, cfg.Telegram.ChatID, bot.DefaultConfig(), logger)

	if cfg.Scheduler.Enabled {
		reminders := scheduler.New(cfg.Scheduler, sess, b, logger)
		if err := reminders.Start(); err != nil {
			return err
		}
		defer reminders.Stop()
	}

	logger.Info("bot started, press Ctrl+C to stop")
	if err := b.Start(ctx); err != nil {
		return err
	}
	logger.Info("bot stopped successfully")
	return nil
}
