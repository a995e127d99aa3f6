package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Defaults applied when a variable is unset.
const (
	DefaultDataFile          = "data.json"
	DefaultSQLitePath        = "data/studybot.db"
	DefaultSecret            = "181920"
	DefaultReminderInterval  = 24 * time.Hour
	DefaultReminderStartHour = 8
	DefaultReminderEndHour   = 22
	DefaultLogLevel          = "info"
)

// Load reads the given .env files (".env" when none are given) into the
// process environment, then builds and validates a Config. Missing .env
// files are ignored; variables already set in the environment win.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds and validates a Config using getenv for lookups.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	var errs []error
	atoi := func(key string, fallback int) int {
		raw := get(key, "")
		if raw == "" {
			return fallback
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return v
	}

	cfg := &Config{
		Telegram: TelegramConfig{
			Token: get("TELEGRAM_BOT_TOKEN", ""),
		},
		Storage: StorageConfig{
			Driver:      strings.ToLower(get("STORAGE_DRIVER", DriverFile)),
			DataFile:    get("DATA_FILE", DefaultDataFile),
			DatabaseURL: get("DATABASE_URL", ""),
		},
		Auth: AuthConfig{
			Secret:     get("AUTH_SECRET", ""),
			SecretHash: get("AUTH_SECRET_HASH", ""),
		},
		Scheduler: SchedulerConfig{
			Enabled:   get("ENABLE_SCHEDULER", "true") != "false",
			Interval:  DefaultReminderInterval,
			StartHour: atoi("REMINDER_START_HOUR", DefaultReminderStartHour),
			EndHour:   atoi("REMINDER_END_HOUR", DefaultReminderEndHour),
		},
		LogLevel: strings.ToLower(get("LOG_LEVEL", DefaultLogLevel)),
	}

	if raw := get("TELEGRAM_CHAT_ID", ""); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("TELEGRAM_CHAT_ID: %w", err))
		}
		cfg.Telegram.ChatID = id
	}
	if raw := get("REMINDER_INTERVAL", ""); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("REMINDER_INTERVAL: %w", err))
		}
		cfg.Scheduler.Interval = d
	}
	if cfg.Storage.Driver == DriverSQLite && cfg.Storage.DatabaseURL == "" {
		cfg.Storage.DatabaseURL = DefaultSQLitePath
	}
	if cfg.Auth.Secret == "" && cfg.Auth.SecretHash == "" {
		cfg.Auth.Secret = DefaultSecret
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
