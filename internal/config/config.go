// Package config loads application settings from the environment and an
// optional .env file.
package config

import (
	"time"
)

// Storage drivers understood by database.Open.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Telegram  TelegramConfig
	Storage   StorageConfig
	Auth      AuthConfig
	Scheduler SchedulerConfig
	LogLevel  string `validate:"required,oneof=debug info warn error"`
}

// TelegramConfig configures the bot front end.
type TelegramConfig struct {
	Token string `validate:"required"`
	// ChatID is the only chat allowed to drive the ledger
	ChatID int64 `validate:"required"`
}

// StorageConfig selects and configures the persistence adapter.
type StorageConfig struct {
	Driver      string `validate:"required,oneof=file sqlite3 postgres"`
	DataFile    string `validate:"required_if=Driver file"`
	DatabaseURL string `validate:"required_unless=Driver file"`
}

// AuthConfig holds the shared login secret. SecretHash, when set, is a
// bcrypt hash and takes precedence over Secret.
type AuthConfig struct {
	Secret     string `validate:"omitempty,len=6"`
	SecretHash string
}

// SchedulerConfig configures review reminders.
type SchedulerConfig struct {
	Enabled   bool
	Interval  time.Duration `validate:"min=1m"`
	StartHour int           `validate:"gte=0,lte=23"`
	EndHour   int           `validate:"gte=0,lte=23,gtefield=StartHour"`
}
