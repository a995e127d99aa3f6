package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"TELEGRAM_BOT_TOKEN": "token",
		"TELEGRAM_CHAT_ID":   "42",
	}))
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.Telegram.Token)
	assert.Equal(t, int64(42), cfg.Telegram.ChatID)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, DefaultDataFile, cfg.Storage.DataFile)
	assert.Equal(t, DefaultSecret, cfg.Auth.Secret)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, DefaultReminderInterval, cfg.Scheduler.Interval)
	assert.Equal(t, DefaultReminderStartHour, cfg.Scheduler.StartHour)
	assert.Equal(t, DefaultReminderEndHour, cfg.Scheduler.EndHour)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"TELEGRAM_BOT_TOKEN":  "token",
		"TELEGRAM_CHAT_ID":    "-1001",
		"STORAGE_DRIVER":      "SQLITE3",
		"AUTH_SECRET_HASH":    "$2a$10$abcdefghijklmnopqrstuv",
		"ENABLE_SCHEDULER":    "false",
		"REMINDER_INTERVAL":   "90m",
		"REMINDER_START_HOUR": "6",
		"REMINDER_END_HOUR":   "20",
		"LOG_LEVEL":           "DEBUG",
	}))
	require.NoError(t, err)

	assert.Equal(t, int64(-1001), cfg.Telegram.ChatID)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, DefaultSQLitePath, cfg.Storage.DatabaseURL)
	assert.Empty(t, cfg.Auth.Secret)
	assert.NotEmpty(t, cfg.Auth.SecretHash)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 90*time.Minute, cfg.Scheduler.Interval)
	assert.Equal(t, 6, cfg.Scheduler.StartHour)
	assert.Equal(t, 20, cfg.Scheduler.EndHour)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestFromEnvInvalid(t *testing.T) {
	base := map[string]string{
		"TELEGRAM_BOT_TOKEN": "token",
		"TELEGRAM_CHAT_ID":   "42",
	}
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing token", env: map[string]string{"TELEGRAM_BOT_TOKEN": "", "TELEGRAM_CHAT_ID": "42"}},
		{name: "missing chat", env: map[string]string{"TELEGRAM_CHAT_ID": ""}},
		{name: "bad chat id", env: map[string]string{"TELEGRAM_CHAT_ID": "abc"}},
		{name: "unknown driver", env: map[string]string{"STORAGE_DRIVER": "mongo"}},
		{name: "postgres without url", env: map[string]string{"STORAGE_DRIVER": "postgres"}},
		{name: "short secret", env: map[string]string{"AUTH_SECRET": "123"}},
		{name: "bad interval", env: map[string]string{"REMINDER_INTERVAL": "soon"}},
		{name: "tiny interval", env: map[string]string{"REMINDER_INTERVAL": "10s"}},
		{name: "hour out of range", env: map[string]string{"REMINDER_END_HOUR": "24"}},
		{name: "end before start", env: map[string]string{"REMINDER_START_HOUR": "20", "REMINDER_END_HOUR": "6"}},
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "verbose"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := make(map[string]string, len(base)+len(tt.env))
			for k, v := range base {
				env[k] = v
			}
			for k, v := range tt.env {
				env[k] = v
			}
			_, err := FromEnv(envMap(env))
			assert.Error(t, err)
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("TELEGRAM_BOT_TOKEN=from-file\nTELEGRAM_CHAT_ID=7\nDATA_FILE=ledger.json\n"), 0o600))

	// godotenv never overrides variables that are already set
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")
	t.Setenv("TELEGRAM_CHAT_ID", "")
	t.Setenv("DATA_FILE", "")
	require.NoError(t, os.Unsetenv("TELEGRAM_CHAT_ID"))
	require.NoError(t, os.Unsetenv("DATA_FILE"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Telegram.Token)
	assert.Equal(t, int64(7), cfg.Telegram.ChatID)
	assert.Equal(t, "ledger.json", cfg.Storage.DataFile)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "9")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, int64(9), cfg.Telegram.ChatID)
}
