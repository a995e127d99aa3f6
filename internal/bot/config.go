package bot

import (
	"time"

	"github.com/example/studybot/internal/excel"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Long polling timeout in seconds
	UpdateTimeout int
	// Largest spreadsheet accepted for import, in bytes
	MaxImportSize int64
	// Time allowed for downloading an uploaded file
	DownloadTimeout time.Duration
	// Column layout of imported spreadsheets
	Import excel.ImportConfig
	// Number of import errors echoed back to the chat
	MaxReportedErrors int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		UpdateTimeout:     60,
		MaxImportSize:     5 << 20,
		DownloadTimeout:   time.Second * 30,
		Import:            excel.DefaultImportConfig(),
		MaxReportedErrors: 10,
	}
}
