// Package database persists the study ledger. Two adapters implement Store:
// FileStore keeps the whole state in one JSON document and SQLStore keeps it
// in SQLite or PostgreSQL tables. Both overwrite the full state on Save.
package database

import (
	"context"
	"fmt"

	"github.com/example/studybot/internal/config"
	"github.com/example/studybot/pkg/models"
)

// Store loads and saves the full ledger state.
type Store interface {
	// Load returns the saved state, or an empty snapshot if nothing was saved yet.
	Load(ctx context.Context) (models.Snapshot, error)
	// Save replaces the saved state with snap.
	Save(ctx context.Context, snap models.Snapshot) error
	Close() error
}

// Open returns the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverFile:
		return NewFileStore(cfg.DataFile), nil
	case config.DriverSQLite, config.DriverPostgres:
		db, err := Connect(ctx, cfg.Driver, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return NewSQLStore(db), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
