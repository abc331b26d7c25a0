package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/CTAG07/hashmark/pkg/locallang"
)

// openLabelStore opens the label database at path, creating the file and its
// schema if necessary. Closing the returned database is up to the caller,
// after closing the store.
func openLabelStore(path string, logger *slog.Logger) (*sql.DB, *locallang.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open(dbDriver, path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err = locallang.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to setup label schema: %w", err)
	}

	store, err := locallang.NewStore(db, logger)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to prepare label store: %w", err)
	}
	logger.Debug("Label database opened", "path", path, "driver", dbDriver)
	return db, store, nil
}
