package locallang

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// SetupSchema creates the label table. It is idempotent and safe to call on
// an already-initialized database.
func SetupSchema(db *sql.DB) error {
	const schemaLabels = `
CREATE TABLE IF NOT EXISTS locallang_labels (
    language TEXT NOT NULL,
    label_key TEXT NOT NULL,
    label_value TEXT NOT NULL,
    PRIMARY KEY (language, label_key)
);
`
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaLabels); err != nil {
		return fmt.Errorf("could not create schema: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// Store keeps labels in a SQLite database. SetupSchema must have been called
// on the database before NewStore. All methods are safe for concurrent use.
type Store struct {
	db         *sql.DB
	stmtSet    *sql.Stmt
	stmtDelete *sql.Stmt
	stmtAll    *sql.Stmt
	logger     *slog.Logger
}

// NewStore prepares the statements used by the Store.
func NewStore(db *sql.DB, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	stmtSet, err := db.Prepare(`
INSERT INTO locallang_labels (language, label_key, label_value) VALUES (?, ?, ?)
ON CONFLICT (language, label_key) DO UPDATE SET label_value = excluded.label_value;`)
	if err != nil {
		return nil, err
	}

	stmtDelete, err := db.Prepare(`DELETE FROM locallang_labels WHERE language = ? AND label_key = ?;`)
	if err != nil {
		_ = stmtSet.Close()
		return nil, err
	}

	stmtAll, err := db.Prepare(`SELECT language, label_key, label_value FROM locallang_labels;`)
	if err != nil {
		_ = stmtSet.Close()
		_ = stmtDelete.Close()
		return nil, err
	}

	return &Store{
		db:         db,
		stmtSet:    stmtSet,
		stmtDelete: stmtDelete,
		stmtAll:    stmtAll,
		logger:     logger,
	}, nil
}

// Close releases the prepared statements. It does not close the database.
func (s *Store) Close() {
	_ = s.stmtSet.Close()
	_ = s.stmtDelete.Close()
	_ = s.stmtAll.Close()
}

// Set inserts or replaces one label. An empty lang means DefaultLanguage.
func (s *Store) Set(ctx context.Context, lang, key, value string) error {
	if lang == "" {
		lang = DefaultLanguage
	}
	_, err := s.stmtSet.ExecContext(ctx, lang, key, value)
	return err
}

// Delete removes one label. Deleting a missing label is not an error.
func (s *Store) Delete(ctx context.Context, lang, key string) error {
	_, err := s.stmtDelete.ExecContext(ctx, lang, key)
	return err
}

// Catalog loads all labels into a Catalog.
func (s *Store) Catalog(ctx context.Context) (*Catalog, error) {
	rows, err := s.stmtAll.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	c := NewCatalog()
	for rows.Next() {
		var lang, key, value string
		if err = rows.Scan(&lang, &key, &value); err != nil {
			return nil, err
		}
		c.Set(lang, key, value)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// Import writes every label of c in a single transaction.
func (s *Store) Import(ctx context.Context, c *Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	stmt := tx.StmtContext(ctx, s.stmtSet)
	for lang, labels := range c.labels {
		for key, value := range labels {
			if _, err = stmt.ExecContext(ctx, lang, key, value); err != nil {
				return fmt.Errorf("failed to import label %s/%s: %w", lang, key, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Labels imported",
		slog.Int("labels", c.Len()),
		slog.Int("languages", len(c.labels)),
	)
	return nil
}
