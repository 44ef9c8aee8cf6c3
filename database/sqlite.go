package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/dnldd/screener/pipeline"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteConfig is the configuration for the sqlite store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string
	// Logger is the database logger.
	Logger *zerolog.Logger
}

// SQLiteStore represents a sqlite backed store of pipeline rows.
type SQLiteStore struct {
	cfg *SQLiteConfig
	db  *sql.DB
	mtx sync.Mutex
}

// Ensure the sqlite store implements the IndicatorStorer interface.
var _ IndicatorStorer = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates the sqlite database at the configured path.
func NewSQLiteStore(ctx context.Context, cfg *SQLiteConfig) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	_, err = db.ExecContext(ctx, "PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("setting wal mode: %w", err)
	}

	store := &SQLiteStore{
		cfg: cfg,
		db:  db,
	}

	err = store.bootstrap(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrapping sqlite database: %w", err)
	}

	cfg.Logger.Info().Msgf("sqlite store opened: %s", cfg.Path)

	return store, nil
}

// bootstrap initializes the database.
func (s *SQLiteStore) bootstrap(ctx context.Context) error {
	for _, stmt := range []string{createIndicatorRowsSQL, createIndicatorRowsIndexSQL} {
		_, err := s.db.ExecContext(ctx, stmt)
		if err != nil {
			return err
		}
	}

	return nil
}

// Persist stores the rows of a symbol in a single transaction.
func (s *SQLiteStore) Persist(ctx context.Context, runID string, symbol string, rows []pipeline.Row) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, persistIndicatorRowSQL)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing row insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for idx := range rows {
		_, err = stmt.ExecContext(ctx, rowParams(runID, symbol, idx, &rows[idx], now)...)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("persisting %s row %d: %w", symbol, idx, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("committing %s rows: %w", symbol, err)
	}

	return nil
}

// CountRows returns the number of stored rows of a symbol for the provided run.
func (s *SQLiteStore) CountRows(ctx context.Context, runID string, symbol string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, countIndicatorRowsSQL, runID, symbol).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting %s rows: %w", symbol, err)
	}

	return count, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
