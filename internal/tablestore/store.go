package tablestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/yomogi/pagestash/internal/schema"
)

// dbFileName is the single database file holding every collection.
const dbFileName = "pagestash.db"

// ErrNoPage is returned by operations whose contract requires the page to
// already exist.
var ErrNoPage = errors.New("page is not indexed")

// Store is the structured backend over one SQLite database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	// steps is the computed schema version sequence of the registry the
	// store was opened with.
	steps []schema.VersionStep
}

// Open opens or creates the structured backend at dir using the canonical
// registry, stepping the database schema forward as needed.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	return OpenWithRegistry(dir, DefaultRegistry(), logger)
}

// OpenWithRegistry opens the backend with a caller-supplied registry.
// Tests use this to exercise schema evolution with synthetic collections.
func OpenWithRegistry(dir string, registry *schema.Registry, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, dbFileName)+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, logger: logger, steps: registry.ComputeVersions()}

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if err := s.upgrade(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to upgrade schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// upgrade steps the database through every schema version it has not
// applied yet. Each step runs in its own transaction: the step's DDL, the
// step's data migrations (skipping any already recorded under their ID),
// and the version bookkeeping commit or roll back together.
func (s *Store) upgrade(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_versions (
			version    INTEGER PRIMARY KEY,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("failed to create schema_versions table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_data_migrations (
			id         TEXT PRIMARY KEY,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("failed to create schema_data_migrations table: %w", err)
	}

	var current int
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to read current schema version: %w", err)
	}

	prev := map[string]schema.Collection{}
	for _, step := range s.steps {
		if step.Version <= current {
			prev = step.Collections
			continue
		}

		s.logger.Info("applying schema version",
			slog.Int("version", step.Version),
			slog.Int("migrations", len(step.Migrations)))

		if err := s.applyStep(ctx, prev, step); err != nil {
			return fmt.Errorf("failed to apply schema version %d: %w", step.Version, err)
		}
		prev = step.Collections
	}
	return nil
}

// applyStep runs one schema version upgrade in a single transaction.
func (s *Store) applyStep(ctx context.Context, prev map[string]schema.Collection, step schema.VersionStep) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, stmt := range stepDDL(prev, step) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute DDL: %w", err)
		}
	}

	for _, m := range step.Migrations {
		var count int
		err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM schema_data_migrations WHERE id = ?", m.ID).Scan(&count)
		if err != nil {
			return fmt.Errorf("failed to check migration %q: %w", m.ID, err)
		}
		if count > 0 {
			continue
		}
		if err := m.Run(ctx, tx); err != nil {
			return fmt.Errorf("failed to run migration %q: %w", m.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_data_migrations (id) VALUES (?)", m.ID); err != nil {
			return fmt.Errorf("failed to record migration %q: %w", m.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_versions (version) VALUES (?)", step.Version); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return tx.Commit()
}

// inTx runs fn inside one transaction, committing on success.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
