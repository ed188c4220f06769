package sql

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bcnelson/pairstore/internal/domain"
	"github.com/bcnelson/pairstore/internal/storage"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// isUniqueViolation checks if an error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// SQLite
	if strings.Contains(errStr, "UNIQUE constraint failed") {
		return true
	}
	// PostgreSQL
	if strings.Contains(errStr, "duplicate key value violates unique constraint") {
		return true
	}
	return false
}

// Store implements storage.Document using SQL.
// The current content of each locator lives in documents; every write
// also appends a numbered row to document_revisions.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Ensure Store implements Document.
var (
	_ storage.Document       = (*Store)(nil)
	_ storage.RevisionLister = (*Store)(nil)
)

// New creates a new SQL store and runs pending migrations.
func New(driver, dsn string) (*Store, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Run migrations
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect(driver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db.DB, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db, driver: driver}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ReadRaw returns the current content for locator, or nothing if it was
// never written.
func (s *Store) ReadRaw(ctx context.Context, locator string) ([]byte, error) {
	var content string
	err := s.db.GetContext(ctx, &content,
		`SELECT content FROM documents WHERE locator = $1`, locator)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("selecting document: %w", err)
	}
	return []byte(content), nil
}

// WriteRaw replaces the content for locator and records a revision, both
// in one transaction.
func (s *Store) WriteRaw(ctx context.Context, locator string, data []byte) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	content := string(data)

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents (locator, content, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (locator) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		locator, content, now); err != nil {
		return fmt.Errorf("upserting document: %w", err)
	}

	var version int
	if err := tx.GetContext(ctx, &version,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM document_revisions WHERE locator = $1`,
		locator); err != nil {
		return fmt.Errorf("selecting next revision: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO document_revisions (id, locator, version, content, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), locator, version, content, now); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("recording revision %d: concurrent write: %w", version, err)
		}
		return fmt.Errorf("recording revision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListRevisions returns up to limit revisions of locator, newest first.
// A limit of zero or less returns all of them.
func (s *Store) ListRevisions(ctx context.Context, locator string, limit int) ([]*domain.Revision, error) {
	query := `SELECT id, locator, version, content, created_at FROM document_revisions
		WHERE locator = $1 ORDER BY version DESC`
	args := []any{locator}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	var revisions []*domain.Revision
	if err := s.db.SelectContext(ctx, &revisions, query, args...); err != nil {
		return nil, fmt.Errorf("selecting revisions: %w", err)
	}
	return revisions, nil
}
