package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/capitalize-ai/hr-service-desk/internal/model"
)

// SQLiteStore implements CaseStore using SQLite.
type SQLiteStore struct {
	db       *sql.DB
	updateMu sync.Mutex // serializes read-apply-write transitions to avoid SQLITE_BUSY
	now      func() time.Time
}

// NewSQLite creates a new SQLite-backed case store.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS cases (
		case_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		intent TEXT NOT NULL,
		description TEXT NOT NULL,
		status TEXT NOT NULL,
		thread_id TEXT,
		agent_response TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		closed_at INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_cases_user_created ON cases(user_id, created_at DESC);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Create persists a new case.
func (s *SQLiteStore) Create(ctx context.Context, c *model.Case) (string, error) {
	query := `
	INSERT INTO cases (case_id, user_id, intent, description, status, thread_id,
	                   agent_response, created_at, updated_at, closed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.UserID, string(c.Intent), c.Description, string(c.Status),
		nullString(c.ThreadID), c.AgentResponse,
		c.CreatedAt.UnixNano(), c.UpdatedAt.UnixNano(), nullTime(c.ClosedAt),
	)
	if isUniqueViolation(err) {
		return "", fmt.Errorf("%w: %s", ErrDuplicateCase, c.ID)
	}
	if err != nil {
		return "", fmt.Errorf("insert case: %w", err)
	}

	return c.ID, nil
}

// UpdateStatus applies a lifecycle transition inside a transaction.
func (s *SQLiteStore) UpdateStatus(ctx context.Context, caseID string, update model.StatusUpdate) error {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	c, err := scanCase(tx.QueryRowContext(ctx, selectCase+` WHERE case_id = ?`, caseID))
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrCaseNotFound, caseID)
	}
	if err != nil {
		return fmt.Errorf("load case: %w", err)
	}

	if err := c.Apply(update, s.now()); err != nil {
		return err
	}

	query := `
	UPDATE cases
	SET status = ?, thread_id = ?, agent_response = ?, updated_at = ?, closed_at = ?
	WHERE case_id = ?`
	if _, err := tx.ExecContext(ctx, query,
		string(c.Status), nullString(c.ThreadID), c.AgentResponse,
		c.UpdatedAt.UnixNano(), nullTime(c.ClosedAt), caseID,
	); err != nil {
		return fmt.Errorf("update case: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Get retrieves a case by ID.
func (s *SQLiteStore) Get(ctx context.Context, caseID string) (*model.Case, error) {
	c, err := scanCase(s.db.QueryRowContext(ctx, selectCase+` WHERE case_id = ?`, caseID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCaseNotFound, caseID)
	}
	if err != nil {
		return nil, fmt.Errorf("scan case row: %w", err)
	}
	return c, nil
}

// ListByUser returns a user's cases, newest first.
func (s *SQLiteStore) ListByUser(ctx context.Context, userID string, limit int) ([]model.Case, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		selectCase+` WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query cases: %w", err)
	}
	defer rows.Close()

	var cases []model.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan case row: %w", err)
		}
		cases = append(cases, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cases: %w", err)
	}

	return cases, nil
}

const selectCase = `
	SELECT case_id, user_id, intent, description, status, thread_id,
	       agent_response, created_at, updated_at, closed_at
	FROM cases`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCase(row rowScanner) (*model.Case, error) {
	var c model.Case
	var intent, status string
	var threadID, response sql.NullString
	var createdAt, updatedAt int64
	var closedAt sql.NullInt64

	if err := row.Scan(
		&c.ID, &c.UserID, &intent, &c.Description, &status, &threadID,
		&response, &createdAt, &updatedAt, &closedAt,
	); err != nil {
		return nil, err
	}

	c.Intent = model.IntentType(intent)
	c.Status = model.CaseStatus(status)
	c.ThreadID = threadID.String
	if response.Valid {
		resp := response.String
		c.AgentResponse = &resp
	}
	c.CreatedAt = time.Unix(0, createdAt)
	c.UpdatedAt = time.Unix(0, updatedAt)
	if closedAt.Valid {
		closed := time.Unix(0, closedAt.Int64)
		c.ClosedAt = &closed
	}

	return &c, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixNano()
}

// isUniqueViolation reports whether err is a primary key or unique constraint failure.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY") ||
		strings.Contains(msg, "SQLITE_CONSTRAINT_PRIMARYKEY")
}
