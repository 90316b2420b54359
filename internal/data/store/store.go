// Package store persists analysis runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"semresolve/internal/core/errors"
	"semresolve/internal/shared/observability"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Run is the summary row of one analysis run.
type Run struct {
	ID          string
	ProjectKey  string
	StartedAt   time.Time
	Duration    time.Duration
	Files       int
	ParseErrors int
	Types       int
	Methods     int
	Overridden  int
	Calls       int
	Resolved    int
	ItemErrors  int
	Incomplete  bool
}

// Usage is one call site bound to the method with signature Target.
type Usage struct {
	Target string
	Path   string
	Line   int
	Column int
}

type Edge struct {
	Ancestor string
	Child    string
}

// Record is everything written for one run.
type Record struct {
	Run       Run
	Overrides map[string]bool
	Usages    []Usage
	Edges     []Edge
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string, busyTimeout time.Duration) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, errors.New(errors.CodeValidationError, "store path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, (&errors.DomainError{Code: errors.CodeValidationError, Message: "store path is a directory"}).
			WithContext(errors.CtxPath, cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory %q: %w", dir, err)
		}
	}
	if busyTimeout <= 0 {
		busyTimeout = 2 * time.Second
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)",
		cleanPath, busyTimeout.Milliseconds())
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite store %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// SaveRun writes the run and its details in one transaction.
func (s *Store) SaveRun(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer func() {
		observability.StoreWriteDuration.Observe(time.Since(start).Seconds())
	}()

	run := rec.Run
	if strings.TrimSpace(run.ID) == "" {
		return errors.New(errors.CodeValidationError, "run id must not be empty")
	}
	run.ProjectKey = projectKey(run.ProjectKey)
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	err := s.withRetry("save run", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := insertRun(ctx, tx, run, rec); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return errors.AddContext(errors.Wrap(err, errors.CodeStorageFailed, "save run"), "run_id", run.ID)
	}
	return nil
}

func insertRun(ctx context.Context, tx *sql.Tx, run Run, rec Record) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO runs (
  id, project_key, started_at_utc, duration_ms, file_count, parse_error_count, type_count,
  method_count, overridden_count, call_count, resolved_call_count, item_error_count, incomplete
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.ProjectKey,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.Duration.Milliseconds(),
		run.Files,
		run.ParseErrors,
		run.Types,
		run.Methods,
		run.Overridden,
		run.Calls,
		run.Resolved,
		run.ItemErrors,
		boolInt(run.Incomplete),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	overrideStmt, err := tx.PrepareContext(ctx, `INSERT INTO overrides(run_id, signature, overridden) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare overrides: %w", err)
	}
	defer overrideStmt.Close()
	for sig, overridden := range rec.Overrides {
		if _, err := overrideStmt.ExecContext(ctx, run.ID, sig, boolInt(overridden)); err != nil {
			return fmt.Errorf("insert override %q: %w", sig, err)
		}
	}

	usageStmt, err := tx.PrepareContext(ctx, `INSERT INTO usages(run_id, target, path, line, col) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare usages: %w", err)
	}
	defer usageStmt.Close()
	for _, u := range rec.Usages {
		if _, err := usageStmt.ExecContext(ctx, run.ID, u.Target, u.Path, u.Line, u.Column); err != nil {
			return fmt.Errorf("insert usage of %q: %w", u.Target, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO hierarchy_edges(run_id, ancestor, child) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare hierarchy edges: %w", err)
	}
	defer edgeStmt.Close()
	for _, e := range rec.Edges {
		if _, err := edgeStmt.ExecContext(ctx, run.ID, e.Ancestor, e.Child); err != nil {
			return fmt.Errorf("insert edge %s -> %s: %w", e.Ancestor, e.Child, err)
		}
	}
	return nil
}

// LatestRun returns the most recent run for projectKey.
func (s *Store) LatestRun(ctx context.Context, key string) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key = projectKey(key)
	var (
		run        Run
		startedRaw string
		durationMS int64
		incomplete int
	)
	err := s.withRetry("load latest run", func() error {
		return s.db.QueryRowContext(ctx, `
SELECT
  id, project_key, started_at_utc, duration_ms, file_count, parse_error_count, type_count,
  method_count, overridden_count, call_count, resolved_call_count, item_error_count, incomplete
FROM runs
WHERE project_key = ?
ORDER BY started_at_utc DESC, created_at_utc DESC
LIMIT 1`, key).Scan(
			&run.ID,
			&run.ProjectKey,
			&startedRaw,
			&durationMS,
			&run.Files,
			&run.ParseErrors,
			&run.Types,
			&run.Methods,
			&run.Overridden,
			&run.Calls,
			&run.Resolved,
			&run.ItemErrors,
			&incomplete,
		)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, (&errors.DomainError{Code: errors.CodeNotFound, Message: "no runs recorded"}).
			WithContext("project_key", key)
	}
	if err != nil {
		return Run{}, errors.Wrap(err, errors.CodeStorageFailed, "load latest run")
	}

	started, err := time.Parse(time.RFC3339Nano, startedRaw)
	if err != nil {
		return Run{}, fmt.Errorf("parse run timestamp %q: %w", startedRaw, err)
	}
	run.StartedAt = started.UTC()
	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.Incomplete = incomplete != 0
	return run, nil
}

// Overrides returns the signature flags stored for a run.
func (s *Store) Overrides(ctx context.Context, runID string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT signature, overridden FROM overrides WHERE run_id = ?`, runID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorageFailed, "load overrides")
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var (
			sig  string
			flag int
		)
		if err := rows.Scan(&sig, &flag); err != nil {
			return nil, fmt.Errorf("scan override row: %w", err)
		}
		out[sig] = flag != 0
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate override rows: %w", err)
	}
	return out, nil
}

// Usages returns the call sites stored for target in a run, in source order.
func (s *Store) Usages(ctx context.Context, runID, target string) ([]Usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
SELECT target, path, line, col FROM usages
WHERE run_id = ? AND target = ?
ORDER BY path, line, col`, runID, target)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorageFailed, "load usages")
	}
	defer rows.Close()

	var out []Usage
	for rows.Next() {
		var u Usage
		if err := rows.Scan(&u.Target, &u.Path, &u.Line, &u.Column); err != nil {
			return nil, fmt.Errorf("scan usage row: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usage rows: %w", err)
	}
	return out, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func projectKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "default"
	}
	return key
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
