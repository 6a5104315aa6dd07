package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages the run ledger backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
	timeLayout              = time.RFC3339Nano
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Open initializes or connects to the ledger at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.ensureLedger(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Start records a running run and returns its row id.
func (s *Store) Start(ctx context.Context, runID string, startedAt time.Time, dryRun bool) (int64, error) {
	ctx = ensureContext(ctx)
	var id int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx,
			"INSERT INTO runs (run_id, started_at, status, dry_run) VALUES (?, ?, ?, ?)",
			runID, startedAt.UTC().Format(timeLayout), string(StatusRunning), boolToInt(dryRun),
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// Finish stores the outcome of run id.
func (s *Store) Finish(ctx context.Context, id int64, run Run) error {
	ctx = ensureContext(ctx)
	finished := run.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	status := run.Status
	if status == "" {
		status = StatusSucceeded
	}
	err := retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `UPDATE runs SET
			finished_at = ?, status = ?, output_path = ?, backup_path = ?, output_sha256 = ?,
			libraries = ?, categories = ?, links = ?, inline_items = ?, invalid_fragments = ?, error = ?
			WHERE id = ?`,
			finished.UTC().Format(timeLayout), string(status), run.OutputPath, run.BackupPath, run.OutputSHA256,
			run.Libraries, run.Categories, run.Links, run.InlineItems, run.InvalidFragments, run.Error,
			id,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("update run %d: %w", id, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, run_id, started_at, finished_at, status, dry_run,
		output_path, backup_path, output_sha256, libraries, categories, links, inline_items,
		invalid_fragments, error
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LastWritten returns the most recent successful run that wrote output,
// or nil when there is none.
func (s *Store) LastWritten(ctx context.Context) (*Run, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT id, run_id, started_at, finished_at, status, dry_run,
		output_path, backup_path, output_sha256, libraries, categories, links, inline_items,
		invalid_fragments, error
		FROM runs WHERE status = ? AND dry_run = 0 ORDER BY id DESC LIMIT 1`, string(StatusSucceeded))
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run      Run
		started  string
		finished sql.NullString
		status   string
		dryRun   int
	)
	if err := row.Scan(&run.ID, &run.RunID, &started, &finished, &status, &dryRun,
		&run.OutputPath, &run.BackupPath, &run.OutputSHA256, &run.Libraries, &run.Categories,
		&run.Links, &run.InlineItems, &run.InvalidFragments, &run.Error); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return run, err
		}
		return run, fmt.Errorf("scan run: %w", err)
	}
	run.Status = Status(status)
	run.DryRun = dryRun != 0
	run.StartedAt = parseTime(started)
	if finished.Valid {
		run.FinishedAt = parseTime(finished.String)
	}
	return run, nil
}

func parseTime(value string) time.Time {
	ts, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
