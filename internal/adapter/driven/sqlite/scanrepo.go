package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/XargsUK/todo-issue/internal/domain/model"
	"github.com/XargsUK/todo-issue/internal/domain/port/driven"
)

// timeLayout has fixed-width fractional seconds so stored timestamps sort
// lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Compile-time interface satisfaction check.
var _ driven.ScanStore = (*ScanRepo)(nil)

// ScanRepo is the SQLite implementation of the ScanStore port interface.
type ScanRepo struct {
	db *DB
}

// NewScanRepo creates a new ScanRepo backed by the given DB.
func NewScanRepo(db *DB) *ScanRepo {
	return &ScanRepo{db: db}
}

// Record inserts a run, replacing any earlier run for the same repo and SHA.
// A zero ScannedAt is stamped with the current time.
func (r *ScanRepo) Record(ctx context.Context, run model.ScanRun) error {
	const query = `
		INSERT INTO scan_runs (
			repo_full_name, head_sha, status, reason,
			diff_bytes, todo_count, issue_count, scanned_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repo_full_name, head_sha) DO UPDATE SET
			status = excluded.status,
			reason = excluded.reason,
			diff_bytes = excluded.diff_bytes,
			todo_count = excluded.todo_count,
			issue_count = excluded.issue_count,
			scanned_at = excluded.scanned_at
	`

	scannedAt := run.ScannedAt
	if scannedAt.IsZero() {
		scannedAt = time.Now()
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		run.RepoFullName, run.HeadSHA, string(run.Status), run.Reason,
		run.DiffBytes, run.TodoCount, run.IssueCount, scannedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("record scan of %s@%s: %w", run.RepoFullName, run.HeadSHA, err)
	}

	return nil
}

// GetBySHA retrieves the run recorded for the given SHA. Returns (nil, nil) if
// the SHA has not been scanned.
func (r *ScanRepo) GetBySHA(ctx context.Context, repoFullName, headSHA string) (*model.ScanRun, error) {
	const query = `
		SELECT id, repo_full_name, head_sha, status, reason,
		       diff_bytes, todo_count, issue_count, scanned_at
		FROM scan_runs
		WHERE repo_full_name = ? AND head_sha = ?
	`

	run, err := scanRun(r.db.Reader.QueryRowContext(ctx, query, repoFullName, headSHA))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get scan of %s@%s: %w", repoFullName, headSHA, err)
	}

	return run, nil
}

// ListRecent returns up to limit runs for the repository, newest first.
func (r *ScanRepo) ListRecent(ctx context.Context, repoFullName string, limit int) ([]model.ScanRun, error) {
	const query = `
		SELECT id, repo_full_name, head_sha, status, reason,
		       diff_bytes, todo_count, issue_count, scanned_at
		FROM scan_runs
		WHERE repo_full_name = ?
		ORDER BY scanned_at DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, repoFullName, limit)
	if err != nil {
		return nil, fmt.Errorf("list scans of %s: %w", repoFullName, err)
	}
	defer rows.Close()

	var runs []model.ScanRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan runs: %w", err)
	}

	return runs, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.ScanRun, error) {
	var (
		run       model.ScanRun
		status    string
		scannedAt string
	)

	if err := row.Scan(
		&run.ID, &run.RepoFullName, &run.HeadSHA, &status, &run.Reason,
		&run.DiffBytes, &run.TodoCount, &run.IssueCount, &scannedAt,
	); err != nil {
		return nil, err
	}

	run.Status = model.ScanStatus(status)

	t, err := parseTime(scannedAt)
	if err != nil {
		return nil, fmt.Errorf("parse scanned_at: %w", err)
	}
	run.ScannedAt = t

	return &run, nil
}

// parseTime parses a timestamp string from SQLite, trying the layouts the
// ledger and SQLite's CURRENT_TIMESTAMP produce.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		timeLayout,
		time.RFC3339Nano,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %q", s)
}
