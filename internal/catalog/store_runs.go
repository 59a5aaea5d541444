package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const runColumns = "id, root_path, started_at, finished_at, folder_count, file_count, ok_count, error_count, duration_seconds, notes"

// StartScanRun records the beginning of a walk-and-probe session.
func (s *Store) StartScanRun(ctx context.Context, rootPath string) (*ScanRun, error) {
	now := time.Now()
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO scan_runs (root_path, started_at) VALUES (?, ?)`,
		rootPath,
		formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("start scan run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &ScanRun{ID: id, RootPath: rootPath, StartedAt: now.UTC()}, nil
}

// FinishScanRun writes the aggregate totals of a completed (or cancelled) run.
func (s *Store) FinishScanRun(ctx context.Context, run *ScanRun) error {
	if run == nil {
		return errors.New("run is nil")
	}
	now := time.Now()
	finishedAt := run.FinishedAt
	if finishedAt == nil {
		finishedAt = &now
	}
	run.FinishedAt = finishedAt
	run.DurationSeconds = finishedAt.Sub(run.StartedAt).Seconds()

	_, err := s.db.ExecContext(
		ctx,
		`UPDATE scan_runs
         SET finished_at = ?, folder_count = ?, file_count = ?, ok_count = ?,
             error_count = ?, duration_seconds = ?, notes = ?
         WHERE id = ?`,
		nullableTime(finishedAt),
		run.FolderCount,
		run.FileCount,
		run.OKCount,
		run.ErrorCount,
		run.DurationSeconds,
		nullableString(run.Notes),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("finish scan run: %w", err)
	}
	return nil
}

// ScanRuns returns run history, most recent first, capped at limit when
// limit is positive.
func (s *Store) ScanRuns(ctx context.Context, limit int) ([]*ScanRun, error) {
	query := `SELECT ` + runColumns + ` FROM scan_runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scan runs: %w", err)
	}
	defer rows.Close()

	var runs []*ScanRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*ScanRun, error) {
	var (
		id          int64
		rootPath    string
		startedRaw  string
		finishedRaw sql.NullString
		folderCount int
		fileCount   int
		okCount     int
		errorCount  int
		duration    float64
		notes       sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&rootPath,
		&startedRaw,
		&finishedRaw,
		&folderCount,
		&fileCount,
		&okCount,
		&errorCount,
		&duration,
		&notes,
	); err != nil {
		return nil, err
	}

	run := &ScanRun{
		ID:              id,
		RootPath:        rootPath,
		FinishedAt:      timePointer(finishedRaw),
		FolderCount:     folderCount,
		FileCount:       fileCount,
		OKCount:         okCount,
		ErrorCount:      errorCount,
		DurationSeconds: duration,
		Notes:           notes.String,
	}
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	return run, nil
}
