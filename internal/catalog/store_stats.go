package catalog

import (
	"context"
	"fmt"
)

// Stats aggregates catalog counts for status display.
type Stats struct {
	Movies        int
	Files         int
	Scanned       int
	ScanErrors    int
	VerifyPending int
	VerifyPass    int
	VerifyFail    int
	VerifyError   int
	TotalBytes    int64
	PendingReview int
}

// Stats computes the aggregate counts in one round trip per table.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`)
	if err := row.Scan(&stats.Movies); err != nil {
		return nil, fmt.Errorf("count movies: %w", err)
	}

	row = s.db.QueryRowContext(ctx, `
        SELECT COUNT(*),
               COALESCE(SUM(CASE WHEN scanned_at IS NOT NULL THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(CASE WHEN scan_error IS NOT NULL THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(CASE WHEN scanned_at IS NOT NULL AND verify_status = 'pending' THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(CASE WHEN verify_status = 'pass' THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(CASE WHEN verify_status = 'fail' THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(CASE WHEN verify_status = 'error' THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(COALESCE(size_bytes, 0)), 0)
        FROM movie_files`)
	if err := row.Scan(
		&stats.Files,
		&stats.Scanned,
		&stats.ScanErrors,
		&stats.VerifyPending,
		&stats.VerifyPass,
		&stats.VerifyFail,
		&stats.VerifyError,
		&stats.TotalBytes,
	); err != nil {
		return nil, fmt.Errorf("count files: %w", err)
	}

	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM match_log WHERE reviewed = ?`, ReviewPending)
	if err := row.Scan(&stats.PendingReview); err != nil {
		return nil, fmt.Errorf("count pending reviews: %w", err)
	}

	return stats, nil
}
