package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"database/sql"
)

const matchColumns = "id, job_id, query_title, query_year, query_provider_id, strategy, confidence, movie_id, ambiguous, ambiguity_reason, reviewed, created_at"

// AppendMatchLog records one reconciliation attempt in the audit log.
func (s *Store) AppendMatchLog(ctx context.Context, entry *MatchLogEntry) (*MatchLogEntry, error) {
	if entry == nil {
		return nil, errors.New("entry is nil")
	}
	now := time.Now()
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO match_log (
            job_id, query_title, query_year, query_provider_id, strategy, confidence,
            movie_id, ambiguous, ambiguity_reason, reviewed, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.JobID,
		entry.QueryTitle,
		nullableInt(entry.QueryYear),
		nullableString(entry.QueryProviderID),
		nullableString(entry.Strategy),
		entry.Confidence,
		nullableInt64(entry.MovieID),
		boolToInt(entry.Ambiguous),
		nullableString(entry.AmbiguityReason),
		entry.Reviewed,
		formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("append match log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	stored := *entry
	stored.ID = id
	stored.CreatedAt = now.UTC()
	return &stored, nil
}

// PendingMatchLog returns audit rows awaiting human review, oldest first.
// The log is append-only so id order is insertion order.
func (s *Store) PendingMatchLog(ctx context.Context) ([]*MatchLogEntry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+matchColumns+` FROM match_log WHERE reviewed = ? ORDER BY id`,
		ReviewPending,
	)
	if err != nil {
		return nil, fmt.Errorf("pending match log: %w", err)
	}
	defer rows.Close()

	var entries []*MatchLogEntry
	for rows.Next() {
		entry, err := scanMatchEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// SetMatchReviewed resolves an audit row as confirmed or rejected.
func (s *Store) SetMatchReviewed(ctx context.Context, id int64, reviewed int) error {
	if reviewed != ReviewConfirmed && reviewed != ReviewRejected && reviewed != ReviewPending {
		return fmt.Errorf("unknown review state %d", reviewed)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE match_log SET reviewed = ? WHERE id = ?`, reviewed, id)
	if err != nil {
		return fmt.Errorf("set match reviewed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no match log row %d", id)
	}
	return nil
}

func scanMatchEntry(scanner interface{ Scan(dest ...any) error }) (*MatchLogEntry, error) {
	var (
		id         int64
		jobID      string
		queryTitle string
		queryYear  sql.NullInt64
		providerID sql.NullString
		strategy   sql.NullString
		confidence float64
		movieID    sql.NullInt64
		ambiguous  int
		reason     sql.NullString
		reviewed   int
		createdRaw string
	)
	if err := scanner.Scan(
		&id,
		&jobID,
		&queryTitle,
		&queryYear,
		&providerID,
		&strategy,
		&confidence,
		&movieID,
		&ambiguous,
		&reason,
		&reviewed,
		&createdRaw,
	); err != nil {
		return nil, err
	}

	entry := &MatchLogEntry{
		ID:              id,
		JobID:           jobID,
		QueryTitle:      queryTitle,
		QueryYear:       intPointer(queryYear),
		QueryProviderID: providerID.String,
		Strategy:        strategy.String,
		Confidence:      confidence,
		MovieID:         int64Pointer(movieID),
		Ambiguous:       ambiguous != 0,
		AmbiguityReason: reason.String,
		Reviewed:        reviewed,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		entry.CreatedAt = created
	}
	return entry, nil
}
