package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const movieColumns = "id, folder_path, folder_name, title, year, tags, notes, provider_id, provider_title, provider_year, critic_rating, community_rating, genres, synopsis, provider_path, enriched_at, created_at, updated_at"

// UpsertMovie creates or refreshes the movie row for a library folder. The
// folder path is the natural key; repeated calls with the same path return
// the same row.
func (s *Store) UpsertMovie(ctx context.Context, folderPath, folderName, title string, year *int) (*Movie, error) {
	if folderPath == "" {
		return nil, errors.New("folder path required")
	}
	now := formatTime(time.Now())
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO movies (folder_path, folder_name, title, year, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(folder_path) DO UPDATE SET
             folder_name = excluded.folder_name,
             title = excluded.title,
             year = excluded.year,
             updated_at = excluded.updated_at`,
		folderPath,
		folderName,
		title,
		nullableInt(year),
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert movie: %w", err)
	}
	return s.MovieByPath(ctx, folderPath)
}

// MovieByPath fetches a movie by its folder path, or nil when absent.
func (s *Store) MovieByPath(ctx context.Context, folderPath string) (*Movie, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies WHERE folder_path = ?`, folderPath)
	movie, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("movie by path: %w", err)
	}
	return movie, nil
}

// MovieByID fetches a movie by identifier, or nil when absent.
func (s *Store) MovieByID(ctx context.Context, id int64) (*Movie, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = ?`, id)
	movie, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("movie by id: %w", err)
	}
	return movie, nil
}

// AllMovies returns every movie ordered by folder path. Used to build the
// in-memory snapshot the disambiguation engine matches against.
func (s *Store) AllMovies(ctx context.Context) ([]*Movie, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+movieColumns+` FROM movies ORDER BY folder_path`)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	var movies []*Movie
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, movie)
	}
	return movies, rows.Err()
}

// SetEnrichment merges external catalog metadata into a movie row.
func (s *Store) SetEnrichment(ctx context.Context, movieID int64, enrichment Enrichment) error {
	genres, err := encodeList(enrichment.Genres)
	if err != nil {
		return err
	}
	enrichedAt := enrichment.EnrichedAt
	if enrichedAt == nil {
		now := time.Now()
		enrichedAt = &now
	}
	_, err = s.db.ExecContext(
		ctx,
		`UPDATE movies
         SET provider_id = ?, provider_title = ?, provider_year = ?, critic_rating = ?,
             community_rating = ?, genres = ?, synopsis = ?, provider_path = ?,
             enriched_at = ?, updated_at = ?
         WHERE id = ?`,
		nullableString(enrichment.ProviderID),
		nullableString(enrichment.ProviderTitle),
		nullableInt(enrichment.ProviderYear),
		nullableFloat(enrichment.CriticRating),
		nullableFloat(enrichment.CommunityRating),
		genres,
		nullableString(enrichment.Synopsis),
		nullableString(enrichment.ProviderPath),
		nullableTime(enrichedAt),
		formatTime(time.Now()),
		movieID,
	)
	if err != nil {
		return fmt.Errorf("set enrichment: %w", err)
	}
	return nil
}

// SetAnnotations updates the user-editable tags and notes of a movie.
func (s *Store) SetAnnotations(ctx context.Context, movieID int64, tags []string, notes string) error {
	encoded, err := encodeList(tags)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(
		ctx,
		`UPDATE movies SET tags = ?, notes = ?, updated_at = ? WHERE id = ?`,
		encoded,
		nullableString(notes),
		formatTime(time.Now()),
		movieID,
	)
	if err != nil {
		return fmt.Errorf("set annotations: %w", err)
	}
	return nil
}

// DeleteMovie removes a movie and, through the cascade, its files. The file
// delete is also issued explicitly so the cascade does not depend on the
// foreign_keys pragma of whichever connection created the row.
func (s *Store) DeleteMovie(ctx context.Context, movieID int64) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin delete tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM movie_files WHERE movie_id = ?`, movieID); err != nil {
		return false, fmt.Errorf("delete movie files: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, movieID)
	if err != nil {
		return false, fmt.Errorf("delete movie: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete: %w", err)
	}
	return affected > 0, nil
}

func scanMovie(scanner interface{ Scan(dest ...any) error }) (*Movie, error) {
	var (
		id              int64
		folderPath      string
		folderName      string
		title           string
		year            sql.NullInt64
		tags            sql.NullString
		notes           sql.NullString
		providerID      sql.NullString
		providerTitle   sql.NullString
		providerYear    sql.NullInt64
		criticRating    sql.NullFloat64
		communityRating sql.NullFloat64
		genres          sql.NullString
		synopsis        sql.NullString
		providerPath    sql.NullString
		enrichedRaw     sql.NullString
		createdRaw      string
		updatedRaw      string
	)

	if err := scanner.Scan(
		&id,
		&folderPath,
		&folderName,
		&title,
		&year,
		&tags,
		&notes,
		&providerID,
		&providerTitle,
		&providerYear,
		&criticRating,
		&communityRating,
		&genres,
		&synopsis,
		&providerPath,
		&enrichedRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	movie := &Movie{
		ID:         id,
		FolderPath: folderPath,
		FolderName: folderName,
		Title:      title,
		Year:       intPointer(year),
		Tags:       decodeStringList(tags),
		Notes:      notes.String,
		Enrichment: Enrichment{
			ProviderID:      providerID.String,
			ProviderTitle:   providerTitle.String,
			ProviderYear:    intPointer(providerYear),
			CriticRating:    floatPointer(criticRating),
			CommunityRating: floatPointer(communityRating),
			Genres:          decodeStringList(genres),
			Synopsis:        synopsis.String,
			ProviderPath:    providerPath.String,
			EnrichedAt:      timePointer(enrichedRaw),
		},
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		movie.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		movie.UpdatedAt = updated
	}
	return movie, nil
}
