package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const fileColumns = "id, movie_id, file_path, resolution, resolution_class, video_codec, bit_depth, frame_rate, color_transfer, color_primaries, hdr_formats, dv_profile, audio_codec, audio_channels, audio_language, audio_tracks, subtitle_languages, container, size_bytes, duration_seconds, mb_per_minute, release_group, probe_json, scanned_at, scan_error, verify_status, verify_flags, verified_at, created_at, updated_at"

// maxScanErrorLength caps persisted scan error text so a chatty tool cannot
// bloat the catalog; full diagnostics stay in the logs.
const maxScanErrorLength = 1000

// UpsertScannedFile persists a successfully probed file, keyed by path.
// A success clears any previous scan error and resets the verify outcome to
// pending, since the technical metadata it was computed from is now stale.
func (s *Store) UpsertScannedFile(ctx context.Context, file *MovieFile) (*MovieFile, error) {
	if file == nil {
		return nil, errors.New("file is nil")
	}
	if file.FilePath == "" {
		return nil, errors.New("file path required")
	}
	hdr, err := encodeList(file.HDRFormats)
	if err != nil {
		return nil, err
	}
	tracks, err := encodeList(file.AudioTracks)
	if err != nil {
		return nil, err
	}
	subs, err := encodeList(file.SubtitleLanguages)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	scannedAt := file.ScannedAt
	if scannedAt == nil {
		scannedAt = &now
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO movie_files (
            movie_id, file_path, resolution, resolution_class, video_codec, bit_depth,
            frame_rate, color_transfer, color_primaries, hdr_formats, dv_profile,
            audio_codec, audio_channels, audio_language, audio_tracks, subtitle_languages,
            container, size_bytes, duration_seconds, mb_per_minute, release_group,
            probe_json, scanned_at, scan_error, verify_status, verify_flags, verified_at,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, NULL, NULL, ?, ?)
        ON CONFLICT(file_path) DO UPDATE SET
            movie_id = excluded.movie_id,
            resolution = excluded.resolution,
            resolution_class = excluded.resolution_class,
            video_codec = excluded.video_codec,
            bit_depth = excluded.bit_depth,
            frame_rate = excluded.frame_rate,
            color_transfer = excluded.color_transfer,
            color_primaries = excluded.color_primaries,
            hdr_formats = excluded.hdr_formats,
            dv_profile = excluded.dv_profile,
            audio_codec = excluded.audio_codec,
            audio_channels = excluded.audio_channels,
            audio_language = excluded.audio_language,
            audio_tracks = excluded.audio_tracks,
            subtitle_languages = excluded.subtitle_languages,
            container = excluded.container,
            size_bytes = excluded.size_bytes,
            duration_seconds = excluded.duration_seconds,
            mb_per_minute = excluded.mb_per_minute,
            release_group = excluded.release_group,
            probe_json = excluded.probe_json,
            scanned_at = excluded.scanned_at,
            scan_error = NULL,
            verify_status = excluded.verify_status,
            verify_flags = NULL,
            verified_at = NULL,
            updated_at = excluded.updated_at`,
		file.MovieID,
		file.FilePath,
		nullableString(file.Resolution),
		nullableString(file.ResolutionClass),
		nullableString(file.VideoCodec),
		file.BitDepth,
		nullableString(file.FrameRate),
		nullableString(file.ColorTransfer),
		nullableString(file.ColorPrimaries),
		hdr,
		nullableInt(file.DVProfile),
		nullableString(file.AudioCodec),
		file.AudioChannels,
		nullableString(file.AudioLanguage),
		tracks,
		subs,
		nullableString(file.Container),
		file.SizeBytes,
		nullableFloat(file.DurationSeconds),
		nullableFloat(file.MBPerMinute),
		nullableString(file.ReleaseGroup),
		nullableString(file.ProbeJSON),
		nullableTime(scannedAt),
		string(VerifyPending),
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert scanned file: %w", err)
	}
	return s.FileByPath(ctx, file.FilePath)
}

// RecordScanError persists a failed probe against a file path, clearing any
// previous success. The error text is truncated to keep rows bounded.
func (s *Store) RecordScanError(ctx context.Context, movieID int64, filePath, message string) error {
	if filePath == "" {
		return errors.New("file path required")
	}
	if len(message) > maxScanErrorLength {
		message = message[:maxScanErrorLength]
	}
	now := formatTime(time.Now())
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO movie_files (movie_id, file_path, scan_error, verify_status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(file_path) DO UPDATE SET
             movie_id = excluded.movie_id,
             scan_error = excluded.scan_error,
             scanned_at = NULL,
             verify_status = excluded.verify_status,
             verify_flags = NULL,
             verified_at = NULL,
             updated_at = excluded.updated_at`,
		movieID,
		filePath,
		message,
		string(VerifyPending),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("record scan error: %w", err)
	}
	return nil
}

// FileByPath fetches a file row by absolute path, or nil when absent.
func (s *Store) FileByPath(ctx context.Context, filePath string) (*MovieFile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+fileColumns+` FROM movie_files WHERE file_path = ?`, filePath)
	file, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file by path: %w", err)
	}
	return file, nil
}

// FilesForMovie lists the files belonging to one movie ordered by path.
func (s *Store) FilesForMovie(ctx context.Context, movieID int64) ([]*MovieFile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+fileColumns+` FROM movie_files WHERE movie_id = ? ORDER BY file_path`, movieID)
	if err != nil {
		return nil, fmt.Errorf("files for movie: %w", err)
	}
	defer rows.Close()
	return collectFiles(rows)
}

// FilesForVerify returns scanned files eligible for deep verification. When
// all is false, only files still in the pending verify state are returned.
func (s *Store) FilesForVerify(ctx context.Context, all bool) ([]*MovieFile, error) {
	query := `SELECT ` + fileColumns + ` FROM movie_files WHERE scanned_at IS NOT NULL`
	args := []any{}
	if !all {
		query += ` AND verify_status = ?`
		args = append(args, string(VerifyPending))
	}
	query += ` ORDER BY file_path`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("files for verify: %w", err)
	}
	defer rows.Close()
	return collectFiles(rows)
}

// UpdateVerifyOutcome stores the result of a deep verification pass.
func (s *Store) UpdateVerifyOutcome(ctx context.Context, filePath string, status VerifyStatus, flags []QualityFlag) error {
	if _, ok := ParseVerifyStatus(string(status)); !ok {
		return fmt.Errorf("unknown verify status %q", status)
	}
	encoded, err := encodeList(flags)
	if err != nil {
		return err
	}
	now := formatTime(time.Now())
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE movie_files SET verify_status = ?, verify_flags = ?, verified_at = ?, updated_at = ? WHERE file_path = ?`,
		string(status),
		encoded,
		now,
		now,
		filePath,
	)
	if err != nil {
		return fmt.Errorf("update verify outcome: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no file row for %q", filePath)
	}
	return nil
}

func collectFiles(rows *sql.Rows) ([]*MovieFile, error) {
	var files []*MovieFile
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

func scanFile(scanner interface{ Scan(dest ...any) error }) (*MovieFile, error) {
	var (
		id              int64
		movieID         int64
		filePath        string
		resolution      sql.NullString
		resolutionClass sql.NullString
		videoCodec      sql.NullString
		bitDepth        sql.NullInt64
		frameRate       sql.NullString
		colorTransfer   sql.NullString
		colorPrimaries  sql.NullString
		hdrFormats      sql.NullString
		dvProfile       sql.NullInt64
		audioCodec      sql.NullString
		audioChannels   sql.NullInt64
		audioLanguage   sql.NullString
		audioTracks     sql.NullString
		subtitleLangs   sql.NullString
		container       sql.NullString
		sizeBytes       sql.NullInt64
		durationSeconds sql.NullFloat64
		mbPerMinute     sql.NullFloat64
		releaseGroup    sql.NullString
		probeJSON       sql.NullString
		scannedRaw      sql.NullString
		scanError       sql.NullString
		verifyStatus    sql.NullString
		verifyFlags     sql.NullString
		verifiedRaw     sql.NullString
		createdRaw      string
		updatedRaw      string
	)

	if err := scanner.Scan(
		&id,
		&movieID,
		&filePath,
		&resolution,
		&resolutionClass,
		&videoCodec,
		&bitDepth,
		&frameRate,
		&colorTransfer,
		&colorPrimaries,
		&hdrFormats,
		&dvProfile,
		&audioCodec,
		&audioChannels,
		&audioLanguage,
		&audioTracks,
		&subtitleLangs,
		&container,
		&sizeBytes,
		&durationSeconds,
		&mbPerMinute,
		&releaseGroup,
		&probeJSON,
		&scannedRaw,
		&scanError,
		&verifyStatus,
		&verifyFlags,
		&verifiedRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	file := &MovieFile{
		ID:                id,
		MovieID:           movieID,
		FilePath:          filePath,
		Resolution:        resolution.String,
		ResolutionClass:   resolutionClass.String,
		VideoCodec:        videoCodec.String,
		BitDepth:          int(bitDepth.Int64),
		FrameRate:         frameRate.String,
		ColorTransfer:     colorTransfer.String,
		ColorPrimaries:    colorPrimaries.String,
		HDRFormats:        decodeStringList(hdrFormats),
		DVProfile:         intPointer(dvProfile),
		AudioCodec:        audioCodec.String,
		AudioChannels:     int(audioChannels.Int64),
		AudioLanguage:     audioLanguage.String,
		AudioTracks:       decodeAudioTracks(audioTracks),
		SubtitleLanguages: decodeStringList(subtitleLangs),
		Container:         container.String,
		SizeBytes:         sizeBytes.Int64,
		DurationSeconds:   floatPointer(durationSeconds),
		MBPerMinute:       floatPointer(mbPerMinute),
		ReleaseGroup:      releaseGroup.String,
		ProbeJSON:         probeJSON.String,
		ScannedAt:         timePointer(scannedRaw),
		ScanError:         scanError.String,
		VerifyStatus:      VerifyStatus(verifyStatus.String),
		VerifyFlags:       decodeQualityFlags(verifyFlags),
		VerifiedAt:        timePointer(verifiedRaw),
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		file.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		file.UpdatedAt = updated
	}
	return file, nil
}
