package catalog

import (
	"context"
	"database/sql"
	"time"
)

// UpsertTrack inserts or updates a track keyed by (id, server_source).
func (s *Store) UpsertTrack(ctx context.Context, t Track) error {
	start := time.Now()
	defer observeCatalogDuration("upsert_track", start)

	return s.withRetry(ctx, "upsert_track", func(ctx context.Context) error {
		_, err := s.conn.ExecContext(ctx, `
			INSERT INTO tracks (id, album_id, artist_id, title, track_number, duration_ms, file_path, bitrate, server_source, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (id, server_source) DO UPDATE SET
				album_id = excluded.album_id,
				artist_id = excluded.artist_id,
				title = excluded.title,
				track_number = excluded.track_number,
				duration_ms = excluded.duration_ms,
				file_path = excluded.file_path,
				bitrate = excluded.bitrate,
				updated_at = CURRENT_TIMESTAMP
		`, t.ID, t.AlbumID, t.ArtistID, t.Title, nullableInt(t.TrackNumber), nullableInt64(t.DurationMS),
			nullableString(t.FilePath), nullableInt(t.Bitrate), string(t.ServerSource))
		return err
	})
}

// GetTrack fetches one track by id and server source.
func (s *Store) GetTrack(ctx context.Context, id string, source ServerSource) (*Track, error) {
	start := time.Now()
	defer observeCatalogDuration("get_track", start)

	row := s.conn.QueryRowContext(ctx, `
		SELECT id, album_id, artist_id, title, COALESCE(track_number,0), COALESCE(duration_ms,0),
		       COALESCE(file_path,''), COALESCE(bitrate,0), server_source, created_at, updated_at
		FROM tracks WHERE id = ? AND server_source = ?
	`, id, string(source))

	return scanTrack(row)
}

// ListTracksForAlbum returns every track belonging to an album, ordered by
// track number.
func (s *Store) ListTracksForAlbum(ctx context.Context, albumID string, source ServerSource) ([]Track, error) {
	start := time.Now()
	defer observeCatalogDuration("list_tracks_for_album", start)

	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, album_id, artist_id, title, COALESCE(track_number,0), COALESCE(duration_ms,0),
		       COALESCE(file_path,''), COALESCE(bitrate,0), server_source, created_at, updated_at
		FROM tracks WHERE album_id = ? AND server_source = ? ORDER BY track_number
	`, albumID, string(source))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTracks(rows)
}

// SearchTracksByTitle returns tracks whose title matches any of the given
// title variants for a server source, optionally restricted to an artist.
func (s *Store) SearchTracksByTitle(ctx context.Context, titleVariants []string, artistID string, source ServerSource) ([]Track, error) {
	if len(titleVariants) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(titleVariants))
	args := make([]any, 0, len(titleVariants)+2)
	for i, v := range titleVariants {
		placeholders[i] = "LOWER(title) = LOWER(?)"
		args = append(args, v)
	}
	args = append(args, string(source))

	query := `
		SELECT id, album_id, artist_id, title, COALESCE(track_number,0), COALESCE(duration_ms,0),
		       COALESCE(file_path,''), COALESCE(bitrate,0), server_source, created_at, updated_at
		FROM tracks WHERE (` + joinOr(placeholders) + `) AND server_source = ?`
	if artistID != "" {
		query += ` AND artist_id = ?`
		args = append(args, artistID)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTracks(rows)
}

// DeleteTrack removes a single track.
func (s *Store) DeleteTrack(ctx context.Context, id string, source ServerSource) error {
	return s.withRetry(ctx, "delete_track", func(ctx context.Context) error {
		_, err := s.conn.ExecContext(ctx, `DELETE FROM tracks WHERE id = ? AND server_source = ?`, id, string(source))
		return err
	})
}

// CountTracksForAlbum returns how many tracks the catalog currently holds
// for an album, used by check_album_completeness.
func (s *Store) CountTracksForAlbum(ctx context.Context, albumID string, source ServerSource) (int, error) {
	var count int
	err := s.conn.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tracks WHERE album_id = ? AND server_source = ?
	`, albumID, string(source)).Scan(&count)
	return count, err
}

func scanTrack(row *sql.Row) (*Track, error) {
	var t Track
	if err := row.Scan(&t.ID, &t.AlbumID, &t.ArtistID, &t.Title, &t.TrackNumber, &t.DurationMS,
		&t.FilePath, &t.Bitrate, &t.ServerSource, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func scanTracks(rows *sql.Rows) ([]Track, error) {
	var out []Track
	for rows.Next() {
		var t Track
		if err := rows.Scan(&t.ID, &t.AlbumID, &t.ArtistID, &t.Title, &t.TrackNumber, &t.DurationMS,
			&t.FilePath, &t.Bitrate, &t.ServerSource, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func joinOr(clauses []string) string {
	out := ""
	for i, c := range clauses {
		if i > 0 {
			out += " OR "
		}
		out += c
	}
	return out
}
