package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// UpsertAlbum inserts or updates an album keyed by (id, server_source).
func (s *Store) UpsertAlbum(ctx context.Context, a Album) error {
	start := time.Now()
	defer observeCatalogDuration("upsert_album", start)

	return s.withRetry(ctx, "upsert_album", func(ctx context.Context) error {
		_, err := s.conn.ExecContext(ctx, `
			INSERT INTO albums (id, artist_id, title, year, thumb, genres, track_count, duration_ms, server_source, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (id, server_source) DO UPDATE SET
				artist_id = excluded.artist_id,
				title = excluded.title,
				year = excluded.year,
				thumb = excluded.thumb,
				genres = excluded.genres,
				track_count = excluded.track_count,
				duration_ms = excluded.duration_ms,
				updated_at = CURRENT_TIMESTAMP
		`, a.ID, a.ArtistID, a.Title, nullableInt(a.Year), nullableString(a.Thumb), strings.Join(a.Genres, ","),
			nullableInt(a.TrackCount), nullableInt64(a.DurationMS), string(a.ServerSource))
		return err
	})
}

// GetAlbum fetches one album by id and server source.
func (s *Store) GetAlbum(ctx context.Context, id string, source ServerSource) (*Album, error) {
	start := time.Now()
	defer observeCatalogDuration("get_album", start)

	row := s.conn.QueryRowContext(ctx, `
		SELECT id, artist_id, title, COALESCE(year,0), COALESCE(thumb,''), COALESCE(genres,''),
		       COALESCE(track_count,0), COALESCE(duration_ms,0), server_source, created_at, updated_at
		FROM albums WHERE id = ? AND server_source = ?
	`, id, string(source))

	return scanAlbum(row)
}

// ListAlbumsForArtist returns every album belonging to an artist.
func (s *Store) ListAlbumsForArtist(ctx context.Context, artistID string, source ServerSource) ([]Album, error) {
	start := time.Now()
	defer observeCatalogDuration("list_albums_for_artist", start)

	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, artist_id, title, COALESCE(year,0), COALESCE(thumb,''), COALESCE(genres,''),
		       COALESCE(track_count,0), COALESCE(duration_ms,0), server_source, created_at, updated_at
		FROM albums WHERE artist_id = ? AND server_source = ? ORDER BY title
	`, artistID, string(source))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAlbums(rows)
}

// SearchAlbumsByArtist enumerates up to `limit` albums for any of the given
// artist-name variants, the existence.go fallback path for when no
// album-title variation search meets threshold.
func (s *Store) SearchAlbumsByArtist(ctx context.Context, artistNameVariants []string, source ServerSource, limit int) ([]Album, error) {
	artists, err := s.SearchArtistsByName(ctx, artistNameVariants, source)
	if err != nil {
		return nil, err
	}
	if len(artists) == 0 {
		return nil, nil
	}

	ids := make([]string, len(artists))
	args := make([]any, 0, len(artists)+2)
	for i, a := range artists {
		ids[i] = "?"
		args = append(args, a.ID)
	}
	args = append(args, string(source), limit)

	query := fmt.Sprintf(`
		SELECT id, artist_id, title, COALESCE(year,0), COALESCE(thumb,''), COALESCE(genres,''),
		       COALESCE(track_count,0), COALESCE(duration_ms,0), server_source, created_at, updated_at
		FROM albums WHERE artist_id IN (%s) AND server_source = ? ORDER BY title LIMIT ?
	`, strings.Join(ids, ","))

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAlbums(rows)
}

// SearchAlbumsByTitle returns albums whose title matches any of the given
// title variants (case-insensitive) for a server source.
func (s *Store) SearchAlbumsByTitle(ctx context.Context, titleVariants []string, source ServerSource) ([]Album, error) {
	if len(titleVariants) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(titleVariants))
	args := make([]any, 0, len(titleVariants)+1)
	for i, v := range titleVariants {
		placeholders[i] = "LOWER(title) = LOWER(?)"
		args = append(args, v)
	}
	args = append(args, string(source))

	query := fmt.Sprintf(`
		SELECT id, artist_id, title, COALESCE(year,0), COALESCE(thumb,''), COALESCE(genres,''),
		       COALESCE(track_count,0), COALESCE(duration_ms,0), server_source, created_at, updated_at
		FROM albums WHERE (%s) AND server_source = ?
	`, strings.Join(placeholders, " OR "))

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAlbums(rows)
}

// DeleteAlbum removes an album; tracks cascade.
func (s *Store) DeleteAlbum(ctx context.Context, id string, source ServerSource) error {
	return s.withRetry(ctx, "delete_album", func(ctx context.Context) error {
		_, err := s.conn.ExecContext(ctx, `DELETE FROM albums WHERE id = ? AND server_source = ?`, id, string(source))
		return err
	})
}

// AlbumCompletionStats buckets an artist's albums by how much of their
// expected track_count is actually present in the catalog.
type AlbumCompletionStats struct {
	Complete       int // >= 90% of expected tracks present
	NearlyComplete int // 80-89%
	Partial        int // 1-79%
	Missing        int // 0%
	Total          int
}

// GetAlbumCompletionStats rolls up completion stats for every album whose
// artist name matches the given substring (case-insensitive), joining each
// album's expected track_count against how many of its tracks actually
// exist in the catalog.
func (s *Store) GetAlbumCompletionStats(ctx context.Context, artistName string, source ServerSource) (AlbumCompletionStats, error) {
	start := time.Now()
	defer observeCatalogDuration("get_album_completion_stats", start)

	rows, err := s.conn.QueryContext(ctx, `
		SELECT albums.id, COALESCE(albums.track_count, 0), COUNT(tracks.id)
		FROM albums
		JOIN artists ON albums.artist_id = artists.id
		LEFT JOIN tracks ON albums.id = tracks.album_id AND tracks.server_source = albums.server_source
		WHERE LOWER(artists.name) LIKE LOWER(?) AND albums.server_source = ?
		GROUP BY albums.id, albums.track_count
	`, "%"+artistName+"%", string(source))
	if err != nil {
		return AlbumCompletionStats{}, err
	}
	defer rows.Close()

	var stats AlbumCompletionStats
	for rows.Next() {
		var albumID string
		var expected, actual int
		if err := rows.Scan(&albumID, &expected, &actual); err != nil {
			return AlbumCompletionStats{}, err
		}
		if expected == 0 {
			expected = 1 // avoid division by zero when track_count metadata is missing
		}

		ratio := float64(actual) / float64(expected)
		switch {
		case actual == 0:
			stats.Missing++
		case ratio >= 0.9:
			stats.Complete++
		case ratio >= 0.8:
			stats.NearlyComplete++
		default:
			stats.Partial++
		}
		stats.Total++
	}
	return stats, rows.Err()
}

func scanAlbum(row *sql.Row) (*Album, error) {
	var a Album
	var genres string
	if err := row.Scan(&a.ID, &a.ArtistID, &a.Title, &a.Year, &a.Thumb, &genres, &a.TrackCount, &a.DurationMS,
		&a.ServerSource, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	a.Genres = splitGenres(genres)
	return &a, nil
}

func scanAlbums(rows *sql.Rows) ([]Album, error) {
	var out []Album
	for rows.Next() {
		var a Album
		var genres string
		if err := rows.Scan(&a.ID, &a.ArtistID, &a.Title, &a.Year, &a.Thumb, &genres, &a.TrackCount, &a.DurationMS,
			&a.ServerSource, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		a.Genres = splitGenres(genres)
		out = append(out, a)
	}
	return out, rows.Err()
}

func nullableInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullableInt64(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}
