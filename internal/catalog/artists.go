package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/playlistbridge/playlistbridge/internal/metrics"
)

// UpsertArtist inserts or updates an artist keyed by (id, server_source).
func (s *Store) UpsertArtist(ctx context.Context, a Artist) error {
	start := time.Now()
	defer observeCatalogDuration("upsert_artist", start)

	return s.withRetry(ctx, "upsert_artist", func(ctx context.Context) error {
		_, err := s.conn.ExecContext(ctx, `
			INSERT INTO artists (id, name, thumb, genres, summary, server_source, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (id, server_source) DO UPDATE SET
				name = excluded.name,
				thumb = excluded.thumb,
				genres = excluded.genres,
				summary = excluded.summary,
				updated_at = CURRENT_TIMESTAMP
		`, a.ID, a.Name, nullableString(a.Thumb), strings.Join(a.Genres, ","), nullableString(a.Summary), string(a.ServerSource))
		return err
	})
}

// GetArtist fetches one artist by id and server source.
func (s *Store) GetArtist(ctx context.Context, id string, source ServerSource) (*Artist, error) {
	start := time.Now()
	defer observeCatalogDuration("get_artist", start)

	row := s.conn.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(thumb,''), COALESCE(genres,''), COALESCE(summary,''), server_source, created_at, updated_at
		FROM artists WHERE id = ? AND server_source = ?
	`, id, string(source))

	return scanArtist(row)
}

// ListArtistsBySource returns every artist for a given server source.
func (s *Store) ListArtistsBySource(ctx context.Context, source ServerSource) ([]Artist, error) {
	start := time.Now()
	defer observeCatalogDuration("list_artists_by_source", start)

	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, name, COALESCE(thumb,''), COALESCE(genres,''), COALESCE(summary,''), server_source, created_at, updated_at
		FROM artists WHERE server_source = ? ORDER BY name
	`, string(source))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Artist
	for rows.Next() {
		var a Artist
		var genres string
		if err := rows.Scan(&a.ID, &a.Name, &a.Thumb, &genres, &a.Summary, &a.ServerSource, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		a.Genres = splitGenres(genres)
		out = append(out, a)
	}
	return out, rows.Err()
}

// SearchArtistsByName returns artists whose name matches any of the given
// name variants (case-insensitive) for a server source, used by existence.go
// to enumerate artist-alias candidates.
func (s *Store) SearchArtistsByName(ctx context.Context, nameVariants []string, source ServerSource) ([]Artist, error) {
	if len(nameVariants) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(nameVariants))
	args := make([]any, 0, len(nameVariants)+1)
	for i, v := range nameVariants {
		placeholders[i] = "LOWER(name) = LOWER(?)"
		args = append(args, v)
	}
	args = append(args, string(source))

	query := fmt.Sprintf(`
		SELECT id, name, COALESCE(thumb,''), COALESCE(genres,''), COALESCE(summary,''), server_source, created_at, updated_at
		FROM artists WHERE (%s) AND server_source = ?
	`, strings.Join(placeholders, " OR "))

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Artist
	for rows.Next() {
		var a Artist
		var genres string
		if err := rows.Scan(&a.ID, &a.Name, &a.Thumb, &genres, &a.Summary, &a.ServerSource, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		a.Genres = splitGenres(genres)
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteArtist removes an artist; albums and tracks cascade.
func (s *Store) DeleteArtist(ctx context.Context, id string, source ServerSource) error {
	return s.withRetry(ctx, "delete_artist", func(ctx context.Context) error {
		_, err := s.conn.ExecContext(ctx, `DELETE FROM artists WHERE id = ? AND server_source = ?`, id, string(source))
		return err
	})
}

func scanArtist(row *sql.Row) (*Artist, error) {
	var a Artist
	var genres string
	if err := row.Scan(&a.ID, &a.Name, &a.Thumb, &genres, &a.Summary, &a.ServerSource, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	a.Genres = splitGenres(genres)
	return &a, nil
}

func splitGenres(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func observeCatalogDuration(operation string, start time.Time) {
	metrics.CatalogQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
