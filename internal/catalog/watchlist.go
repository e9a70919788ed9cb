package catalog

import (
	"context"
	"database/sql"
)

// AddWatchlistArtist inserts a server-agnostic watchlist entry, keyed by
// external_artist_id. Re-adding the same external id is a no-op.
func (s *Store) AddWatchlistArtist(ctx context.Context, w WatchlistArtist) error {
	return s.withRetry(ctx, "add_watchlist_artist", func(ctx context.Context) error {
		_, err := s.conn.ExecContext(ctx, `
			INSERT INTO watchlist_artists (
				id, external_artist_id, name, image,
				include_albums, include_eps, include_singles, include_live,
				include_remixes, include_acoustic, include_compilations
			) VALUES (nextval('watchlist_artists_id_seq'), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (external_artist_id) DO NOTHING
		`, w.ExternalArtistID, w.Name, nullableString(w.Image),
			w.IncludeAlbums, w.IncludeEPs, w.IncludeSingles, w.IncludeLive,
			w.IncludeRemixes, w.IncludeAcoustic, w.IncludeCompilations)
		return err
	})
}

// ListWatchlistArtists returns every watchlist entry.
func (s *Store) ListWatchlistArtists(ctx context.Context) ([]WatchlistArtist, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, external_artist_id, name, date_added, last_scan, COALESCE(image,''),
		       include_albums, include_eps, include_singles, include_live,
		       include_remixes, include_acoustic, include_compilations
		FROM watchlist_artists ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WatchlistArtist
	for rows.Next() {
		var w WatchlistArtist
		var lastScan sql.NullTime
		if err := rows.Scan(&w.ID, &w.ExternalArtistID, &w.Name, &w.DateAdded, &lastScan, &w.Image,
			&w.IncludeAlbums, &w.IncludeEPs, &w.IncludeSingles, &w.IncludeLive,
			&w.IncludeRemixes, &w.IncludeAcoustic, &w.IncludeCompilations); err != nil {
			return nil, err
		}
		if lastScan.Valid {
			w.LastScan = &lastScan.Time
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// TouchWatchlistArtistScan records that a watchlist artist was just scanned
// for new releases.
func (s *Store) TouchWatchlistArtistScan(ctx context.Context, externalArtistID string) error {
	return s.withRetry(ctx, "touch_watchlist_artist_scan", func(ctx context.Context) error {
		_, err := s.conn.ExecContext(ctx, `
			UPDATE watchlist_artists SET last_scan = CURRENT_TIMESTAMP WHERE external_artist_id = ?
		`, externalArtistID)
		return err
	})
}

// RemoveWatchlistArtist deletes a watchlist entry by external artist id.
func (s *Store) RemoveWatchlistArtist(ctx context.Context, externalArtistID string) error {
	return s.withRetry(ctx, "remove_watchlist_artist", func(ctx context.Context) error {
		_, err := s.conn.ExecContext(ctx, `DELETE FROM watchlist_artists WHERE external_artist_id = ?`, externalArtistID)
		return err
	})
}
